package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

type JobFunc func(ctx context.Context)

type job struct {
	name string
	spec string
	fn   JobFunc
}

type Scheduler struct {
	logger *slog.Logger
	s      *gocron.Scheduler
	ctx    context.Context
	jobs   []job
}

// New creates a scheduler evaluating cron specs in loc. A job never overlaps with its own
// previous run.
func New(ctx context.Context, logger *slog.Logger, loc *time.Location) *Scheduler {
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()

	return &Scheduler{logger: logger.With("component", "scheduler"), s: s, ctx: ctx}
}

func (sch *Scheduler) Add(name string, spec string, fn JobFunc) {
	sch.jobs = append(sch.jobs, job{name: name, spec: spec, fn: fn})
}

// Start registers the jobs and blocks until the context is done.
func (sch *Scheduler) Start() error {
	for _, j := range sch.jobs {
		_, err := sch.s.Cron(j.spec).Tag(j.name).Do(func(j job) {
			select {
			case <-sch.ctx.Done():
				return
			default:
				sch.logger.Info("running job", "job", j.name)
				j.fn(sch.ctx)
			}
		}, j)
		if err != nil {
			return fmt.Errorf("schedule %s (%q): %w", j.name, j.spec, err)
		}
	}
	sch.s.StartAsync()

	for name, next := range sch.NextRuns() {
		sch.logger.Info("job scheduled", "job", name, "next_run", next)
	}

	<-sch.ctx.Done()
	sch.s.Stop()
	return nil
}

// NextRuns returns the next run time of every registered job by name.
func (sch *Scheduler) NextRuns() map[string]time.Time {
	runs := map[string]time.Time{}
	for _, j := range sch.s.Jobs() {
		for _, tag := range j.Tags() {
			runs[tag] = j.NextRun()
		}
	}
	return runs
}
