package web

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"joarchive/internal/calculator"
	"joarchive/internal/model"
	"joarchive/internal/usecases"
)

const componentFieldPrefix = "c:"

// formCategories are always offered on the add and edit forms.
var formCategories = []string{"gold_14k", "gold_18k", "silver", "materials"}

type pages map[string]*template.Template

func mustParsePages(funcs template.FuncMap) pages {
	parsed := pages{}
	for _, name := range []string{"access", "list", "detail", "form"} {
		parsed[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(assets, "templates/layout.html", "templates/"+name+".html"))
	}
	return parsed
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(v float64) string {
			return calculator.FormatMoney(s.deps.CurrencySymbol, v)
		},
		"localTime": func(t time.Time) string {
			return t.In(s.deps.Location).Format("Jan 2, 2006 15:04")
		},
		"label": func(name string) string {
			category := calculator.Category(name)
			if category.IsKnown() {
				return category.Label()
			}
			return strings.ToUpper(strings.ReplaceAll(name, "_", " "))
		},
		"categoryName": func(c calculator.Category) string {
			return string(c)
		},
	}
}

func (s *Server) render(w http.ResponseWriter, page string, status int, data interface{}) {
	var buf bytes.Buffer
	if err := s.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("failed to render page", "page", page, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type listPage struct {
	Title           string
	Query           string
	Classification  string
	Classifications []string
	Records         []*model.JewelryRecord
}

func (s *Server) handleListPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	classification := r.URL.Query().Get("classification")

	records, err := s.deps.Jewelry.List(r.Context(), query, classification)
	if err != nil {
		s.internalError(w, "list jewelry", err)
		return
	}

	classifications, err := s.deps.Jewelry.Classifications(r.Context())
	if err != nil {
		s.internalError(w, "list classifications", err)
		return
	}

	s.render(w, "list", http.StatusOK, listPage{
		Title:           "JO Archive",
		Query:           query,
		Classification:  classification,
		Classifications: classifications,
		Records:         records,
	})
}

type componentRow struct {
	Name   string
	Values []string
}

type detailPage struct {
	Title      string
	Record     *model.JewelryRecord
	Components []componentRow
	Prices     *model.MetalPrices
	Categories []calculator.Category
	Weights    map[string][]string
	Breakdown  calculator.Breakdown
	Total      float64
	Error      string

	CalculatorOpen bool
}

// calculatorOpenParam expands the calculator panel without any weights entered.
const calculatorOpenParam = "calc"

// handleDetailPage renders a record with the calculator. Weights passed as query parameters
// (gold_14k=2.5&gold_14k=1) are computed on the server, so the page works without scripts.
// The panel starts collapsed and empty unless weights or calc=open are in the query; closing it
// links back to the bare page, which drops every weight.
func (s *Server) handleDetailPage(w http.ResponseWriter, r *http.Request) {
	s.renderDetail(w, r, http.StatusOK, r.URL.Query().Get("error"))
}

func (s *Server) renderDetail(w http.ResponseWriter, r *http.Request, status int, errorMessage string) {
	record, ok := s.loadRecord(w, r)
	if !ok {
		return
	}

	prices, err := s.deps.Prices.GetCurrent(r.Context())
	if err != nil && !errors.Is(err, model.ErrPricesNotFound) {
		s.internalError(w, "get prices", err)
		return
	}

	query := r.URL.Query()
	calc := calculator.FromInput(query)
	breakdown := calc.Breakdown(calculator.PricesFrom(prices))

	calculatorOpen := query.Get(calculatorOpenParam) == "open"
	weights := map[string][]string{}
	for _, category := range calculator.Categories {
		weights[string(category)] = query[string(category)]
		calculatorOpen = calculatorOpen || len(query[string(category)]) > 0
	}

	s.render(w, "detail", status, detailPage{
		Title:      record.JONumber,
		Record:     record,
		Components: componentRows(record.GetComponents()),
		Prices:     prices,
		Categories: calculator.Categories,
		Weights:    weights,
		Breakdown:  breakdown,
		Total:      calculator.ComputeTotal(breakdown),
		Error:      errorMessage,

		CalculatorOpen: calculatorOpen,
	})
}

type formPage struct {
	Title            string
	Action           string
	Editing          bool
	JONumber         string
	ItemName         string
	Classification   string
	CostOfProduction string
	Notes            string
	Components       []componentRow
	Classifications  []string
	Error            string
}

func (s *Server) handleAddPage(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, r, http.StatusOK, formPage{Title: "Add jewelry", Action: "/add", Components: formRows(nil)})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	input, err := parseJewelryForm(r)
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	record, err := s.deps.Jewelry.Create(r.Context(), input)
	if err != nil {
		page := inputFormPage(input)
		page.Title, page.Action = "Add jewelry", "/add"
		s.renderFormError(w, r, page, err)
		return
	}

	http.Redirect(w, r, recordPath(record.JONumber), http.StatusSeeOther)
}

func (s *Server) handleEditPage(w http.ResponseWriter, r *http.Request) {
	record, ok := s.loadRecord(w, r)
	if !ok {
		return
	}

	components := record.GetComponents()
	var cost string
	if values := components[usecases.ComponentCostOfProduction]; len(values) > 0 {
		cost = values[0]
	}

	s.renderForm(w, r, http.StatusOK, formPage{
		Title:            "Edit " + record.JONumber,
		Action:           recordPath(record.JONumber) + "/edit",
		Editing:          true,
		JONumber:         record.JONumber,
		ItemName:         record.ItemName,
		Classification:   record.Classification,
		CostOfProduction: cost,
		Notes:            record.Notes,
		Components:       formRows(components),
	})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	joNumber := joParam(r)

	input, err := parseJewelryForm(r)
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	record, err := s.deps.Jewelry.Update(r.Context(), joNumber, input)
	if errors.Is(err, model.ErrRecordNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		input.JONumber = joNumber
		page := inputFormPage(input)
		page.Title, page.Action, page.Editing = "Edit "+joNumber, recordPath(joNumber)+"/edit", true
		s.renderFormError(w, r, page, err)
		return
	}

	http.Redirect(w, r, recordPath(record.JONumber), http.StatusSeeOther)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	joNumber := joParam(r)
	r.Body = http.MaxBytesReader(w, r.Body, usecases.MaxImageSize+1<<20)

	file, header, err := r.FormFile("image")
	if err != nil {
		s.redirectWithError(w, r, joNumber, "Choose a JPEG, PNG or WebP photo up to 5 MB.")
		return
	}
	defer file.Close()

	_, err = s.deps.Jewelry.UploadImage(r.Context(), joNumber, header.Header.Get("Content-Type"), header.Size, file)
	switch {
	case errors.Is(err, model.ErrRecordNotFound):
		http.NotFound(w, r)
	case errors.Is(err, model.ErrValidation):
		s.redirectWithError(w, r, joNumber, "Choose a JPEG, PNG or WebP photo up to 5 MB.")
	case err != nil:
		s.internalError(w, "upload image", err)
	default:
		http.Redirect(w, r, recordPath(joNumber), http.StatusSeeOther)
	}
}

type accessPage struct {
	Title string
}

func (s *Server) handleAccessPage(w http.ResponseWriter, r *http.Request) {
	if s.deps.Authorizer.HasSession(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	s.render(w, "access", http.StatusOK, accessPage{Title: "Access"})
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, page formPage) {
	classifications, err := s.deps.Jewelry.Classifications(r.Context())
	if err != nil {
		s.internalError(w, "list classifications", err)
		return
	}
	page.Classifications = classifications

	s.render(w, "form", status, page)
}

func (s *Server) renderFormError(w http.ResponseWriter, r *http.Request, page formPage, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		page.Error = strings.TrimPrefix(err.Error(), model.ErrValidation.Error()+": ")
		s.renderForm(w, r, http.StatusUnprocessableEntity, page)
	case errors.Is(err, model.ErrAlreadyExists):
		page.Error = "JO number " + page.JONumber + " already exists."
		s.renderForm(w, r, http.StatusConflict, page)
	default:
		s.internalError(w, "save jewelry", err)
	}
}

func (s *Server) loadRecord(w http.ResponseWriter, r *http.Request) (*model.JewelryRecord, bool) {
	record, err := s.deps.Jewelry.Get(r.Context(), joParam(r))
	if errors.Is(err, model.ErrRecordNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		s.internalError(w, "get jewelry", err)
		return nil, false
	}

	return record, true
}

func (s *Server) redirectWithError(w http.ResponseWriter, r *http.Request, joNumber string, message string) {
	http.Redirect(w, r, recordPath(joNumber)+"?"+url.Values{"error": {message}}.Encode(), http.StatusSeeOther)
}

func (s *Server) internalError(w http.ResponseWriter, action string, err error) {
	s.logger.Error("request failed", "action", action, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func parseJewelryForm(r *http.Request) (usecases.JewelryInput, error) {
	if err := r.ParseForm(); err != nil {
		return usecases.JewelryInput{}, err
	}

	input := usecases.JewelryInput{
		JONumber:         r.PostForm.Get("jo_number"),
		ItemName:         r.PostForm.Get("item_name"),
		Classification:   r.PostForm.Get("classification"),
		CostOfProduction: r.PostForm.Get("cost_of_production"),
		Notes:            r.PostForm.Get("notes"),
		Components:       map[string][]string{},
	}

	for key, values := range r.PostForm {
		if category, ok := strings.CutPrefix(key, componentFieldPrefix); ok {
			input.Components[category] = values
		}
	}

	return input, nil
}

func inputFormPage(input usecases.JewelryInput) formPage {
	return formPage{
		JONumber:         input.JONumber,
		ItemName:         input.ItemName,
		Classification:   input.Classification,
		CostOfProduction: input.CostOfProduction,
		Notes:            input.Notes,
		Components:       formRows(input.Components),
	}
}

// formRows lists the standard categories first, then any other category of the record.
func formRows(components map[string][]string) []componentRow {
	rows := make([]componentRow, 0, len(formCategories)+len(components))
	seen := map[string]bool{usecases.ComponentCostOfProduction: true}

	for _, name := range formCategories {
		rows = append(rows, componentRow{Name: name, Values: components[name]})
		seen[name] = true
	}

	for _, row := range componentRows(components) {
		if !seen[row.Name] {
			rows = append(rows, row)
		}
	}

	return rows
}

func componentRows(components map[string][]string) []componentRow {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]componentRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, componentRow{Name: name, Values: components[name]})
	}
	return rows
}

func joParam(r *http.Request) string {
	raw := chi.URLParam(r, "jo")
	if jo, err := url.PathUnescape(raw); err == nil {
		return jo
	}
	return raw
}

func recordPath(joNumber string) string {
	return "/j/" + url.PathEscape(joNumber)
}
