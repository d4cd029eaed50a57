package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	telegramBot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"joarchive/internal/config"
	"joarchive/internal/model"
)

var ErrWrongNumberOfArguments = fmt.Errorf("wrong number of arguments")

type PricesRepository interface {
	GetCurrent(ctx context.Context) (*model.MetalPrices, error)
}

// Settings controls where notifications go and how prices are rendered.
type Settings struct {
	AdminChatID    int64
	Language       string
	CurrencySymbol string
	Location       *time.Location
}

type Interaction struct {
	logger           *slog.Logger
	TgBot            *telegramBot.Bot
	bundle           *i18n.Bundle
	pricesRepository PricesRepository
	settings         Settings
}

func NewInteraction(logger *slog.Logger, token string, client telegramBot.HttpClient, bundle *i18n.Bundle, pricesRepository PricesRepository, settings Settings) *Interaction {
	if settings.Language == "" {
		settings.Language = config.DefaultLanguageCode
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}

	cnt := &Interaction{
		logger:           logger.With("component", "telegram"),
		bundle:           bundle,
		pricesRepository: pricesRepository,
		settings:         settings,
	}

	opts := []telegramBot.Option{
		telegramBot.WithHTTPClient(time.Minute, client),
		telegramBot.WithSkipGetMe(),
		telegramBot.WithDefaultHandler(cnt.handler),
	}

	b, _ := telegramBot.New(token, opts...)
	b.RegisterHandler(telegramBot.HandlerTypeMessageText, "/start", telegramBot.MatchTypeExact, cnt.handlerStart)
	b.RegisterHandler(telegramBot.HandlerTypeMessageText, "/price", telegramBot.MatchTypeExact, cnt.handlerPrice)
	b.RegisterHandler(telegramBot.HandlerTypeMessageText, "/help", telegramBot.MatchTypeExact, cnt.handlerHelp)

	cnt.TgBot = b
	return cnt
}

func (that *Interaction) Start(ctx context.Context) {
	that.TgBot.Start(ctx)
}

// NotifyPricesUpdated posts the refreshed prices to the admin chat.
func (that *Interaction) NotifyPricesUpdated(ctx context.Context, prices *model.MetalPrices) error {
	if that.settings.AdminChatID == 0 {
		return nil
	}

	lang := that.settings.Language
	title, _ := that.renderLocaledMessage(lang, "pricesUpdatedTitle")
	text := fmt.Sprintf("<b>%s</b>\n%s", title, that.PricesToString(lang, prices))

	if _, err := that.TgBot.SendMessage(ctx, &telegramBot.SendMessageParams{ChatID: that.settings.AdminChatID, Text: text, ParseMode: models.ParseModeHTML}); err != nil {
		return fmt.Errorf("send prices to admin chat: %w", err)
	}

	return nil
}

// NotifyPricesFailed posts the refresh error to the admin chat.
func (that *Interaction) NotifyPricesFailed(ctx context.Context, cause error) error {
	if that.settings.AdminChatID == 0 {
		return nil
	}

	text, err := that.renderLocaledMessage(that.settings.Language, "pricesFailedMessage", "Error", cause.Error())
	if err != nil {
		return err
	}

	if _, err = that.TgBot.SendMessage(ctx, &telegramBot.SendMessageParams{ChatID: that.settings.AdminChatID, Text: text}); err != nil {
		return fmt.Errorf("send failure to admin chat: %w", err)
	}

	return nil
}

func (that *Interaction) handler(_ context.Context, _ *telegramBot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	that.logger.With("method", "handler", "user_id", update.Message.From.ID).Debug("ignoring message", "text", update.Message.Text)
}

// getUserLanguage returns the language of the user who sent the update.
func (that *Interaction) getUserLanguage(update *models.Update) string {
	if update.Message != nil && update.Message.From != nil && update.Message.From.LanguageCode != "" {
		return update.Message.From.LanguageCode
	}
	return that.settings.Language
}

// renderLocaledMessage renders a localized message.
func (that *Interaction) renderLocaledMessage(languageCode string, messageID string, args ...string) (string, error) {
	if len(args)%2 != 0 {
		return "", ErrWrongNumberOfArguments
	}

	templateData := make(map[string]string, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		templateData[args[i]] = args[i+1]
	}

	localizer := i18n.NewLocalizer(that.bundle, languageCode, config.DefaultLanguageCode)
	text, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID, TemplateData: templateData})
	if err != nil {
		return "", fmt.Errorf("localize message: %w", err)
	}

	return text, nil
}

// sendLocaledMessage sends a localized message to the user.
func (that *Interaction) sendLocaledMessage(ctx context.Context, bot *telegramBot.Bot, update *models.Update, messageID string, args ...string) (*models.Message, error) {
	text, err := that.renderLocaledMessage(that.getUserLanguage(update), messageID, args...)
	if err != nil {
		return nil, fmt.Errorf("render localed message: %w", err)
	}

	msg, err := bot.SendMessage(ctx, &telegramBot.SendMessageParams{ChatID: update.Message.Chat.ID, Text: text})
	if err != nil {
		return nil, fmt.Errorf("send message to telegram user: %w", err)
	}

	return msg, nil
}
