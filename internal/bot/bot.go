package bot

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/gatekeeper-bot/internal/access"
	"github.com/Proton-105/gatekeeper-bot/internal/bot/handlers"
	errors "github.com/Proton-105/gatekeeper-bot/internal/errors"
	"github.com/Proton-105/gatekeeper-bot/internal/i18n"
	"github.com/Proton-105/gatekeeper-bot/internal/idempotency"
	"github.com/Proton-105/gatekeeper-bot/internal/middleware"
	"github.com/Proton-105/gatekeeper-bot/internal/pipeline"
	"github.com/Proton-105/gatekeeper-bot/internal/ratelimit"
	"github.com/Proton-105/gatekeeper-bot/internal/status"
	"github.com/Proton-105/gatekeeper-bot/pkg/config"
	"github.com/Proton-105/gatekeeper-bot/pkg/logger"
)

// Identity is the bot's own account as reported by getMe.
type Identity struct {
	Username  string
	FirstName string
}

func (i Identity) String() string {
	return fmt.Sprintf("@%s (%s)", i.Username, i.FirstName)
}

// Deps are the collaborators used while handling updates.
type Deps struct {
	Log        *slog.Logger
	Translator i18n.Translator
	Filter     *access.Filter
	Reporter   *status.Reporter
	ErrHandler *errors.Handler

	// Optional. A nil Idempotency manager disables de-duplication and a nil
	// Limiter disables rate limiting.
	Idempotency    idempotency.Manager
	IdempotencyTTL time.Duration
	Limiter        ratelimit.Limiter
}

// Option adjusts telebot settings before the bot is created.
type Option func(*telebot.Settings)

// WithOffline skips the getMe call. Used in tests.
func WithOffline() Option {
	return func(s *telebot.Settings) {
		s.Offline = true
	}
}

// WithAPIURL points the client at a different Bot API server.
func WithAPIURL(url string) Option {
	return func(s *telebot.Settings) {
		s.URL = url
	}
}

// Bot wraps telebot.Bot with application dependencies required for handling updates.
type Bot struct {
	telebot    *telebot.Bot
	log        *slog.Logger
	deps       Deps
	router     *Router
	handler    handlers.Handler
	passive    handlers.Handler
	errHandler *errors.Handler
}

// New builds a telegram bot instance configured according to the application settings.
// The bot identity is fetched from Telegram here, so an invalid token fails fast.
func New(cfg config.BotConfig, deps Deps, opts ...Option) (*Bot, error) {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.ErrHandler == nil {
		deps.ErrHandler = errors.NewHandler(deps.Log, false)
	}
	if deps.Translator == nil {
		return nil, fmt.Errorf("initialize bot: translator is required")
	}
	if deps.Filter == nil {
		return nil, fmt.Errorf("initialize bot: access filter is required")
	}
	if deps.Reporter == nil {
		return nil, fmt.Errorf("initialize bot: status reporter is required")
	}

	b := &Bot{
		log:        deps.Log,
		deps:       deps,
		errHandler: deps.ErrHandler,
	}

	settings := telebot.Settings{
		Token:       cfg.Token,
		Synchronous: true,
		OnError:     b.onError,
	}

	if cfg.Mode == config.ModeWebhook {
		settings.Poller = &telebot.Webhook{
			Listen:   cfg.WebhookListen,
			Endpoint: &telebot.WebhookEndpoint{PublicURL: cfg.WebhookURL},
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.PollTimeout,
		}
	}

	for _, opt := range opts {
		opt(&settings)
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, errors.NewTransportError(fmt.Errorf("initialize telebot: %w", err))
	}
	b.telebot = tb

	b.router = NewRouter(b.log)
	b.setupRouter()
	b.handler = b.chain(b.router.Route)
	b.passive = b.chain(nil)
	b.registerTelebotHandlers()

	return b, nil
}

// Identity returns the bot account fetched at startup.
func (b *Bot) Identity() Identity {
	if b == nil || b.telebot == nil || b.telebot.Me == nil {
		return Identity{}
	}
	return Identity{Username: b.telebot.Me.Username, FirstName: b.telebot.Me.FirstName}
}

// Start runs the telegram bot event loop. It blocks until Stop is called.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop stops the poller and waits for the update being handled, if any.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

// Handler returns the full update handling chain.
func (b *Bot) Handler() handlers.Handler {
	return b.handler
}

func (b *Bot) setupRouter() {
	tr := b.deps.Translator

	b.router.Use(middleware.Metrics)

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(tr, b.log))
	b.router.RegisterCommand(CommandStatus, handlers.NewStatusHandler(b.deps.Reporter, tr, b.log))
	b.router.SetUnknown(handlers.NewTextHandler(RouteUnknown, tr.T(i18n.KeyUnknownCommand), b.log))
	b.router.SetDefault(handlers.NewTextHandler(RouteText, tr.T(i18n.KeyGreeting), b.log))
}

// chain wraps final with the access filter, activity log and rate limit.
// A nil final stops after the stages, so the update is filtered and logged
// but never answered by a route.
func (b *Bot) chain(final handlers.Handler) handlers.Handler {
	tr := b.deps.Translator

	p := pipeline.New(b.log,
		b.deps.Filter.Stage(tr.T(i18n.KeyAccessDenied)),
		ActivityLogger(b.log),
		middleware.RateLimit(b.deps.Limiter, tr, b.log),
	)

	h := p.Then(final)
	h = middleware.Idempotency(b.deps.Idempotency, b.deps.IdempotencyTTL, b.log)(h)
	h = middleware.Correlation(h)
	return RecoveryMiddleware(b.log)(h)
}

// passiveEvents are the non-text updates that still pass the access filter
// and show up in the activity log. Only text reaches the router.
var passiveEvents = []string{
	telebot.OnMedia,
	telebot.OnContact,
	telebot.OnLocation,
	telebot.OnVenue,
	telebot.OnDice,
	telebot.OnEdited,
	telebot.OnCallback,
}

func (b *Bot) registerTelebotHandlers() {
	b.telebot.Handle(telebot.OnText, func(c telebot.Context) error {
		return b.handler(c)
	})

	passive := func(c telebot.Context) error {
		return b.passive(c)
	}
	for _, event := range passiveEvents {
		b.telebot.Handle(event, passive)
	}
}

// onError receives every error returned by handlers and by the poller. It never stops the bot.
func (b *Bot) onError(err error, c telebot.Context) {
	if c == nil {
		b.errHandler.Handle(context.Background(), errors.NewTransportError(err))
		return
	}

	ctx := logger.WithCorrelationID(context.Background(), handlers.CorrelationID(c))

	attrs := []slog.Attr{slog.Int("update_id", c.Update().ID)}
	if sender := c.Sender(); sender != nil {
		attrs = append(attrs, slog.Int64("user_id", sender.ID))
	}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.Int64("chat_id", chat.ID))
	}

	b.errHandler.Handle(ctx, err, attrs...)
	b.replyError(ctx, err, c)
}

// replyError tells the chat that its update failed. Delivery failures are
// not answered since the chat is likely unreachable.
func (b *Bot) replyError(ctx context.Context, err error, c telebot.Context) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Code == errors.CodeDelivery {
		return
	}
	if c.Chat() == nil && c.Sender() == nil {
		return
	}

	if sendErr := c.Send(b.deps.Translator.T(i18n.KeyError)); sendErr != nil {
		b.log.WarnContext(ctx, "failed to send error reply",
			slog.String("error", sendErr.Error()),
			slog.Int("update_id", c.Update().ID),
		)
	}
}
