package bot

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/gatekeeper-bot/internal/access"
	apperrors "github.com/Proton-105/gatekeeper-bot/internal/errors"
	"github.com/Proton-105/gatekeeper-bot/internal/i18n"
	"github.com/Proton-105/gatekeeper-bot/internal/idempotency"
	"github.com/Proton-105/gatekeeper-bot/internal/ratelimit"
	"github.com/Proton-105/gatekeeper-bot/internal/status"
	"github.com/Proton-105/gatekeeper-bot/internal/testutil"
	"github.com/Proton-105/gatekeeper-bot/pkg/config"
)

const allowedID int64 = 1001

func newTestBot(t *testing.T, log *slog.Logger, mutate func(*Deps), opts ...Option) *Bot {
	t.Helper()

	mgr, err := i18n.Load("pt")
	require.NoError(t, err)

	if log == nil {
		log = testutil.DiscardLogger()
	}

	deps := Deps{
		Log:        log,
		Translator: mgr.Default(),
		Filter:     access.NewFilter(access.NewAllowList(allowedID), log),
		Reporter:   status.NewReporter(time.Now(), "test"),
		ErrHandler: apperrors.NewHandler(log, false),
	}
	if mutate != nil {
		mutate(&deps)
	}

	b, err := New(config.BotConfig{Token: "1:test", Mode: config.ModePolling}, deps, append([]Option{WithOffline()}, opts...)...)
	require.NoError(t, err)
	return b
}

func tr(t *testing.T) i18n.Translator {
	t.Helper()
	mgr, err := i18n.Load("pt")
	require.NoError(t, err)
	return mgr.Default()
}

func TestBot_RoutesAllowedUpdates(t *testing.T) {
	b := newTestBot(t, nil, nil)
	user := &telebot.User{ID: allowedID, FirstName: "Ana"}

	cases := []struct {
		text     string
		contains string
	}{
		{"/start", "Olá, Ana!"},
		{"/status", "Status do Bot"},
		{"/help", tr(t).T(i18n.KeyUnknownCommand)},
		{"hello there", tr(t).T(i18n.KeyGreeting)},
	}

	for i, tc := range cases {
		c := testutil.NewContext(i+1, user, tc.text)
		require.NoError(t, b.Handler()(c), tc.text)

		sent := c.SentMessages()
		require.Len(t, sent, 1, tc.text)
		assert.Contains(t, sent[0].Text(), tc.contains, tc.text)
	}
}

func TestBot_DeniesUnknownSender(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	b := newTestBot(t, log, nil)

	c := testutil.NewContext(1, &telebot.User{ID: 999, Username: "mallory"}, "/start")
	require.NoError(t, b.Handler()(c))

	sent := c.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, tr(t).T(i18n.KeyAccessDenied), sent[0].Text())
	assert.Contains(t, buf.String(), "access denied")
	assert.NotContains(t, buf.String(), "message received")

	anonymous := testutil.NewContext(2, nil, "/status")
	require.NoError(t, b.Handler()(anonymous))
	require.Len(t, anonymous.SentMessages(), 1)
	assert.Equal(t, tr(t).T(i18n.KeyAccessDenied), anonymous.SentMessages()[0].Text())
}

func TestBot_LogsActivity(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	b := newTestBot(t, log, nil)

	c := testutil.NewContext(77, &telebot.User{ID: allowedID, Username: "ana"}, "hi")
	require.NoError(t, b.Handler()(c))

	out := buf.String()
	assert.Contains(t, out, "message received")
	assert.Contains(t, out, "from=ana")
	assert.Contains(t, out, "user_id=1001")
	assert.Contains(t, out, "chat_id=1001")
	assert.Contains(t, out, "update_id=77")
}

func TestBot_DeliveryFailureDoesNotStopProcessing(t *testing.T) {
	b := newTestBot(t, nil, nil)
	user := &telebot.User{ID: allowedID, FirstName: "Ana"}

	failing := testutil.NewContext(1, user, "/start")
	failing.SendErr = errors.New("chat not found")
	assert.NoError(t, b.Handler()(failing))

	next := testutil.NewContext(2, user, "/status")
	require.NoError(t, b.Handler()(next))
	assert.Len(t, next.SentMessages(), 1)
}

func TestBot_DuplicateUpdateHandledOnce(t *testing.T) {
	b := newTestBot(t, nil, func(d *Deps) {
		d.Idempotency = idempotency.NewManager(idempotency.NewMemoryStore(), nil)
		d.IdempotencyTTL = time.Hour
	})

	c := testutil.NewContext(5, &telebot.User{ID: allowedID}, "hi")
	require.NoError(t, b.Handler()(c))
	require.NoError(t, b.Handler()(c))

	assert.Len(t, c.SentMessages(), 1)
}

func TestBot_RateLimited(t *testing.T) {
	b := newTestBot(t, nil, func(d *Deps) {
		d.Limiter = ratelimit.NewMemoryLimiter(ratelimit.Rules{Limit: 1, Window: time.Minute})
	})
	user := &telebot.User{ID: allowedID}

	first := testutil.NewContext(1, user, "hi")
	require.NoError(t, b.Handler()(first))
	assert.Equal(t, tr(t).T(i18n.KeyGreeting), first.SentMessages()[0].Text())

	second := testutil.NewContext(2, user, "hi")
	require.NoError(t, b.Handler()(second))
	assert.Equal(t, tr(t).Format(i18n.KeyRateLimited, map[string]string{"seconds": "60"}), second.SentMessages()[0].Text())
}

func TestBot_OnErrorLogsWithUpdateContext(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	b := newTestBot(t, log, nil)

	c := testutil.NewContext(42, &telebot.User{ID: allowedID}, "hi")
	b.onError(errors.New("boom"), c)
	b.onError(errors.New("poller failed"), nil)

	out := buf.String()
	assert.Contains(t, out, "update_id=42")
	assert.Contains(t, out, "user_id=1001")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, apperrors.CodeTransport)
	assert.Equal(t, 2, strings.Count(out, "update handling failed"))
}

func TestBot_OnErrorRepliesWithGenericMessage(t *testing.T) {
	b := newTestBot(t, nil, nil)
	user := &telebot.User{ID: allowedID}

	failed := testutil.NewContext(1, user, "hi")
	b.onError(apperrors.NewHandlerError(errors.New("boom")), failed)
	require.Len(t, failed.SentMessages(), 1)
	assert.Equal(t, tr(t).T(i18n.KeyError), failed.SentMessages()[0].Text())

	undelivered := testutil.NewContext(2, user, "hi")
	b.onError(apperrors.NewDeliveryError("reply", errors.New("chat not found")), undelivered)
	assert.Empty(t, undelivered.SentMessages())

	unreachable := testutil.NewContext(3, user, "hi")
	unreachable.SendErr = errors.New("bot was blocked by the user")
	assert.NotPanics(t, func() {
		b.onError(errors.New("boom"), unreachable)
	})
}

func TestBot_PanicInRouteRepliesWithGenericMessage(t *testing.T) {
	b := newTestBot(t, nil, nil)
	b.router.RegisterCommand("/panic", func(telebot.Context) error { panic("kaboom") })

	c := testutil.NewContext(1, &telebot.User{ID: allowedID}, "/panic")
	err := b.Handler()(c)
	require.Error(t, err)

	b.onError(err, c)
	require.Len(t, c.SentMessages(), 1)
	assert.Equal(t, tr(t).T(i18n.KeyError), c.SentMessages()[0].Text())
}

func TestBot_Identity(t *testing.T) {
	assert.Equal(t, "@gatekeeper (Gate)", Identity{Username: "gatekeeper", FirstName: "Gate"}.String())

	b := newTestBot(t, nil, nil)
	assert.NotNil(t, b.Telebot())
	assert.Equal(t, Identity{}, b.Identity())
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(config.BotConfig{Token: "1:test"}, Deps{}, WithOffline())
	assert.Error(t, err)
}

func TestRecoveryMiddleware_ConvertsPanic(t *testing.T) {
	h := RecoveryMiddleware(testutil.DiscardLogger())(func(telebot.Context) error {
		panic("kaboom")
	})

	err := h(testutil.NewContext(1, &telebot.User{ID: 1}, "hi"))
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeHandler, appErr.Code)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestActivityLogger_SwallowsPanics(t *testing.T) {
	stage := ActivityLogger(testutil.DiscardLogger())

	// Sender panics before anything is logged.
	d := stage(&panickyContext{})
	assert.False(t, d.Halted())
}

type panickyContext struct {
	testutil.Context
}

func (p *panickyContext) Sender() *telebot.User { panic("broken sender") }
