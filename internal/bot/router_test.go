package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/gatekeeper-bot/internal/bot/handlers"
	"github.com/Proton-105/gatekeeper-bot/internal/testutil"
)

func recorder(name string, got *[]string) handlers.Handler {
	return func(telebot.Context) error {
		*got = append(*got, name)
		return nil
	}
}

func TestRouter_PrefixOrder(t *testing.T) {
	var got []string
	r := NewRouter(testutil.DiscardLogger())
	r.RegisterCommand(CommandStart, recorder("start", &got))
	r.RegisterCommand(CommandStatus, recorder("status", &got))
	r.SetUnknown(recorder("unknown", &got))
	r.SetDefault(recorder("default", &got))

	inputs := map[string]string{
		"/start":          "start",
		"/start@some_bot": "start",
		"/status now":     "status",
		"/stat":           "unknown",
		"/":               "unknown",
		"hello":           "default",
		"":                "default",
		" /start":         "default",
	}

	for text, want := range inputs {
		got = nil
		require.NoError(t, r.Route(testutil.NewContext(1, &telebot.User{ID: 1}, text)), text)
		assert.Equal(t, []string{want}, got, text)
	}
}

func TestRouter_SetsCommandAndAppliesMiddleware(t *testing.T) {
	var order []string
	r := NewRouter(nil)
	r.Use(func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			order = append(order, "mw:"+c.Get(handlers.ContextKeyCommand).(string))
			return next(c)
		}
	})
	r.RegisterCommand(CommandStatus, recorder("status", &order))

	require.NoError(t, r.Route(testutil.NewContext(1, &telebot.User{ID: 1}, "/status")))
	assert.Equal(t, []string{"mw:/status", "status"}, order)

	order = nil
	require.NoError(t, r.Route(testutil.NewContext(2, &telebot.User{ID: 1}, "plain")))
	assert.Empty(t, order)
	assert.NoError(t, r.Route(nil))
}

func TestRouter_ReRegisterKeepsPosition(t *testing.T) {
	var got []string
	r := NewRouter(nil)
	r.RegisterCommand("/s", recorder("first", &got))
	r.RegisterCommand("/status", recorder("status", &got))
	r.RegisterCommand("/s", recorder("replaced", &got))

	require.NoError(t, r.Route(testutil.NewContext(1, &telebot.User{ID: 1}, "/status")))
	assert.Equal(t, []string{"replaced"}, got)
}
