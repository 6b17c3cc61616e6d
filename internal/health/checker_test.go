package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"

	"github.com/Proton-105/gatekeeper-bot/internal/testutil"
)

func TestChecker_Check(t *testing.T) {
	checker := NewChecker(testutil.DiscardLogger())
	checker.AddCheck("ok", CheckFunc(func(context.Context) error { return nil }))
	checker.AddCheck("broken", CheckFunc(func(context.Context) error { return errors.New("down") }))
	checker.AddCheck("", CheckFunc(func(context.Context) error { return nil }))
	checker.AddCheck("nil", nil)

	assert.Equal(t, []string{"broken", "ok"}, checker.Names())

	results, healthy := checker.Check(context.Background())
	assert.False(t, healthy)
	assert.Equal(t, map[string]string{"ok": StatusOK, "broken": "down"}, results)
}

func TestTelegramChecker(t *testing.T) {
	assert.Error(t, NewTelegramChecker(nil).HealthCheck(context.Background()))

	bot, err := telebot.NewBot(telebot.Settings{Token: "1:test", Offline: true})
	require.NoError(t, err)
	assert.NoError(t, NewTelegramChecker(bot).HealthCheck(context.Background()))
}
