package handlers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/gatekeeper-bot/internal/i18n"
	"github.com/Proton-105/gatekeeper-bot/internal/status"
	fake "github.com/Proton-105/gatekeeper-bot/internal/testutil"
)

func translator(t *testing.T) i18n.Translator {
	t.Helper()

	mgr, err := i18n.Load("pt")
	require.NoError(t, err)
	return mgr.Default()
}

func TestStartHandler_GreetsByFirstName(t *testing.T) {
	c := fake.NewContext(1, &telebot.User{ID: 7, FirstName: "Ana_Maria"}, "/start")

	err := NewStartHandler(translator(t), fake.DiscardLogger())(c)
	require.NoError(t, err)

	sent := c.SentMessages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Text(), `Olá, Ana\_Maria!`)
	assert.Contains(t, sent[0].Text(), "/status")
	assert.Equal(t, telebot.ModeMarkdown, sent[0].ParseMode())
}

func TestStartHandler_SwallowsDeliveryFailure(t *testing.T) {
	c := fake.NewContext(1, &telebot.User{ID: 7, FirstName: "Ana"}, "/start")
	c.SendErr = errors.New("network down")

	err := NewStartHandler(translator(t), fake.DiscardLogger())(c)

	assert.NoError(t, err)
	assert.Empty(t, c.SentMessages())
}

func TestStatusHandler_ReportsSnapshot(t *testing.T) {
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)
	reporter := status.NewReporter(started, "production",
		status.WithClock(func() time.Time { return started.Add(3*time.Hour + 25*time.Minute + 9*time.Second) }),
		status.WithHeapReader(func() uint64 { return 12 * 1024 * 1024 }),
	)
	c := fake.NewContext(2, &telebot.User{ID: 7, Username: "ana"}, "/status")

	err := NewStatusHandler(reporter, translator(t), fake.DiscardLogger())(c)
	require.NoError(t, err)

	sent := c.SentMessages()
	require.Len(t, sent, 1)
	text := sent[0].Text()
	assert.Contains(t, text, "3h 25m 9s")
	assert.Contains(t, text, "12MB")
	assert.Contains(t, text, "production")
	assert.Contains(t, text, "01/05/2024, 13:25:09")
	assert.Equal(t, telebot.ModeMarkdown, sent[0].ParseMode())
}

func TestStatusHandler_SwallowsDeliveryFailure(t *testing.T) {
	c := fake.NewContext(2, &telebot.User{ID: 7}, "/status")
	c.SendErr = errors.New("forbidden")

	err := NewStatusHandler(status.NewReporter(time.Now(), ""), translator(t), fake.DiscardLogger())(c)
	assert.NoError(t, err)
}

func TestTextHandler(t *testing.T) {
	c := fake.NewContext(3, &telebot.User{ID: 7}, "hello")

	require.NoError(t, NewTextHandler("greeting", "hi there", nil)(c))

	sent := c.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "hi there", sent[0].Text())
	assert.Equal(t, telebot.ModeDefault, sent[0].ParseMode())

	c.SendErr = errors.New("blocked")
	assert.NoError(t, NewTextHandler("greeting", "hi there", nil)(c))
}

func TestUpdateAttrs(t *testing.T) {
	c := fake.NewContext(9, &telebot.User{ID: 5}, "x")
	c.Set(ContextKeyCorrelationID, "abc")

	assert.Equal(t, "abc", CorrelationID(c))
	assert.Len(t, UpdateAttrs(c), 4)
	assert.Nil(t, UpdateAttrs(nil))
	assert.Empty(t, CorrelationID(nil))
}
