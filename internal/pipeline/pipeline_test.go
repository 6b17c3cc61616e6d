package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/gatekeeper-bot/internal/testutil"
	"github.com/Proton-105/gatekeeper-bot/pkg/metrics"
)

func TestPipeline_RunsStagesInOrder(t *testing.T) {
	var order []string
	stage := func(name string) Stage {
		return func(telebot.Context) Decision {
			order = append(order, name)
			return Continue()
		}
	}

	final := func(telebot.Context) error {
		order = append(order, "final")
		return nil
	}

	c := testutil.NewContext(1, &telebot.User{ID: 1}, "hi")
	require.NoError(t, New(nil, stage("a"), nil, stage("b")).Then(final)(c))
	assert.Equal(t, []string{"a", "b", "final"}, order)
}

func TestPipeline_ShortCircuit(t *testing.T) {
	called := false
	halt := func(telebot.Context) Decision {
		return Reply("stop").WithOutcome(metrics.OutcomeDenied)
	}
	after := func(telebot.Context) Decision {
		called = true
		return Continue()
	}
	final := func(telebot.Context) error {
		called = true
		return nil
	}

	c := testutil.NewContext(1, &telebot.User{ID: 1}, "hi")
	require.NoError(t, New(testutil.DiscardLogger(), halt, after).Then(final)(c))

	assert.False(t, called)
	sent := c.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "stop", sent[0].Text())
}

func TestPipeline_SilentHaltAndDeliveryFailure(t *testing.T) {
	c := testutil.NewContext(1, &telebot.User{ID: 1}, "hi")
	silent := func(telebot.Context) Decision { return Reply("") }
	require.NoError(t, New(nil, silent).Then(nil)(c))
	assert.Empty(t, c.SentMessages())

	c.SendErr = errors.New("down")
	loud := func(telebot.Context) Decision { return Reply("x") }
	assert.NoError(t, New(testutil.DiscardLogger(), loud).Then(nil)(c))
}

func TestPipeline_PropagatesHandlerError(t *testing.T) {
	boom := errors.New("boom")
	c := testutil.NewContext(1, &telebot.User{ID: 1}, "hi")

	err := New(nil).Then(func(telebot.Context) error { return boom })(c)
	assert.ErrorIs(t, err, boom)
}
