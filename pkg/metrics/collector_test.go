package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordUpdate(t *testing.T) {
	before := testutil.ToFloat64(updatesTotal.WithLabelValues(OutcomeDenied))
	RecordUpdate(OutcomeDenied)
	assert.Equal(t, before+1, testutil.ToFloat64(updatesTotal.WithLabelValues(OutcomeDenied)))

	beforeUnknown := testutil.ToFloat64(updatesTotal.WithLabelValues("unknown"))
	RecordUpdate("")
	assert.Equal(t, beforeUnknown+1, testutil.ToFloat64(updatesTotal.WithLabelValues("unknown")))
}

func TestRecordCommand(t *testing.T) {
	before := testutil.ToFloat64(botCommandsTotal.WithLabelValues("status", "ok"))
	RecordCommand("status", "ok", 15*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(botCommandsTotal.WithLabelValues("status", "ok")))
}

func TestGauges(t *testing.T) {
	SetAllowListSize(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(allowListSize))

	SetBotInfo("gatekeeper_bot", "test")
	assert.Equal(t, float64(1), testutil.ToFloat64(botInfo.WithLabelValues("gatekeeper_bot", "test")))

	before := testutil.ToFloat64(deliveryFailuresTotal.WithLabelValues("welcome"))
	RecordDeliveryFailure("welcome")
	assert.Equal(t, before+1, testutil.ToFloat64(deliveryFailuresTotal.WithLabelValues("welcome")))
}

func TestRecordRateLimit(t *testing.T) {
	allowed := testutil.ToFloat64(rateLimitDecisionsTotal.WithLabelValues("redis", "allowed"))
	rejected := testutil.ToFloat64(rateLimitDecisionsTotal.WithLabelValues("redis", "rejected"))
	RecordRateLimit("redis", true)
	RecordRateLimit("redis", false)
	assert.Equal(t, allowed+1, testutil.ToFloat64(rateLimitDecisionsTotal.WithLabelValues("redis", "allowed")))
	assert.Equal(t, rejected+1, testutil.ToFloat64(rateLimitDecisionsTotal.WithLabelValues("redis", "rejected")))

	errs := testutil.ToFloat64(rateLimitBackendErrorsTotal.WithLabelValues("redis"))
	RecordRateLimitBackendError("redis")
	assert.Equal(t, errs+1, testutil.ToFloat64(rateLimitBackendErrorsTotal.WithLabelValues("redis")))
}
