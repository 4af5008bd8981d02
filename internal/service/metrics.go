package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sign-in outcomes.
const (
	SignInCreated   = "created"
	SignInLinked    = "linked"
	SignInRefreshed = "refreshed"
	SignInFailed    = "failed"
)

// Quota outcomes.
const (
	QuotaAllowed = "allowed"
	QuotaDenied  = "denied"
	QuotaError   = "error"
)

var (
	signInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webtools_signins_total",
			Help: "OAuth sign-ins resolved, by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	ownerMismatchTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webtools_identity_owner_mismatch_total",
			Help: "Sign-ins whose provider linkage belongs to a different account than the email match",
		},
	)

	quotaDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webtools_quota_decisions_total",
			Help: "Daily quota consume attempts, by outcome",
		},
		[]string{"outcome"},
	)

	calendarFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webtools_calendar_fetches_total",
			Help: "iCalendar feed loads, by source (cache or remote) and result",
		},
		[]string{"source", "result"},
	)
)
