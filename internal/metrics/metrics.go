package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "milagre",
		Subsystem: "gate",
		Name:      "decisions_total",
		Help:      "Request gate outcomes by decision (admitted, rejected, skipped).",
	}, []string{"decision"})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "milagre",
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Login attempts by result (success, invalid, forbidden, error).",
	}, []string{"result"})

	TokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "milagre",
		Subsystem: "auth",
		Name:      "tokens_issued_total",
		Help:      "Session tokens issued, including renewals.",
	})

	TokensRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "milagre",
		Subsystem: "auth",
		Name:      "tokens_revoked_total",
		Help:      "Session tokens explicitly revoked by logout.",
	})
)
