// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package metrics exposes prometheus counters for the reset flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResetsIssued counts forgot-password requests by outcome
	// (success, invalid_email, account_not_found, provider_error,
	// store_error, delivery_error).
	ResetsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordzy_resets_issued_total",
		Help: "Password reset issue attempts by outcome.",
	}, []string{"result"})

	// TokensRedeemed counts token redemption attempts by outcome
	// (success, not_found, expired, store_error).
	TokensRedeemed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordzy_tokens_redeemed_total",
		Help: "Reset token redemption attempts by outcome.",
	}, []string{"result"})

	// RecordsSwept counts reset records removed by the periodic sweep.
	RecordsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordzy_reset_records_swept_total",
		Help: "Expired reset records removed by the background sweep.",
	})
)
