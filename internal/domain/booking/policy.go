package booking

import (
	"fmt"
	"time"

	"stayhub/internal/domain/shared/dateindex"
)

// PolicyReason identifies the business rule a candidate booking failed.
type PolicyReason string

const (
	PolicyUnauthenticated PolicyReason = "unauthenticated"
	PolicySelfBooking     PolicyReason = "self-booking"
	PolicyPayeeIneligible PolicyReason = "payee-ineligible"
	PolicyCheckInTooFar   PolicyReason = "checkin-too-far"
	PolicyCheckOutTooFar  PolicyReason = "checkout-too-far"
	PolicyInvertedRange   PolicyReason = "inverted-range"
)

type PolicyError struct {
	Reason PolicyReason
}

func (e PolicyError) Error() string {
	return fmt.Sprintf("booking: policy rejected (%s)", e.Reason)
}

// PolicyContext carries everything EvaluatePolicy needs, so the check stays
// pure and deterministic across horizon values.
type PolicyContext struct {
	TenantID      string
	HostID        string
	HostHasWallet bool
	CheckIn       time.Time
	CheckOut      time.Time
	Today         time.Time
	HorizonDays   int
}

// EvaluatePolicy runs the business-rule gate for a candidate booking. Checks
// run in a fixed order and short-circuit on the first failure, so every
// rejection names exactly one rule. This gate is authoritative: it re-runs
// server-side regardless of what a client UI already enforced.
func EvaluatePolicy(pc PolicyContext) error {
	if pc.TenantID == "" {
		return PolicyError{Reason: PolicyUnauthenticated}
	}
	if pc.TenantID == pc.HostID {
		return PolicyError{Reason: PolicySelfBooking}
	}
	if !pc.HostHasWallet {
		return PolicyError{Reason: PolicyPayeeIneligible}
	}
	horizon := dateindex.DayOf(pc.Today) + dateindex.Day(pc.HorizonDays)
	if dateindex.DayOf(pc.CheckIn) > horizon {
		return PolicyError{Reason: PolicyCheckInTooFar}
	}
	if dateindex.DayOf(pc.CheckOut) > horizon {
		return PolicyError{Reason: PolicyCheckOutTooFar}
	}
	if dateindex.DayOf(pc.CheckOut) < dateindex.DayOf(pc.CheckIn) {
		return PolicyError{Reason: PolicyInvertedRange}
	}
	return nil
}
