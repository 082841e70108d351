package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPolicyContext() PolicyContext {
	return PolicyContext{
		TenantID:      "tenant-1",
		HostID:        "host-1",
		HostHasWallet: true,
		CheckIn:       date(2024, 3, 1),
		CheckOut:      date(2024, 3, 3),
		Today:         date(2024, 1, 1),
		HorizonDays:   180,
	}
}

func assertPolicyReason(t *testing.T, err error, want PolicyReason) {
	t.Helper()
	var policyErr PolicyError
	require.ErrorAs(t, err, &policyErr)
	assert.Equal(t, want, policyErr.Reason)
}

func TestPolicyAcceptsValidContext(t *testing.T) {
	assert.NoError(t, EvaluatePolicy(validPolicyContext()))
}

func TestPolicyUnauthenticated(t *testing.T) {
	pc := validPolicyContext()
	pc.TenantID = ""
	assertPolicyReason(t, EvaluatePolicy(pc), PolicyUnauthenticated)
}

func TestPolicySelfBookingRegardlessOfDates(t *testing.T) {
	pc := validPolicyContext()
	pc.TenantID = pc.HostID
	assertPolicyReason(t, EvaluatePolicy(pc), PolicySelfBooking)

	pc.CheckIn = date(2030, 1, 1)
	pc.CheckOut = date(2029, 1, 1)
	assertPolicyReason(t, EvaluatePolicy(pc), PolicySelfBooking)
}

func TestPolicyPayeeIneligible(t *testing.T) {
	pc := validPolicyContext()
	pc.HostHasWallet = false
	assertPolicyReason(t, EvaluatePolicy(pc), PolicyPayeeIneligible)
}

func TestPolicyCheckInHorizonBoundary(t *testing.T) {
	pc := validPolicyContext()

	// exactly 180 days out is allowed
	pc.CheckIn = date(2024, 6, 29)
	pc.CheckOut = date(2024, 6, 29)
	assert.NoError(t, EvaluatePolicy(pc))

	pc.CheckIn = date(2024, 6, 30)
	assertPolicyReason(t, EvaluatePolicy(pc), PolicyCheckInTooFar)
}

func TestPolicyCheckOutHorizon(t *testing.T) {
	pc := validPolicyContext()
	pc.CheckIn = date(2024, 6, 28)
	pc.CheckOut = date(2024, 6, 30)
	assertPolicyReason(t, EvaluatePolicy(pc), PolicyCheckOutTooFar)
}

func TestPolicyInvertedRange(t *testing.T) {
	pc := validPolicyContext()
	pc.CheckIn = date(2024, 3, 3)
	pc.CheckOut = date(2024, 3, 1)
	assertPolicyReason(t, EvaluatePolicy(pc), PolicyInvertedRange)
}

func TestPolicyHorizonIsConfigurable(t *testing.T) {
	pc := validPolicyContext()
	pc.HorizonDays = 30
	pc.CheckIn = date(2024, 2, 15)
	pc.CheckOut = date(2024, 2, 16)
	assertPolicyReason(t, EvaluatePolicy(pc), PolicyCheckInTooFar)

	pc.HorizonDays = 60
	assert.NoError(t, EvaluatePolicy(pc))
}

func TestPolicyChecksOrder(t *testing.T) {
	// several violations at once: the first in order wins
	pc := PolicyContext{
		TenantID:      "",
		HostID:        "",
		HostHasWallet: false,
		CheckIn:       date(2030, 1, 1),
		CheckOut:      date(2029, 1, 1),
		Today:         date(2024, 1, 1),
		HorizonDays:   180,
	}
	assertPolicyReason(t, EvaluatePolicy(pc), PolicyUnauthenticated)

	pc.TenantID = "u1"
	pc.HostID = "u1"
	assertPolicyReason(t, EvaluatePolicy(pc), PolicySelfBooking)

	pc.HostID = "u2"
	assertPolicyReason(t, EvaluatePolicy(pc), PolicyPayeeIneligible)

	pc.HostHasWallet = true
	assertPolicyReason(t, EvaluatePolicy(pc), PolicyCheckInTooFar)
}

func TestPolicyIgnoresTimeOfDay(t *testing.T) {
	pc := validPolicyContext()
	pc.Today = time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	pc.CheckIn = time.Date(2024, 6, 29, 1, 0, 0, 0, time.UTC)
	pc.CheckOut = pc.CheckIn
	assert.NoError(t, EvaluatePolicy(pc))
}
