package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFailureBeatsSuccess(t *testing.T) {
	c := New(Options{})
	// both failure and success wording on one page; the failure tier
	// is checked first
	out := c.Classify("We could not activate your pass. If your pass is now active, ignore this.", testNow)
	require.Equal(t, Failure, out.Verdict)
	require.Equal(t, "activation_failed", out.Reason)
}

func TestSuccess(t *testing.T) {
	c := New(Options{})
	out := c.Classify("Congratulations! Your pass is now active through the library program.", testNow)
	require.Equal(t, Success, out.Verdict)
	require.Equal(t, "pass_activated", out.Reason)
}

func TestAlreadySubscribedIsWarning(t *testing.T) {
	c := New(Options{})
	out := c.Classify("You already have an active subscription on this account.", testNow)
	require.Equal(t, SuccessWithWarning, out.Verdict)
	require.Equal(t, "already_subscribed", out.Reason)
}

func TestSubscriptionActivationWording(t *testing.T) {
	c := New(Options{})

	out := c.Classify("Your subscription is now active", testNow)
	require.Equal(t, Success, out.Verdict)
	require.Nil(t, out.Expiration)

	out = c.Classify("This account already has a digital subscription", testNow)
	require.Equal(t, SuccessWithWarning, out.Verdict)
	require.Equal(t, "already_subscribed", out.Reason)

	out = c.Classify("Invalid library card or PIN", testNow)
	require.Equal(t, Failure, out.Verdict)
	require.Equal(t, "invalid_credentials", out.Reason)
}

func TestIndeterminate(t *testing.T) {
	c := New(Options{})
	out := c.Classify("Welcome to our website. Please enjoy the weather.", testNow)
	require.Equal(t, Indeterminate, out.Verdict)
	require.Equal(t, "no_rule_matched", out.Reason)
	require.Nil(t, out.Expiration)
}

func TestExtraRulesCheckedFirst(t *testing.T) {
	c := New(Options{
		ExtraRules: []Rule{
			{Success, "gift_redeemed", []string{"your gift is ready"}},
		},
	})
	out := c.Classify("Your gift is ready! Something went wrong with our banner ads though.", testNow)
	require.Equal(t, Success, out.Verdict)
	require.Equal(t, "gift_redeemed", out.Reason)
}

func TestMatchIsCaseInsensitive(t *testing.T) {
	c := New(Options{})
	out := c.Classify("SUCCESSFULLY ACTIVATED", testNow)
	require.Equal(t, Success, out.Verdict)
}

func TestClassifyCarriesExpiration(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	c := New(Options{Location: loc})

	out := c.Classify("Your pass is now active and expires on September 15, 2025 at 11:59 PM.", testNow)
	require.Equal(t, Success, out.Verdict)
	require.NotNil(t, out.Expiration)
	// 11:59 PM EDT is 03:59 UTC the next day
	require.Equal(t, time.Date(2025, 9, 16, 3, 59, 0, 0, time.UTC), *out.Expiration)
}

func TestNoExpirationExtractedOnFailure(t *testing.T) {
	c := New(Options{})
	out := c.Classify("Could not activate your pass. Offer ends September 15, 2025.", testNow)
	require.Equal(t, Failure, out.Verdict)
	require.Nil(t, out.Expiration, "failure pages carry no pass expiration")
}

func TestExtractExpirationStripsOrdinals(t *testing.T) {
	exp, ok := ExtractExpiration("expires August 7th, 2025", time.UTC, testNow)
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 8, 7, 0, 0, 0, 0, time.UTC), exp)
}

func TestExtractExpirationPrefersDatetimeOverDate(t *testing.T) {
	exp, ok := ExtractExpiration(
		"valid until 09/15/2025 11:59 PM, issued 06/01/2025",
		time.UTC, testNow,
	)
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 9, 15, 23, 59, 0, 0, time.UTC), exp)
}

func TestExtractExpirationRollsPastDatesForward(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	exp, ok := ExtractExpiration("expires 10/01/2025", time.UTC, now)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), exp)
}

func TestExtractExpirationNone(t *testing.T) {
	_, ok := ExtractExpiration("no dates here", time.UTC, testNow)
	require.False(t, ok)
}
