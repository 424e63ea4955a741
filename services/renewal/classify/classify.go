// Package classify turns the final page of a renewal run into a
// verdict. Rules are checked in order and the first match wins, so
// failure wording is always checked before success wording. A page
// that says "could not activate your complimentary pass" matches a
// failure rule even though "pass" and "activate" appear in it.
package classify

import (
	"strings"
	"time"
)

type Verdict string

const (
	// Indeterminate means no rule matched. The run is not counted as a
	// success and the fallback schedule applies.
	Indeterminate Verdict = "indeterminate"
	Success       Verdict = "success"
	// SuccessWithWarning covers pages that report an active
	// subscription without confirming that this run activated it.
	SuccessWithWarning Verdict = "success_with_warning"
	Failure            Verdict = "failure"
)

type Outcome struct {
	Verdict Verdict
	// Reason is a stable snake_case code for the matched rule.
	Reason string
	// Message is the fragment of page text that matched.
	Message string
	// Expiration is set when the page carried a parseable expiration
	// date, already converted to UTC.
	Expiration *time.Time
}

type Rule struct {
	Verdict Verdict
	Reason  string
	// Phrases match case-insensitively as substrings of the collapsed
	// page text. Any phrase matching triggers the rule.
	Phrases []string
}

// defaultRules is ordered by tier: failures, then warnings, then
// successes. Within a tier the more specific wording comes first.
var defaultRules = []Rule{
	{Failure, "invalid_credentials", []string{
		"incorrect password",
		"invalid password",
		"password you entered",
		"invalid card number",
		"card number was not found",
		"we don't recognize",
		"invalid library card",
		"could not verify your library card",
	}},
	{Failure, "account_locked", []string{
		"account has been locked",
		"account is locked",
		"too many failed attempts",
	}},
	{Failure, "rate_limited", []string{
		"too many requests",
		"too many attempts",
		"try again later",
	}},
	{Failure, "payment_required", []string{
		"payment method",
		"card was declined",
		"update your billing",
	}},
	{Failure, "activation_failed", []string{
		"could not activate",
		"unable to activate",
		"unable to redeem",
		"something went wrong",
		"an error occurred",
	}},
	{Failure, "pass_exhausted", []string{
		"no passes are available",
		"all passes have been claimed",
		"has already been redeemed",
	}},
	{SuccessWithWarning, "already_subscribed", []string{
		"already have a subscription",
		"already has a digital subscription",
		"already have an active subscription",
		"already a subscriber",
		"you are currently subscribed",
		"subscription is already active",
	}},
	{Success, "pass_activated", []string{
		"successfully activated",
		"successfully redeemed",
		"pass is now active",
		"subscription is now active",
		"access has been renewed",
		"your pass is active",
		"enjoy your complimentary access",
		"thank you for activating",
	}},
}

type Classifier struct {
	rules []Rule
	loc   *time.Location
}

type Options struct {
	// ExtraRules are checked before the built-in table, letting an
	// adapter teach the classifier wording specific to its site.
	ExtraRules []Rule
	// Location interprets expiration dates that carry no zone. Nil
	// means UTC.
	Location *time.Location
}

func New(opts Options) *Classifier {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Classifier{
		rules: append(append([]Rule{}, opts.ExtraRules...), defaultRules...),
		loc:   loc,
	}
}

// Classify matches the collapsed page text against the rule table.
// now anchors year roll-forward for extracted expiration dates.
func (c *Classifier) Classify(text string, now time.Time) Outcome {
	lowered := strings.ToLower(text)

	outcome := Outcome{Verdict: Indeterminate, Reason: "no_rule_matched"}
match:
	for _, rule := range c.rules {
		for _, phrase := range rule.Phrases {
			if strings.Contains(lowered, strings.ToLower(phrase)) {
				outcome = Outcome{
					Verdict: rule.Verdict,
					Reason:  rule.Reason,
					Message: phrase,
				}
				break match
			}
		}
	}

	// a date on a failure page describes nothing the pass grants, so
	// extraction only runs once the page reads as an active pass
	if outcome.Verdict == Success || outcome.Verdict == SuccessWithWarning {
		if exp, ok := ExtractExpiration(text, c.loc, now); ok {
			outcome.Expiration = &exp
		}
	}
	return outcome
}
