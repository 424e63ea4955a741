// Package captcha solves the challenges that interrupt pass
// activation flows. The renewal core only sees the Solver interface;
// the concrete client talks to a hosted solving service.
package captcha

import (
	"context"
	"fmt"
)

const (
	KindRecaptchaV2 = "recaptcha_v2"
	KindTurnstile   = "turnstile"
	KindImage       = "image"
)

// Challenge describes a challenge found on a page.
type Challenge struct {
	Kind    string
	SiteKey string
	PageURL string
	// ImageB64 holds the challenge image for KindImage, base64 encoded.
	ImageB64 string
	// Proxy is the relay endpoint the solving service should reach the
	// page through, as a proxy url. Set by the caller right before
	// solving; it embeds lease credentials and must never be logged.
	Proxy string
}

// SolverFailure reports a challenge the solving service could not
// answer. It is terminal for the attempt that hit it.
type SolverFailure struct {
	Kind   string
	Detail string
}

func (e *SolverFailure) Error() string {
	return fmt.Sprintf("captcha solver failed on %s challenge: %s", e.Kind, e.Detail)
}

type Solver interface {
	// Solve returns the challenge token to inject into the page.
	Solve(ctx context.Context, challenge Challenge) (string, error)
}
