package renewal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/egyptiangio/newspaparr/lib/browser"
	"github.com/egyptiangio/newspaparr/lib/timezone"
	"github.com/egyptiangio/newspaparr/services/renewal/adapters"
	"github.com/egyptiangio/newspaparr/services/renewal/captcha"
	"github.com/egyptiangio/newspaparr/services/renewal/classify"
	"github.com/egyptiangio/newspaparr/services/renewal/proxyman"

	"go.opentelemetry.io/otel/codes"
)

type State string

const (
	StateIdle            State = "idle"
	StateSessionStarting State = "session_starting"
	StateAuthenticating  State = "authenticating"
	StateActivatingPass  State = "activating_pass"
	StateAwaitingCaptcha State = "awaiting_captcha"
	StateClassifying     State = "classifying"
	StateFinalized       State = "finalized"
	StateClosed          State = "closed"
)

const (
	DefaultAttemptTimeout     = time.Minute * 5
	DefaultMaxCaptchaAttempts = 3
)

type MachineOptions struct {
	Account    string
	Adapter    adapters.Adapter
	Session    browser.Session
	Classifier *classify.Classifier
	// Solver and Proxy may be nil when the adapter never hits a
	// challenge; hitting one without them fails the attempt.
	Solver captcha.Solver
	Proxy  *proxyman.Manager
	// Timeout is the hard wall-clock budget for one attempt, covering
	// everything between session start and classification.
	Timeout time.Duration
	// MaxCaptchaAttempts bounds challenge loops within one attempt.
	MaxCaptchaAttempts int
}

// Machine runs one renewal attempt through its states. Errors from
// the adapter or the browser never escape Run; they become Failure
// outcomes on the attempt record.
type Machine struct {
	opts  MachineOptions
	state State
}

type RunResult struct {
	Outcome   classify.Outcome
	FinalText string
	FinalURL  string
	// Screenshot is a debug artifact of the last page seen.
	Screenshot []byte
}

func NewMachine(opts MachineOptions) *Machine {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultAttemptTimeout
	}
	if opts.MaxCaptchaAttempts == 0 {
		opts.MaxCaptchaAttempts = DefaultMaxCaptchaAttempts
	}
	return &Machine{opts: opts, state: StateIdle}
}

func (m *Machine) transition(ctx context.Context, next State) {
	slog.DebugContext(ctx, "renewal state transition",
		"account", m.opts.Account, "from", m.state, "to", next)
	m.state = next
}

func (m *Machine) Run(ctx context.Context, creds adapters.Credentials) RunResult {
	ctx, span := tracer.Start(ctx, "Machine.Run")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	defer cancel()

	result := m.run(ctx, creds)

	m.transition(ctx, StateFinalized)
	if result.Outcome.Verdict == classify.Failure {
		span.SetStatus(codes.Error, result.Outcome.Reason)
		// best-effort debug artifact; Screenshot after timeout still
		// works, it reads session state
		if shot, err := m.opts.Session.Screenshot(context.WithoutCancel(ctx)); err == nil {
			result.Screenshot = shot
		}
	}

	// the session is released on every path, error or not
	if err := m.opts.Session.Close(context.WithoutCancel(ctx)); err != nil {
		slog.WarnContext(ctx, "failed to close browser session",
			"account", m.opts.Account, "err", err)
	}
	m.transition(ctx, StateClosed)
	return result
}

func (m *Machine) run(ctx context.Context, creds adapters.Credentials) RunResult {
	m.transition(ctx, StateSessionStarting)

	m.transition(ctx, StateAuthenticating)
	step, err := m.opts.Adapter.Authenticate(ctx, m.opts.Session, creds)
	if err != nil {
		return m.fail(ctx, "authentication_error", err)
	}

	// login pages can be gated by a challenge just like activation
	// pages; the attempt budget covers both
	captchaAttempts := 0
	step, err = m.drainChallenges(ctx, step, &captchaAttempts, StateAuthenticating)
	if err != nil {
		return m.challengeFailure(ctx, err)
	}

	m.transition(ctx, StateActivatingPass)
	step, err = m.opts.Adapter.ActivatePass(ctx, m.opts.Session, creds)
	if err != nil {
		return m.fail(ctx, "activation_error", err)
	}
	if _, err = m.drainChallenges(ctx, step, &captchaAttempts, StateActivatingPass); err != nil {
		return m.challengeFailure(ctx, err)
	}

	m.transition(ctx, StateClassifying)
	text, err := m.opts.Adapter.DescribeExpiration(ctx, m.opts.Session)
	if err != nil {
		return m.fail(ctx, "classification_error", err)
	}

	outcome := m.opts.Classifier.Classify(text, timezone.Now())
	return RunResult{
		Outcome:   outcome,
		FinalText: text,
		FinalURL:  m.opts.Session.CurrentURL(),
	}
}

var errChallengeLimit = errors.New("challenge limit reached")

// drainChallenges solves challenges until the adapter reports a page
// that is not one, resuming the given state after each solve. attempts
// is shared across call sites so the cap applies to the whole run.
func (m *Machine) drainChallenges(ctx context.Context, step adapters.StepResult, attempts *int, resume State) (adapters.StepResult, error) {
	for step.State == adapters.StateCaptchaChallenge {
		if *attempts >= m.opts.MaxCaptchaAttempts {
			return step, errChallengeLimit
		}
		*attempts++

		m.transition(ctx, StateAwaitingCaptcha)
		var err error
		step, err = m.solveChallenge(ctx, step)
		if err != nil {
			return step, err
		}
		m.transition(ctx, resume)
	}
	return step, nil
}

func (m *Machine) challengeFailure(ctx context.Context, err error) RunResult {
	switch {
	case errors.Is(err, errChallengeLimit):
		return m.failMessage(ctx, "captcha_blocked", errChallengeLimit.Error())
	case errors.Is(err, proxyman.ErrProxyUnavailable):
		return m.fail(ctx, "proxy_unavailable", err)
	case isSolverFailure(err):
		return m.fail(ctx, "solver_failure", err)
	default:
		return m.fail(ctx, "captcha_error", err)
	}
}

// solveChallenge acquires a relay lease for the solving exchange and
// guarantees its release on every exit path.
func (m *Machine) solveChallenge(ctx context.Context, step adapters.StepResult) (adapters.StepResult, error) {
	if m.opts.Solver == nil || m.opts.Proxy == nil {
		return adapters.StepResult{}, proxyman.ErrProxyUnavailable
	}

	lease, err := m.opts.Proxy.Acquire(ctx)
	if err != nil {
		return adapters.StepResult{}, err
	}
	defer m.opts.Proxy.Release(context.WithoutCancel(ctx), lease.ID)

	challenge := *step.Challenge
	challenge.Proxy = lease.URL()
	token, err := m.opts.Solver.Solve(ctx, challenge)
	if err != nil {
		return adapters.StepResult{}, err
	}
	return m.opts.Adapter.SubmitToken(ctx, m.opts.Session, token)
}

func (m *Machine) fail(ctx context.Context, reason string, err error) RunResult {
	// the hard wall-clock budget expiring trumps whatever error it
	// surfaced as
	if ctx.Err() != nil {
		timeoutErr := &StepTimeoutError{State: m.state, Timeout: m.opts.Timeout}
		slog.WarnContext(ctx, "renewal attempt timed out",
			"account", m.opts.Account, "state", m.state)
		return m.failMessage(ctx, "timeout", timeoutErr.Error())
	}
	slog.WarnContext(ctx, "renewal attempt failed",
		"account", m.opts.Account, "state", m.state, "reason", reason, "err", err)
	return m.failMessage(ctx, reason, err.Error())
}

func (m *Machine) failMessage(ctx context.Context, reason, message string) RunResult {
	return RunResult{
		Outcome: classify.Outcome{
			Verdict: classify.Failure,
			Reason:  reason,
			Message: message,
		},
		FinalText: m.opts.Session.CurrentText(),
		FinalURL:  m.opts.Session.CurrentURL(),
	}
}

func isSolverFailure(err error) bool {
	var failure *captcha.SolverFailure
	return errors.As(err, &failure)
}
