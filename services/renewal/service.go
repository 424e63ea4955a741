// Package renewal orchestrates newspaper pass renewals: a scheduler
// decides when each account is due, a per-attempt state machine
// drives the site through an adapter, a classifier turns the final
// page into a verdict, and the verdict feeds the next schedule.
package renewal

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/egyptiangio/newspaparr/lib/browser"
	"github.com/egyptiangio/newspaparr/lib/timezone"
	"github.com/egyptiangio/newspaparr/services/renewal/adapters"
	"github.com/egyptiangio/newspaparr/services/renewal/captcha"
	"github.com/egyptiangio/newspaparr/services/renewal/classify"
	"github.com/egyptiangio/newspaparr/services/renewal/db"
	"github.com/egyptiangio/newspaparr/services/renewal/proxyman"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/semaphore"
)

var tracer = otel.Tracer("services/renewal")

type ServiceOptions struct {
	Store     *Store
	Scheduler *Scheduler
	// Solver and Proxy may be nil; captcha steps then fail cleanly.
	Solver   captcha.Solver
	Proxy    *proxyman.Manager
	Notifier *Notifier
	// Location interprets zone-less expiration dates on pages. Nil
	// means UTC.
	Location *time.Location
	// MaxConcurrent bounds simultaneous attempts across accounts.
	// Browser sessions are heavy. Defaults to 2.
	MaxConcurrent  int64
	AttemptTimeout time.Duration
	// NewSession is swapped in tests.
	NewSession func() (browser.Session, error)
}

type Service struct {
	store      *Store
	scheduler  *Scheduler
	classifier *classify.Classifier
	solver     captcha.Solver
	proxy      *proxyman.Manager
	notifier   *Notifier
	timeout    time.Duration
	sem        *semaphore.Weighted
	newSession func() (browser.Session, error)

	mu       sync.Mutex
	inflight map[int64]bool
}

func NewService(opts ServiceOptions) *Service {
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	newSession := opts.NewSession
	if newSession == nil {
		newSession = func() (browser.Session, error) {
			return browser.NewWebSession(browser.WebSessionOptions{})
		}
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = NewScheduler(DefaultFallbackInterval)
	}

	return &Service{
		store:      opts.Store,
		scheduler:  scheduler,
		classifier: classify.New(classify.Options{Location: opts.Location}),
		solver:     opts.Solver,
		proxy:      opts.Proxy,
		notifier:   opts.Notifier,
		timeout:    opts.AttemptTimeout,
		sem:        semaphore.NewWeighted(maxConcurrent),
		newSession: newSession,
		inflight:   map[int64]bool{},
	}
}

func (s *Service) Store() *Store         { return s.store }
func (s *Service) Scheduler() *Scheduler { return s.scheduler }

// reserve enforces at most one in-flight attempt per account.
// Duplicate triggers are rejected, never queued.
func (s *Service) reserve(accountID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[accountID] {
		return &ConcurrentRenewalError{AccountID: accountID}
	}
	s.inflight[accountID] = true
	return nil
}

func (s *Service) release(accountID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, accountID)
}

// RunOnce executes one renewal attempt for the account and blocks
// until it finishes. It fails fast, before any session opens, on an
// unknown adapter pair or a concurrent attempt.
func (s *Service) RunOnce(ctx context.Context, accountID int64) (string, error) {
	ctx, span := tracer.Start(ctx, "RunOnce")
	defer span.End()

	account, err := s.store.LoadAccount(ctx, accountID)
	if err != nil {
		return "", err
	}
	adapter, err := adapters.Lookup(account.LibraryAdapter, account.NewspaperAdapter)
	if err != nil {
		return "", err
	}
	if err := s.reserve(accountID); err != nil {
		return "", err
	}
	defer s.release(accountID)

	return s.execute(ctx, account, adapter)
}

// Trigger validates a renew-now request and runs the attempt in the
// background. The validation errors are the caller's: unknown
// adapter pair or an attempt already in flight.
func (s *Service) Trigger(ctx context.Context, accountID int64) error {
	account, err := s.store.LoadAccount(ctx, accountID)
	if err != nil {
		return err
	}
	adapter, err := adapters.Lookup(account.LibraryAdapter, account.NewspaperAdapter)
	if err != nil {
		return err
	}
	if err := s.reserve(accountID); err != nil {
		return err
	}

	go func() {
		defer s.release(accountID)
		ctx := context.WithoutCancel(ctx)
		if _, err := s.execute(ctx, account, adapter); err != nil {
			slog.ErrorContext(ctx, "triggered renewal failed to persist",
				"account", account.Name, "err", err)
		}
	}()
	return nil
}

// execute assumes the per-account reservation is already held.
func (s *Service) execute(ctx context.Context, account db.Account, adapter adapters.Adapter) (string, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer s.sem.Release(1)

	attemptID, err := s.store.BeginAttempt(ctx, account.ID)
	if err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "starting renewal attempt",
		"account", account.Name, "attempt", attemptID,
		"adapter", adapter.Key().String())

	result := s.runMachine(ctx, account, adapter)

	now := timezone.Now()
	entry := s.scheduler.Plan(result.Outcome, now)
	err = s.store.FinishAttempt(ctx, FinishAttempt{
		AttemptID:  attemptID,
		AccountID:  account.ID,
		Outcome:    result.Outcome,
		Entry:      entry,
		FinishedAt: now,
	})
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "renewal attempt finished",
		"account", account.Name, "attempt", attemptID,
		"verdict", result.Outcome.Verdict, "reason", result.Outcome.Reason,
		"next_run", entry.RunAt, "policy", entry.Policy)

	if result.Outcome.Verdict == classify.Failure {
		s.notifier.NotifyFailure(ctx, account, result.Outcome)
	}
	return attemptID, nil
}

func (s *Service) runMachine(ctx context.Context, account db.Account, adapter adapters.Adapter) RunResult {
	session, err := s.newSession()
	if err != nil {
		return RunResult{Outcome: classify.Outcome{
			Verdict: classify.Failure,
			Reason:  "session_error",
			Message: err.Error(),
		}}
	}

	machine := NewMachine(MachineOptions{
		Account:    account.Name,
		Adapter:    adapter,
		Session:    session,
		Classifier: s.classifier,
		Solver:     s.solver,
		Proxy:      s.proxy,
		Timeout:    s.timeout,
	})
	return machine.Run(ctx, adapters.Credentials{
		LibraryURL:        account.LibraryUrl,
		LibraryUsername:   account.LibraryUsername,
		LibraryPassword:   account.LibraryPassword,
		NewspaperUsername: account.NewspaperUsername,
		NewspaperPassword: account.NewspaperPassword,
	})
}

// StartDaemons boots the due-scan loop and attempt retention pruning.
// Both stop when ctx is cancelled.
func (s *Service) StartDaemons(ctx context.Context, retention time.Duration) error {
	c := cron.New()

	_, err := c.AddFunc("@every 1m", func() {
		s.ScanDue(ctx)
	})
	if err != nil {
		return err
	}

	if retention > 0 {
		_, err = c.AddFunc("@daily", func() {
			err := s.store.PruneAttempts(ctx, timezone.Now().Add(-retention))
			if err != nil {
				slog.ErrorContext(ctx, "failed to prune attempt history", "err", err)
			}
		})
		if err != nil {
			return err
		}
	}

	c.Start()
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return nil
}

// ScanDue kicks off an attempt for every enabled account whose next
// run is in the past. Accounts already in flight are skipped.
func (s *Service) ScanDue(ctx context.Context) {
	due, err := s.store.DueAccounts(ctx, timezone.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to scan due accounts", "err", err)
		return
	}
	for _, account := range due {
		account := account
		go func() {
			_, err := s.RunOnce(ctx, account.ID)
			var concurrent *ConcurrentRenewalError
			if errors.As(err, &concurrent) {
				// still running from a previous scan, it will be
				// rescheduled when it finishes
				slog.DebugContext(ctx, "skipping due account, attempt in flight",
					"account", account.Name)
				return
			}
			if err != nil {
				slog.ErrorContext(ctx, "scheduled renewal failed to run",
					"account", account.Name, "err", err)
			}
		}()
	}
}
