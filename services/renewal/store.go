package renewal

import (
	"context"
	"database/sql"
	"time"

	"github.com/egyptiangio/newspaparr/lib/timezone"
	"github.com/egyptiangio/newspaparr/services/renewal/classify"
	"github.com/egyptiangio/newspaparr/services/renewal/db"

	"github.com/google/uuid"
)

// Store persists accounts and attempt history. Times are stored as
// unix seconds, always UTC.
type Store struct {
	database *sql.DB
	qry      *db.Queries
}

func NewStore(database *sql.DB) *Store {
	return &Store{
		database: database,
		qry:      db.New(database),
	}
}

type NewAccount struct {
	Name              string
	LibraryAdapter    string
	NewspaperAdapter  string
	LibraryURL        string
	LibraryUsername   string
	LibraryPassword   string
	NewspaperUsername string
	NewspaperPassword string
}

// CreateAccount registers an account due immediately, so the first
// renewal happens on the next scheduler scan.
func (s *Store) CreateAccount(ctx context.Context, account NewAccount) (int64, error) {
	now := timezone.Now()
	return s.qry.CreateAccount(ctx, db.CreateAccountParams{
		Name:              account.Name,
		LibraryAdapter:    account.LibraryAdapter,
		NewspaperAdapter:  account.NewspaperAdapter,
		LibraryUrl:        account.LibraryURL,
		LibraryUsername:   account.LibraryUsername,
		LibraryPassword:   account.LibraryPassword,
		NewspaperUsername: account.NewspaperUsername,
		NewspaperPassword: account.NewspaperPassword,
		NextRenewalAt:     now.Unix(),
		SchedulePolicy:    string(PolicyFallback),
		CreatedAt:         now.Unix(),
	})
}

func (s *Store) LoadAccount(ctx context.Context, id int64) (db.Account, error) {
	return s.qry.GetAccount(ctx, id)
}

func (s *Store) ListAccounts(ctx context.Context) ([]db.Account, error) {
	return s.qry.ListAccounts(ctx)
}

func (s *Store) DueAccounts(ctx context.Context, now time.Time) ([]db.Account, error) {
	return s.qry.ListDueAccounts(ctx, now.UTC().Unix())
}

func (s *Store) SetAccountEnabled(ctx context.Context, id int64, enabled bool) error {
	var flag int64
	if enabled {
		flag = 1
	}
	return s.qry.SetAccountEnabled(ctx, db.SetAccountEnabledParams{
		Enabled: flag,
		ID:      id,
	})
}

func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	return s.qry.DeleteAccount(ctx, id)
}

// BeginAttempt opens the attempt record before any session starts, so
// even a crash mid-attempt leaves a trace.
func (s *Store) BeginAttempt(ctx context.Context, accountID int64) (string, error) {
	id := uuid.NewString()
	err := s.qry.CreateRenewalAttempt(ctx, db.CreateRenewalAttemptParams{
		ID:        id,
		AccountID: accountID,
		StartedAt: timezone.Now().Unix(),
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

type FinishAttempt struct {
	AttemptID  string
	AccountID  int64
	Outcome    classify.Outcome
	Entry      ScheduleEntry
	FinishedAt time.Time
}

// FinishAttempt seals the attempt record and applies the new schedule
// to the account in one transaction, so readers never observe an
// attempt verdict without its schedule or vice versa. An attempt that
// extracted no expiration keeps the account's last-known one.
func (s *Store) FinishAttempt(ctx context.Context, arg FinishAttempt) error {
	tx, err := s.database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	var expires sql.NullInt64
	if arg.Outcome.Expiration != nil {
		expires = sql.NullInt64{Int64: arg.Outcome.Expiration.UTC().Unix(), Valid: true}
	}

	err = txqry.FinishRenewalAttempt(ctx, db.FinishRenewalAttemptParams{
		FinishedAt:     sql.NullInt64{Int64: arg.FinishedAt.UTC().Unix(), Valid: true},
		Verdict:        sql.NullString{String: string(arg.Outcome.Verdict), Valid: true},
		Reason:         sql.NullString{String: arg.Outcome.Reason, Valid: true},
		Message:        sql.NullString{String: arg.Outcome.Message, Valid: true},
		ExpiresAt:      expires,
		NextRenewalAt:  sql.NullInt64{Int64: arg.Entry.RunAt.Unix(), Valid: true},
		SchedulePolicy: sql.NullString{String: string(arg.Entry.Policy), Valid: true},
		ID:             arg.AttemptID,
	})
	if err != nil {
		return err
	}

	err = txqry.UpdateAccountSchedule(ctx, db.UpdateAccountScheduleParams{
		ExpiresAt:      expires,
		NextRenewalAt:  arg.Entry.RunAt.Unix(),
		SchedulePolicy: string(arg.Entry.Policy),
		ID:             arg.AccountID,
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) History(ctx context.Context, accountID int64, limit int64) ([]db.RenewalAttempt, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.qry.ListRenewalAttempts(ctx, db.ListRenewalAttemptsParams{
		AccountID: accountID,
		Limit:     limit,
	})
}

// PruneAttempts drops attempt rows older than the retention window.
func (s *Store) PruneAttempts(ctx context.Context, before time.Time) error {
	return s.qry.DeleteRenewalAttemptsBefore(ctx, before.UTC().Unix())
}
