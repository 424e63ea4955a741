package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/egyptiangio/newspaparr/lib/timezone"
	"github.com/egyptiangio/newspaparr/services/renewal"
	"github.com/egyptiangio/newspaparr/services/renewal/adapters"
	"github.com/egyptiangio/newspaparr/services/renewal/db"
)

type api struct {
	service *renewal.Service
}

func newApi(service *renewal.Service) *api {
	return &api{service: service}
}

func (a *api) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/accounts", a.listAccounts)
	mux.HandleFunc("POST /api/accounts", a.createAccount)
	mux.HandleFunc("POST /api/accounts/{id}/renew", a.renew)
	mux.HandleFunc("GET /api/accounts/{id}/history", a.history)
}

// accountJson deliberately omits every credential column.
type accountJson struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	LibraryAdapter    string `json:"library_adapter"`
	NewspaperAdapter  string `json:"newspaper_adapter"`
	Enabled           bool   `json:"enabled"`
	ExpiresAt         string `json:"expires_at,omitempty"`
	NextRenewalAt     string `json:"next_renewal_at"`
	NextRenewalLocal  string `json:"next_renewal_local"`
	SchedulePolicy    string `json:"schedule_policy"`
	EffectiveInterval string `json:"effective_interval"`
}

func (a *api) accountToJson(account db.Account) accountJson {
	out := accountJson{
		ID:               account.ID,
		Name:             account.Name,
		LibraryAdapter:   account.LibraryAdapter,
		NewspaperAdapter: account.NewspaperAdapter,
		Enabled:          account.Enabled != 0,
		NextRenewalAt:    time.Unix(account.NextRenewalAt, 0).UTC().Format(time.RFC3339),
		NextRenewalLocal: timezone.Format(time.Unix(account.NextRenewalAt, 0).UTC()),
		SchedulePolicy:   account.SchedulePolicy,
		EffectiveInterval: a.service.Scheduler().EffectiveInterval(
			renewal.SchedulePolicy(account.SchedulePolicy)),
	}
	if account.ExpiresAt.Valid {
		out.ExpiresAt = time.Unix(account.ExpiresAt.Int64, 0).UTC().Format(time.RFC3339)
	}
	return out
}

type attemptJson struct {
	ID             string `json:"id"`
	StartedAt      string `json:"started_at"`
	FinishedAt     string `json:"finished_at,omitempty"`
	Verdict        string `json:"verdict,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Message        string `json:"message,omitempty"`
	ExpiresAt      string `json:"expires_at,omitempty"`
	NextRenewalAt  string `json:"next_renewal_at,omitempty"`
	SchedulePolicy string `json:"schedule_policy,omitempty"`
}

func attemptToJson(attempt db.RenewalAttempt) attemptJson {
	out := attemptJson{
		ID:             attempt.ID,
		StartedAt:      time.Unix(attempt.StartedAt, 0).UTC().Format(time.RFC3339),
		Verdict:        attempt.Verdict.String,
		Reason:         attempt.Reason.String,
		Message:        attempt.Message.String,
		SchedulePolicy: attempt.SchedulePolicy.String,
	}
	if attempt.FinishedAt.Valid {
		out.FinishedAt = time.Unix(attempt.FinishedAt.Int64, 0).UTC().Format(time.RFC3339)
	}
	if attempt.ExpiresAt.Valid {
		out.ExpiresAt = time.Unix(attempt.ExpiresAt.Int64, 0).UTC().Format(time.RFC3339)
	}
	if attempt.NextRenewalAt.Valid {
		out.NextRenewalAt = time.Unix(attempt.NextRenewalAt.Int64, 0).UTC().Format(time.RFC3339)
	}
	return out
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var concurrent *renewal.ConcurrentRenewalError
	var unsupported *adapters.UnsupportedAdapterError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		status = http.StatusNotFound
	case errors.As(err, &concurrent):
		status = http.StatusConflict
	case errors.As(err, &unsupported):
		status = http.StatusBadRequest
	}
	writeJson(w, status, map[string]string{"error": err.Error()})
}

func accountId(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (a *api) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.service.Store().ListAccounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]accountJson, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, a.accountToJson(account))
	}
	writeJson(w, http.StatusOK, out)
}

type createAccountRequest struct {
	Name              string `json:"name"`
	LibraryAdapter    string `json:"library_adapter"`
	NewspaperAdapter  string `json:"newspaper_adapter"`
	LibraryURL        string `json:"library_url"`
	LibraryUsername   string `json:"library_username"`
	LibraryPassword   string `json:"library_password"`
	NewspaperUsername string `json:"newspaper_username"`
	NewspaperPassword string `json:"newspaper_password"`
}

func (a *api) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// reject unknown adapter pairs before the row exists
	if _, err := adapters.Lookup(req.LibraryAdapter, req.NewspaperAdapter); err != nil {
		writeError(w, err)
		return
	}

	id, err := a.service.Store().CreateAccount(r.Context(), renewal.NewAccount{
		Name:              req.Name,
		LibraryAdapter:    req.LibraryAdapter,
		NewspaperAdapter:  req.NewspaperAdapter,
		LibraryURL:        req.LibraryURL,
		LibraryUsername:   req.LibraryUsername,
		LibraryPassword:   req.LibraryPassword,
		NewspaperUsername: req.NewspaperUsername,
		NewspaperPassword: req.NewspaperPassword,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusCreated, map[string]int64{"id": id})
}

func (a *api) renew(w http.ResponseWriter, r *http.Request) {
	id, err := accountId(r)
	if err != nil {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": "invalid account id"})
		return
	}
	if err := a.service.Trigger(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (a *api) history(w http.ResponseWriter, r *http.Request) {
	id, err := accountId(r)
	if err != nil {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": "invalid account id"})
		return
	}
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	attempts, err := a.service.Store().History(r.Context(), id, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]attemptJson, 0, len(attempts))
	for _, attempt := range attempts {
		out = append(out, attemptToJson(attempt))
	}
	writeJson(w, http.StatusOK, out)
}
