package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestCapSolverPollsUntilReady(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/createTask", func(w http.ResponseWriter, r *http.Request) {
		var req createTaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "testkey", req.ClientKey)
		require.Equal(t, "ReCaptchaV2TaskProxyLess", req.Task.Type)
		writeJSON(w, taskResponse{TaskId: "task-1", Status: "processing"})
	})
	mux.HandleFunc("/getTaskResult", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 2 {
			writeJSON(w, taskResponse{Status: "processing"})
			return
		}
		writeJSON(w, taskResponse{
			Status:   "ready",
			Solution: capSolution{GRecaptchaResponse: "tok-abc"},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	solver := NewCapSolver(CapSolverOptions{
		BaseURL:      server.URL,
		APIKey:       "testkey",
		PollInterval: time.Millisecond * 5,
	})
	token, err := solver.Solve(context.Background(), Challenge{
		Kind:    KindRecaptchaV2,
		SiteKey: "sitekey",
		PageURL: "https://example.com/redeem",
	})
	require.NoError(t, err)
	require.Equal(t, "tok-abc", token)
	require.GreaterOrEqual(t, polls.Load(), int32(2))
}

func TestCapSolverReportsFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/createTask", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, taskResponse{TaskId: "task-2", Status: "processing"})
	})
	mux.HandleFunc("/getTaskResult", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, taskResponse{
			ErrorId:          1,
			ErrorDescription: "unsolvable",
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	solver := NewCapSolver(CapSolverOptions{
		BaseURL:      server.URL,
		APIKey:       "testkey",
		PollInterval: time.Millisecond * 5,
	})
	_, err := solver.Solve(context.Background(), Challenge{
		Kind:    KindTurnstile,
		SiteKey: "sitekey",
		PageURL: "https://example.com/redeem",
	})
	var failure *SolverFailure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, KindTurnstile, failure.Kind)
}

func TestCapSolverUnknownKind(t *testing.T) {
	solver := NewCapSolver(CapSolverOptions{BaseURL: "http://127.0.0.1:0", APIKey: "k"})
	_, err := solver.Solve(context.Background(), Challenge{Kind: "dance"})
	require.Error(t, err)
}

// a createTask response with no task id must fail the solve instead
// of polling for a task that does not exist
func TestCapSolverRejectsMissingTaskID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/createTask", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, taskResponse{Status: "processing"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	solver := NewCapSolver(CapSolverOptions{
		BaseURL:      server.URL,
		APIKey:       "testkey",
		PollInterval: time.Millisecond * 5,
	})
	_, err := solver.Solve(context.Background(), Challenge{Kind: KindRecaptchaV2})
	var failure *SolverFailure
	require.ErrorAs(t, err, &failure)
}

func TestCapSolverRespectsContext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/createTask", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, taskResponse{TaskId: "task-3", Status: "processing"})
	})
	mux.HandleFunc("/getTaskResult", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, taskResponse{Status: "processing"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	solver := NewCapSolver(CapSolverOptions{
		BaseURL:      server.URL,
		APIKey:       "testkey",
		PollInterval: time.Millisecond * 5,
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*30)
	defer cancel()
	_, err := solver.Solve(ctx, Challenge{Kind: KindRecaptchaV2})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
