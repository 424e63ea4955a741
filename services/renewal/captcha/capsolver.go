package captcha

import (
	"context"
	"fmt"
	"time"

	"github.com/egyptiangio/newspaparr/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/renewal/captcha")

const defaultCapSolverURL = "https://api.capsolver.com"

type CapSolverOptions struct {
	// BaseURL overrides the service endpoint, mainly for tests.
	BaseURL string
	APIKey  string
	// PollInterval defaults to 2s.
	PollInterval time.Duration
}

// CapSolver submits challenges to a capsolver.com compatible API and
// polls for the token.
type CapSolver struct {
	http         *resty.Client
	apiKey       string
	pollInterval time.Duration
}

func NewCapSolver(opts CapSolverOptions) *CapSolver {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultCapSolverURL
	}
	interval := opts.PollInterval
	if interval == 0 {
		interval = time.Second * 2
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, "services/renewal/captcha/http")

	return &CapSolver{
		http:         client,
		apiKey:       opts.APIKey,
		pollInterval: interval,
	}
}

type capTask struct {
	Type       string `json:"type"`
	WebsiteURL string `json:"websiteURL,omitempty"`
	WebsiteKey string `json:"websiteKey,omitempty"`
	Body       string `json:"body,omitempty"`
	Proxy      string `json:"proxy,omitempty"`
}

type createTaskRequest struct {
	ClientKey string  `json:"clientKey"`
	Task      capTask `json:"task"`
}

type capSolution struct {
	GRecaptchaResponse string `json:"gRecaptchaResponse"`
	Token              string `json:"token"`
	Text               string `json:"text"`
}

type taskResponse struct {
	ErrorId          int         `json:"errorId"`
	ErrorDescription string      `json:"errorDescription"`
	TaskId           string      `json:"taskId"`
	Status           string      `json:"status"`
	Solution         capSolution `json:"solution"`
}

func taskTypeFor(challenge Challenge) (string, error) {
	switch challenge.Kind {
	case KindRecaptchaV2:
		return "ReCaptchaV2TaskProxyLess", nil
	case KindTurnstile:
		return "AntiTurnstileTaskProxyLess", nil
	case KindImage:
		return "ImageToTextTask", nil
	default:
		return "", fmt.Errorf("unknown challenge kind: %s", challenge.Kind)
	}
}

func (s *CapSolver) Solve(ctx context.Context, challenge Challenge) (string, error) {
	ctx, span := tracer.Start(ctx, "Solve")
	defer span.End()

	token, err := s.solve(ctx, challenge)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "solve failed")
		return "", err
	}
	return token, nil
}

func (s *CapSolver) solve(ctx context.Context, challenge Challenge) (string, error) {
	taskType, err := taskTypeFor(challenge)
	if err != nil {
		return "", err
	}

	var created taskResponse
	_, err = s.http.R().
		SetContext(ctx).
		SetBody(createTaskRequest{
			ClientKey: s.apiKey,
			Task: capTask{
				Type:       taskType,
				WebsiteURL: challenge.PageURL,
				WebsiteKey: challenge.SiteKey,
				Body:       challenge.ImageB64,
				Proxy:      challenge.Proxy,
			},
		}).
		SetResult(&created).
		Post("/createTask")
	if err != nil {
		return "", err
	}
	if created.ErrorId != 0 {
		return "", &SolverFailure{Kind: challenge.Kind, Detail: created.ErrorDescription}
	}

	// image tasks are answered synchronously
	if created.Status == "ready" {
		return solutionToken(created.Solution), nil
	}
	// without a task id there is nothing to poll for
	if created.TaskId == "" {
		return "", &SolverFailure{Kind: challenge.Kind, Detail: "createTask returned no task id"}
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		var result taskResponse
		_, err := s.http.R().
			SetContext(ctx).
			SetBody(map[string]string{
				"clientKey": s.apiKey,
				"taskId":    created.TaskId,
			}).
			SetResult(&result).
			Post("/getTaskResult")
		if err != nil {
			return "", err
		}
		if result.ErrorId != 0 || result.Status == "failed" {
			return "", &SolverFailure{Kind: challenge.Kind, Detail: result.ErrorDescription}
		}
		if result.Status == "ready" {
			return solutionToken(result.Solution), nil
		}
	}
}

func solutionToken(solution capSolution) string {
	if solution.GRecaptchaResponse != "" {
		return solution.GRecaptchaResponse
	}
	if solution.Token != "" {
		return solution.Token
	}
	return solution.Text
}
