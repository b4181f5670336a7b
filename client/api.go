package client

import (
	"context"
	"fieldfuze-dispatch/models"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DispatchAPI is the server surface the store talks to.
type DispatchAPI interface {
	FetchBoard(ctx context.Context, q models.DispatchQuery) (*models.DispatchResponse, error)
	UpdateJob(ctx context.Context, req *models.JobUpdateRequest) (*models.DispatchJob, error)
	MarkDispatched(ctx context.Context, date string) (*models.DispatchLogEntry, error)
}

// StatusError is a non-2xx response from the dispatch API.
type StatusError struct {
	Code    int
	Type    string
	Message string
	Details string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("dispatch api: %d %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// APIClient calls the dispatch endpoints over HTTP.
type APIClient struct {
	http *resty.Client
}

// NewAPIClient creates a client for baseURL (including the API base path)
// that authenticates with a bearer token.
func NewAPIClient(baseURL, token string) *APIClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &APIClient{http: client}
}

// boardParams renders q as GET /dispatch query parameters. Empty filters are
// omitted so the server applies no restriction for them.
func boardParams(q models.DispatchQuery) map[string]string {
	params := make(map[string]string)
	if q.StartDate != "" {
		params["startDate"] = q.StartDate
	}
	if q.EndDate != "" {
		params["endDate"] = q.EndDate
	}
	if len(q.TechnicianIDs) > 0 {
		params["technicianIds"] = strings.Join(q.TechnicianIDs, ",")
	}
	if len(q.CrewIDs) > 0 {
		params["crewIds"] = strings.Join(q.CrewIDs, ",")
	}
	if len(q.Statuses) > 0 {
		statuses := make([]string, 0, len(q.Statuses))
		for _, s := range q.Statuses {
			statuses = append(statuses, string(s))
		}
		params["statuses"] = strings.Join(statuses, ",")
	}
	if q.Search != "" {
		params["q"] = q.Search
	}
	return params
}

func (c *APIClient) FetchBoard(ctx context.Context, q models.DispatchQuery) (*models.DispatchResponse, error) {
	var board models.DispatchResponse
	var failure models.APIResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(boardParams(q)).
		SetResult(&board).
		SetError(&failure).
		Get("/dispatch")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dispatch board: %w", err)
	}
	if resp.IsError() {
		return nil, statusError(resp, &failure)
	}
	return &board, nil
}

func (c *APIClient) UpdateJob(ctx context.Context, req *models.JobUpdateRequest) (*models.DispatchJob, error) {
	var result models.JobUpdateResult
	var failure models.APIResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&failure).
		Patch("/dispatch")
	if err != nil {
		return nil, fmt.Errorf("failed to update job %s: %w", req.JobID, err)
	}
	if resp.IsError() {
		return nil, statusError(resp, &failure)
	}
	return &result.Data, nil
}

func (c *APIClient) MarkDispatched(ctx context.Context, date string) (*models.DispatchLogEntry, error) {
	var result struct {
		Data models.DispatchLogEntry `json:"data"`
	}
	var failure models.APIResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(models.MarkDispatchedRequest{Date: date}).
		SetResult(&result).
		SetError(&failure).
		Post("/dispatch/log")
	if err != nil {
		return nil, fmt.Errorf("failed to mark %s dispatched: %w", date, err)
	}
	if resp.IsError() {
		return nil, statusError(resp, &failure)
	}
	return &result.Data, nil
}

func statusError(resp *resty.Response, failure *models.APIResponse) error {
	e := &StatusError{Code: resp.StatusCode(), Message: failure.Message}
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode())
	}
	if failure.Error != nil {
		e.Type = failure.Error.Type
		e.Details = failure.Error.Details
	}
	return e
}
