// Package api implements the HTTP/JSON client for the fieldreport server.
// Submission calls carry a client-generated idempotency key so a retry after
// a lost success response cannot create a duplicate on the server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/fieldreport/internal/agent/models"
	"github.com/dmitrijs2005/fieldreport/internal/common"
)

// Client talks to the fieldreport server. It is safe for concurrent use from
// the sync engine, the connectivity watcher and the CLI; Login replaces the
// bearer token under the mutex.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New returns a Client for the given base URL. The timeout bounds every
// request end to end; an unresponsive server fails the call instead of
// stalling a sync pass.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// UserInfo describes the authenticated agent.
type UserInfo struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// Login authenticates and stores the bearer token for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (*UserInfo, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "",
		loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.setToken(resp.Token)
	return &resp.User, nil
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearerToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Ping probes the health endpoint. It is the reachability signal the
// connectivity watcher relies on.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", "", nil, nil)
}

// ReportPayload is the wire form of a report submission. Local bookkeeping
// (local key, sync state) is never transmitted.
type ReportPayload struct {
	Municipio      string          `json:"municipio"`
	Comunidad      string          `json:"comunidad"`
	Location       models.Location `json:"location"`
	NeedType       string          `json:"needType"`
	Description    string          `json:"description"`
	EvidenceBase64 string          `json:"evidenceBase64,omitempty"`
	Timestamp      int64           `json:"timestamp"`
	User           string          `json:"user"`
}

type createdResponse struct {
	ID string `json:"id"`
}

// CreateReport submits one report and returns the server-assigned id.
func (c *Client) CreateReport(ctx context.Context, rec *models.Report) (string, error) {
	payload := ReportPayload{
		Municipio:      rec.Municipality,
		Comunidad:      rec.Community,
		Location:       rec.Location,
		NeedType:       string(rec.NeedType),
		Description:    rec.Description,
		EvidenceBase64: rec.EvidenceBase64,
		Timestamp:      rec.CapturedAt.UnixMilli(),
		User:           rec.Author,
	}
	var resp createdResponse
	if err := c.do(ctx, http.MethodPost, "/api/reports", rec.IdempotencyKey, payload, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: server accepted report without an id", common.ErrUnavailable)
	}
	return resp.ID, nil
}

// ServerReport is a server-confirmed report as returned by the listing
// endpoint.
type ServerReport struct {
	ID             string          `json:"id"`
	Municipio      string          `json:"municipio"`
	Comunidad      string          `json:"comunidad"`
	Location       models.Location `json:"location"`
	NeedType       string          `json:"needType"`
	Description    string          `json:"description"`
	EvidenceBase64 string          `json:"evidenceBase64,omitempty"`
	EvidenceURL    string          `json:"evidenceUrl,omitempty"`
	Timestamp      int64           `json:"timestamp"`
	User           string          `json:"user"`
	Status         string          `json:"status"`
}

// ToModel converts a server record to the local display model.
func (s ServerReport) ToModel() *models.Report {
	return &models.Report{
		RemoteID:       s.ID,
		SyncState:      models.SyncStateSynced,
		CapturedAt:     time.UnixMilli(s.Timestamp),
		Municipality:   s.Municipio,
		Community:      s.Comunidad,
		Location:       s.Location,
		NeedType:       models.NeedType(s.NeedType),
		Description:    s.Description,
		EvidenceBase64: s.EvidenceBase64,
		Author:         s.User,
	}
}

// ReportPage is one page of the server's report listing.
type ReportPage struct {
	Items []ServerReport `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Pages int            `json:"pages"`
}

// ListReports fetches one page of server-confirmed reports.
func (c *Client) ListReports(ctx context.Context, page, limit int) (*ReportPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var resp ReportPage
	if err := c.do(ctx, http.MethodGet, "/api/reports?"+q.Encode(), "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateReportStatus sets the triage status of a synced report.
func (c *Client) UpdateReportStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, http.MethodPut, "/api/reports/"+url.PathEscape(id), "", body, nil)
}

// DeleteReport removes a synced report from the server.
func (c *Client) DeleteReport(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/reports/"+url.PathEscape(id), "", nil, nil)
}

// PersonPayload is the wire form of a person submission.
type PersonPayload struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
	Community string `json:"community"`
	Timestamp int64  `json:"timestamp"`
}

// CreatePerson submits one person record and returns the server-assigned id.
func (c *Client) CreatePerson(ctx context.Context, rec *models.Person) (string, error) {
	payload := PersonPayload{
		Name:      rec.Name,
		Role:      rec.Role,
		Phone:     rec.Phone,
		Community: rec.Community,
		Timestamp: rec.CapturedAt.UnixMilli(),
	}
	var resp createdResponse
	if err := c.do(ctx, http.MethodPost, "/api/people", rec.IdempotencyKey, payload, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: server accepted person without an id", common.ErrUnavailable)
	}
	return resp.ID, nil
}

// ServerPerson is a server-confirmed person record.
type ServerPerson struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
	Community string `json:"community"`
	Timestamp int64  `json:"timestamp"`
}

func (s ServerPerson) ToModel() *models.Person {
	return &models.Person{
		RemoteID:   s.ID,
		SyncState:  models.SyncStateSynced,
		CapturedAt: time.UnixMilli(s.Timestamp),
		Name:       s.Name,
		Role:       s.Role,
		Phone:      s.Phone,
		Community:  s.Community,
	}
}

// PersonPage is one page of the server's people listing.
type PersonPage struct {
	Items []ServerPerson `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Pages int            `json:"pages"`
}

// ListPeople fetches one page of server-confirmed person records.
func (c *Client) ListPeople(ctx context.Context, page, limit int) (*PersonPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var resp PersonPage
	if err := c.do(ctx, http.MethodGet, "/api/people?"+q.Encode(), "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeletePerson removes a synced person record from the server.
func (c *Client) DeletePerson(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/people/"+url.PathEscape(id), "", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, idempotencyKey string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearerToken(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	if idempotencyKey != "" {
		req.Header.Set(common.IdempotencyKeyHeaderName, idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// network error, DNS failure or timeout: transient by definition
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readErrorMessage(resp.Body)
		return newAPIError(resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", common.ErrUnavailable, err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(b))
}
