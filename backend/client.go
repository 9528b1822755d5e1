// Package backend is the HTTP client for the MANPOWER REST backend, which owns
// members, groups, loans, contributions and the payment gateway integration.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fadhlanhapp/manpower-backend/logger"
	"github.com/fadhlanhapp/manpower-backend/models"
	"github.com/fadhlanhapp/manpower-backend/utils"
)

const maxErrorBody = 4 << 10

// APIError is a non-2xx answer from the backend
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the backend's /api endpoints
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client. A nil httpClient gets a client with the
// given timeout.
func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// GetMember fetches a member profile
func (c *Client) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	var member models.Member
	if err := c.do(ctx, http.MethodGet, "/members/"+url.PathEscape(memberID), nil, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// GetMemberContributions fetches every contribution record of a member
func (c *Client) GetMemberContributions(ctx context.Context, memberID string) ([]models.Contribution, error) {
	var contributions []models.Contribution
	if err := c.do(ctx, http.MethodGet, "/contributions/member/"+url.PathEscape(memberID), nil, &contributions); err != nil {
		return nil, err
	}
	return contributions, nil
}

// GetMemberLoans fetches all loans and keeps the member's own. The backend
// has no per-member loan endpoint.
func (c *Client) GetMemberLoans(ctx context.Context, memberID string) ([]models.Loan, error) {
	var loans []models.Loan
	if err := c.do(ctx, http.MethodGet, "/loans", nil, &loans); err != nil {
		return nil, err
	}

	own := make([]models.Loan, 0, len(loans))
	for _, loan := range loans {
		if loan.BelongsTo(memberID) {
			own = append(own, loan)
		}
	}
	return own, nil
}

// GetLoan fetches a single loan
func (c *Client) GetLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	var loan models.Loan
	if err := c.do(ctx, http.MethodGet, "/loans/"+url.PathEscape(loanID), nil, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

// CreateLoan posts a new loan request
func (c *Client) CreateLoan(ctx context.Context, req *models.LoanRequest) (*models.Loan, error) {
	var loan models.Loan
	if err := c.do(ctx, http.MethodPost, "/loans", req, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

// InitiatePayment asks the backend to open a gateway order
func (c *Client) InitiatePayment(ctx context.Context, req *models.GatewayInitiateRequest) (*models.GatewayInitiateResponse, error) {
	var resp models.GatewayInitiateResponse
	if err := c.do(ctx, http.MethodPost, "/payments/initiate", req, &resp); err != nil {
		return nil, err
	}
	if resp.OrderTrackingID == "" {
		return nil, fmt.Errorf("backend initiate payment: missing orderTrackingId")
	}
	return &resp, nil
}

// PaymentStatus polls the gateway status of an order. The backend answers
// either {"status": "..."} or the bare status string.
func (c *Client) PaymentStatus(ctx context.Context, orderTrackingID string) (models.GatewayStatus, error) {
	var raw []byte
	if err := c.do(ctx, http.MethodGet, "/payments/status/"+url.PathEscape(orderTrackingID), nil, &raw); err != nil {
		return "", err
	}
	return parseGatewayStatus(raw)
}

// CreateContribution records a settled contribution
func (c *Client) CreateContribution(ctx context.Context, req *models.ContributionRequest) (*models.Contribution, error) {
	var contribution models.Contribution
	if err := c.do(ctx, http.MethodPost, "/contributions", req, &contribution); err != nil {
		return nil, err
	}
	return &contribution, nil
}

func parseGatewayStatus(raw []byte) (models.GatewayStatus, error) {
	raw = bytes.TrimSpace(raw)

	var body struct {
		Status string `json:"status"`
	}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &body); err != nil {
			return "", fmt.Errorf("decode payment status: %w", err)
		}
	} else if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &body.Status); err != nil {
			return "", fmt.Errorf("decode payment status: %w", err)
		}
	} else {
		body.Status = string(raw)
	}

	switch strings.ToUpper(strings.TrimSpace(body.Status)) {
	case string(models.GatewayCompleted):
		return models.GatewayCompleted, nil
	case string(models.GatewayFailed):
		return models.GatewayFailed, nil
	default:
		// PENDING, UNKNOWN and anything else means not settled yet
		return models.GatewayInitiated, nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("backend request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %v", utils.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		return nil
	}
	if rawOut, ok := out.(*[]byte); ok {
		*rawOut, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: read %s %s: %v", utils.ErrTransport, method, path, err)
		}
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
