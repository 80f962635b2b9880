// Package projection requests multi-year asset projections from the remote
// estimation service.
//
// The service speaks the callable-function protocol: the request body is
// {"data": {...}}, a success is {"result": {...}} and a failure is
// {"error": {"status": "...", "message": "..."}}.
package projection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
)

const (
	MinYears = 1
	MaxYears = 10

	maxBodySize = 1 << 20
)

// TokenIssuer mints the bearer token presented for a user.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type Result struct {
	UserID          string
	Years           int
	PredictedAmount decimal.Decimal
}

type Client struct {
	url    string
	client *http.Client
	tokens TokenIssuer
}

// NewClient returns a client for the endpoint at url. A nil tokens sends no
// Authorization header.
func NewClient(url string, timeout time.Duration, tokens TokenIssuer) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
		tokens: tokens,
	}
}

type requestBody struct {
	Data struct {
		UserID string `json:"userId"`
		Years  int    `json:"years"`
	} `json:"data"`
}

type responseBody struct {
	Result *struct {
		PredictedAmount json.RawMessage `json:"predictedAmount"`
	} `json:"result"`
	Error *remoteError `json:"error"`
}

type remoteError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (e *remoteError) Error() string {
	if e.Message == "" {
		return e.Status
	}

	return e.Status + ": " + e.Message
}

// Request asks for the user's total assets years from now. It makes a single
// attempt and never retries.
func (c *Client) Request(ctx context.Context, userID string, years int) (*Result, error) {
	if userID == "" {
		return nil, apperr.Validation("user id", "is required")
	}

	if years < MinYears || years > MaxYears {
		return nil, apperr.Validation("years", fmt.Sprintf("must be between %d and %d", MinYears, MaxYears))
	}

	var body requestBody
	body.Data.UserID = userID
	body.Data.Years = years

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperr.Remote(apperr.RemoteUnknown, fmt.Errorf("encoding request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, apperr.Remote(apperr.RemoteUnknown, fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Issue(userID)
		if err != nil {
			return nil, apperr.Remote(apperr.RemoteUnknown, fmt.Errorf("issuing token: %w", err))
		}

		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Remote(transportKind(err), fmt.Errorf("executing request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, apperr.Remote(transportKind(err), fmt.Errorf("reading response: %w", err))
	}

	var decoded responseBody

	decodeErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode != http.StatusOK || (decodeErr == nil && decoded.Error != nil) {
		return nil, statusError(resp.StatusCode, decoded.Error)
	}

	if decodeErr != nil {
		return nil, apperr.Remote(apperr.RemoteMalformedResponse, fmt.Errorf("decoding response: %w", decodeErr))
	}

	amount, err := predictedAmount(decoded)
	if err != nil {
		return nil, apperr.Remote(apperr.RemoteMalformedResponse, err)
	}

	return &Result{UserID: userID, Years: years, PredictedAmount: amount}, nil
}

// predictedAmount accepts only a JSON number. Strings and null are malformed.
func predictedAmount(body responseBody) (decimal.Decimal, error) {
	if body.Result == nil || len(body.Result.PredictedAmount) == 0 {
		return decimal.Zero, errors.New("response has no predictedAmount")
	}

	dec := json.NewDecoder(bytes.NewReader(body.Result.PredictedAmount))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading predictedAmount: %w", err)
	}

	n, ok := tok.(json.Number)
	if !ok {
		return decimal.Zero, fmt.Errorf("predictedAmount is %s, not a number", body.Result.PredictedAmount)
	}

	amount, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing predictedAmount: %w", err)
	}

	return amount, nil
}

// transportKind treats every failure to reach the service as unavailability,
// except a caller that gave up.
func transportKind(err error) apperr.RemoteKind {
	if errors.Is(err, context.Canceled) {
		return apperr.RemoteUnknown
	}

	return apperr.RemoteServiceUnavailable
}

func statusError(code int, remote *remoteError) error {
	var cause error = fmt.Errorf("status %d", code)
	if remote != nil {
		cause = fmt.Errorf("status %d: %w", code, remote)

		if kind, ok := remoteStatusKind(remote.Status); ok {
			return apperr.Remote(kind, cause)
		}
	}

	return apperr.Remote(httpStatusKind(code), cause)
}

func remoteStatusKind(status string) (apperr.RemoteKind, bool) {
	switch status {
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return apperr.RemoteUnauthorized, true
	case "UNAVAILABLE", "DEADLINE_EXCEEDED", "RESOURCE_EXHAUSTED":
		return apperr.RemoteServiceUnavailable, true
	case "":
		return apperr.RemoteUnknown, false
	}

	return apperr.RemoteUnknown, true
}

func httpStatusKind(code int) apperr.RemoteKind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperr.RemoteUnauthorized
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout,
		http.StatusTooManyRequests, http.StatusRequestTimeout:
		return apperr.RemoteServiceUnavailable
	}

	return apperr.RemoteUnknown
}
