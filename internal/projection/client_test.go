package projection_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/projection"
)

type staticToken string

func (s staticToken) Issue(string) (string, error) { return string(s), nil }

func TestClient_Request_Validation(t *testing.T) {
	var calls atomic.Int32

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer ts.Close()

	client := projection.NewClient(ts.URL, time.Second, nil)

	for _, years := range []int{0, 11, -3} {
		_, err := client.Request(context.Background(), "u1", years)
		assert.True(t, apperr.IsValidation(err), "years=%d", years)
	}

	_, err := client.Request(context.Background(), "", 5)
	assert.True(t, apperr.IsValidation(err))

	assert.Zero(t, calls.Load())
}

func TestClient_Request_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body struct {
			Data struct {
				UserID string `json:"userId"`
				Years  int    `json:"years"`
			} `json:"data"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body.Data.UserID)
		assert.Equal(t, 5, body.Data.Years)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"predictedAmount":12000000}}`))
	}))
	defer ts.Close()

	got, err := projection.NewClient(ts.URL, time.Second, staticToken("tok")).Request(context.Background(), "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Years)
	assert.True(t, decimal.NewFromInt(12_000_000).Equal(got.PredictedAmount), "got %s", got.PredictedAmount)
}

func TestClient_Request_Errors(t *testing.T) {
	type testCase struct {
		name   string
		status int
		body   string
		want   apperr.RemoteKind
	}

	tests := []testCase{
		{name: "Unauthorized", status: http.StatusUnauthorized, want: apperr.RemoteUnauthorized},
		{name: "Forbidden", status: http.StatusForbidden, want: apperr.RemoteUnauthorized},
		{name: "Unavailable", status: http.StatusServiceUnavailable, want: apperr.RemoteServiceUnavailable},
		{name: "BadGateway", status: http.StatusBadGateway, want: apperr.RemoteServiceUnavailable},
		{name: "InternalWithoutBody", status: http.StatusInternalServerError, want: apperr.RemoteUnknown},
		{
			name:   "CallableUnauthenticated",
			status: http.StatusInternalServerError,
			body:   `{"error":{"status":"UNAUTHENTICATED","message":"no token"}}`,
			want:   apperr.RemoteUnauthorized,
		},
		{
			name:   "CallableDeadline",
			status: http.StatusInternalServerError,
			body:   `{"error":{"status":"DEADLINE_EXCEEDED"}}`,
			want:   apperr.RemoteServiceUnavailable,
		},
		{
			name:   "CallableInternal",
			status: http.StatusInternalServerError,
			body:   `{"error":{"status":"INTERNAL","message":"boom"}}`,
			want:   apperr.RemoteUnknown,
		},
		{name: "NotJSON", status: http.StatusOK, body: `<html>`, want: apperr.RemoteMalformedResponse},
		{name: "MissingAmount", status: http.StatusOK, body: `{"result":{}}`, want: apperr.RemoteMalformedResponse},
		{name: "NullAmount", status: http.StatusOK, body: `{"result":{"predictedAmount":null}}`, want: apperr.RemoteMalformedResponse},
		{name: "StringAmount", status: http.StatusOK, body: `{"result":{"predictedAmount":"lots"}}`, want: apperr.RemoteMalformedResponse},
		{name: "NoResult", status: http.StatusOK, body: `{}`, want: apperr.RemoteMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := projection.NewClient(ts.URL, time.Second, nil).Request(context.Background(), "u1", 3)
			require.Error(t, err)

			kind, ok := apperr.RemoteKindOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestClient_Request_Transport(t *testing.T) {
	t.Run("Timeout", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer ts.Close()

		_, err := projection.NewClient(ts.URL, 20*time.Millisecond, nil).Request(context.Background(), "u1", 1)
		kind, _ := apperr.RemoteKindOf(err)
		assert.Equal(t, apperr.RemoteServiceUnavailable, kind)
	})

	t.Run("ConnectionRefused", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := ts.URL
		ts.Close()

		_, err := projection.NewClient(url, time.Second, nil).Request(context.Background(), "u1", 1)
		kind, _ := apperr.RemoteKindOf(err)
		assert.Equal(t, apperr.RemoteServiceUnavailable, kind)
	})

	t.Run("CallerCancelled", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		defer ts.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := projection.NewClient(ts.URL, time.Second, nil).Request(ctx, "u1", 1)
		kind, ok := apperr.RemoteKindOf(err)
		require.True(t, ok)
		assert.Equal(t, apperr.RemoteUnknown, kind)
	})
}
