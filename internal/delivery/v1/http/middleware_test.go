package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/DRSN-tech/inventory-backend/pkg/ratelimit"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string) (*ratelimit.Result, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ratelimit.Result), args.Error(1)
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromCtx(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(requestIDHeader))
}

func TestRequestID_KeepsClientValue(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
}

func TestRequestIDFromCtx_Empty(t *testing.T) {
	assert.Empty(t, RequestIDFromCtx(context.Background()))
}

func TestRateLimit(t *testing.T) {
	resetAt := time.Now().Add(30 * time.Second)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		result     *ratelimit.Result
		err        error
		wantStatus int
	}{
		{
			name:       "allowed",
			result:     &ratelimit.Result{Allowed: true, Remaining: 9, ResetAt: resetAt, Limit: 10},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "limited",
			result:     &ratelimit.Result{Allowed: false, Remaining: 0, ResetAt: resetAt, Limit: 10},
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "limiter unavailable fails open",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := new(MockRateLimiter)
			limiter.On("Allow", mock.Anything, "client:mobile").Return(tt.result, tt.err).Once()

			req := httptest.NewRequest(http.MethodGet, "/v1/stocks", nil)
			req.Header.Set(clientIDHeader, "mobile")

			rec := httptest.NewRecorder()
			RateLimit(limiter, logger.NewNopLogger())(ok).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			limiter.AssertExpectations(t)

			if tt.wantStatus == http.StatusTooManyRequests {
				assert.JSONEq(t, `{"message":"ERROR"}`, rec.Body.String())
				assert.NotEmpty(t, rec.Header().Get("Retry-After"))
				assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
			}
		})
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "ip:10.0.0.7", clientKey(req))

	req.Header.Set(clientIDHeader, "abc")
	assert.Equal(t, "client:abc", clientKey(req))
}

func TestRouter_RateLimitAppliesToV1Only(t *testing.T) {
	limiter := new(MockRateLimiter)
	limiter.On("Allow", mock.Anything, mock.Anything).
		Return(&ratelimit.Result{Allowed: false, ResetAt: time.Now().Add(time.Second), Limit: 1}, nil)

	h := newTestRouter(new(MockInventoryUC), stubPinger{}, limiter)

	rec := doRequest(h, http.MethodGet, "/v1/stocks", "")
	assertGenericError(t, rec, http.StatusTooManyRequests)

	rec = doRequest(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
