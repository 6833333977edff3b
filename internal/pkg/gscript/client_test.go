package gscript

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2/clientcredentials"
)

func testPayload() document.WebhookPayload {
	return document.WebhookPayload{
		RequestID:    "01890a5d-ac96-774b-bcce-b302099a8057",
		EmployeeName: "Siti",
		LeaveType:    "Cuti Tahunan",
		StartDate:    "2024-03-04",
		EndDate:      "2024-03-06",
		WorkingDays:  3,
	}
}

func TestNotify_Success(t *testing.T) {
	signer := NewSigner("shared-secret")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.True(t, signer.Verify(body, r.Header.Get(SignatureHeader)))

		var got document.WebhookPayload
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "Siti", got.EmployeeName)
		assert.Equal(t, 3, got.WorkingDays)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"url":"https://docs.example.com/d/abc"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{URL: srv.URL, SigningSecret: "shared-secret"})
	result, err := client.Notify(context.Background(), testPayload())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "https://docs.example.com/d/abc", result.DocumentURL)
}

func TestNotify_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   "boom",
			check: func(t *testing.T, err error) {
				var httpErr *HTTPError
				require.ErrorAs(t, err, &httpErr)
				assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
				assert.Equal(t, "boom", httpErr.Body)
			},
		},
		{
			name:   "script reports failure",
			status: http.StatusOK,
			body:   `{"success":false,"message":"template missing"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, document.ErrWebhookRejected)
				assert.Contains(t, err.Error(), "template missing")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(Config{URL: srv.URL}).Notify(context.Background(), testPayload())
			tt.check(t, err)
		})
	}
}

func TestNotify_TolerantResponses(t *testing.T) {
	for _, body := range []string{"", "OK", `{"document_url":"https://docs.example.com/x"}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		result, err := NewClient(Config{URL: srv.URL}).Notify(context.Background(), testPayload())
		srv.Close()

		require.NoError(t, err, body)
		assert.True(t, result.Success)
	}
}

func TestNotify_NotConfigured(t *testing.T) {
	_, err := NewClient(Config{}).Notify(context.Background(), testPayload())
	assert.ErrorIs(t, err, document.ErrWebhookNotConfigured)
}

func TestNotify_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(Config{URL: srv.URL, Timeout: 50 * time.Millisecond}).Notify(context.Background(), testPayload())
	assert.Error(t, err)
}

func TestNotify_OAuthClientCredentials(t *testing.T) {
	var tokenCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/hook", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"success":true,"url":"https://docs.example.com/d/1"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(Config{
		URL: srv.URL + "/hook",
		OAuth: clientcredentials.Config{
			ClientID:     "eleave",
			ClientSecret: "secret",
			TokenURL:     srv.URL + "/token",
		},
	})

	for i := 0; i < 2; i++ {
		result, err := client.Notify(context.Background(), testPayload())
		require.NoError(t, err)
		assert.Equal(t, "https://docs.example.com/d/1", result.DocumentURL)
	}
	assert.Equal(t, int32(1), tokenCalls.Load(), "token is cached")
}

func TestSigner(t *testing.T) {
	s := NewSigner("k")
	sig := s.Sign([]byte("body"))
	assert.Len(t, sig, 64)
	assert.True(t, s.Verify([]byte("body"), sig))
	assert.False(t, s.Verify([]byte("other"), sig))
	assert.False(t, NewSigner("k2").Verify([]byte("body"), sig))
}
