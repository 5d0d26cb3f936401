package appstore_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	iap "github.com/awa/go-iap/appstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainErrors "github.com/bivex/receipt-verify/internal/domain/errors"
	"github.com/bivex/receipt-verify/internal/infrastructure/external/appstore"
)

func TestClientVerify(t *testing.T) {
	t.Run("posts receipt with shared secret and decodes response", func(t *testing.T) {
		var captured iap.IAPRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			json.NewEncoder(w).Encode(iap.IAPResponse{
				Status:  0,
				Receipt: iap.Receipt{BundleID: "com.example.reader"},
			})
		}))
		defer server.Close()

		client := appstore.NewClient("shared-secret", 5*time.Second, zap.NewNop())
		result, err := client.Verify(context.Background(), server.URL, "cmVjZWlwdA==")

		require.NoError(t, err)
		assert.Equal(t, 0, result.Status)
		assert.Equal(t, "com.example.reader", result.Receipt.BundleID)
		assert.Equal(t, "cmVjZWlwdA==", captured.ReceiptData)
		assert.Equal(t, "shared-secret", captured.Password)
		assert.True(t, captured.ExcludeOldTransactions)
	})

	t.Run("non-2xx status is a network error carrying the HTTP status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := appstore.NewClient("shared-secret", 5*time.Second, zap.NewNop())
		_, err := client.Verify(context.Background(), server.URL, "cmVjZWlwdA==")

		require.ErrorIs(t, err, domainErrors.ErrUpstreamNetwork)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("malformed body is a network error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := appstore.NewClient("shared-secret", 5*time.Second, zap.NewNop())
		_, err := client.Verify(context.Background(), server.URL, "cmVjZWlwdA==")

		require.ErrorIs(t, err, domainErrors.ErrUpstreamNetwork)
	})

	t.Run("slow upstream is a timeout error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}))
		defer server.Close()

		client := appstore.NewClient("shared-secret", 50*time.Millisecond, zap.NewNop())
		_, err := client.Verify(context.Background(), server.URL, "cmVjZWlwdA==")

		require.ErrorIs(t, err, domainErrors.ErrUpstreamTimeout)
	})

	t.Run("cancelled context aborts the call", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		client := appstore.NewClient("shared-secret", 5*time.Second, zap.NewNop())
		_, err := client.Verify(ctx, server.URL, "cmVjZWlwdA==")

		require.Error(t, err)
	})

	t.Run("unreachable endpoint is a network error", func(t *testing.T) {
		client := appstore.NewClient("shared-secret", time.Second, zap.NewNop())
		_, err := client.Verify(context.Background(), "http://127.0.0.1:1", "cmVjZWlwdA==")

		require.ErrorIs(t, err, domainErrors.ErrUpstreamNetwork)
	})
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "subscription expired", appstore.StatusMessage(appstore.StatusSubscriptionExpired))
	assert.Equal(t, "the shared secret does not match", appstore.StatusMessage(appstore.StatusInvalidSharedSecret))
	assert.Equal(t, "unknown error", appstore.StatusMessage(12345))
}
