package appstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	iap "github.com/awa/go-iap/appstore"
	"go.uber.org/zap"

	domainErrors "github.com/bivex/receipt-verify/internal/domain/errors"
)

// Canonical verifyReceipt endpoints, overridable through configuration.
const (
	ProductionURL = iap.ProductionURL
	SandboxURL    = iap.SandboxURL
)

// Client posts receipts to a single verifyReceipt endpoint. It performs no
// environment fallback itself; endpoint selection belongs to the caller.
type Client struct {
	httpClient   *http.Client
	sharedSecret string
	logger       *zap.Logger
}

// NewClient creates a verifyReceipt client bounded by a per-call timeout.
func NewClient(sharedSecret string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		sharedSecret: sharedSecret,
		logger:       logger,
	}
}

// Verify submits the receipt blob to the given endpoint and decodes the
// response. Timeouts are reported as ErrUpstreamTimeout; connection
// failures, non-2xx statuses and malformed bodies as ErrUpstreamNetwork.
func (c *Client) Verify(ctx context.Context, endpoint, receiptData string) (*iap.IAPResponse, error) {
	payload, err := json.Marshal(iap.IAPRequest{
		ReceiptData:            receiptData,
		Password:               c.sharedSecret,
		ExcludeOldTransactions: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", domainErrors.ErrUpstreamNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", domainErrors.ErrUpstreamNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn("verifyReceipt call timed out",
				zap.String("endpoint", endpoint),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil, fmt.Errorf("%w: %v", domainErrors.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrUpstreamNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: upstream returned HTTP %d", domainErrors.ErrUpstreamNetwork, resp.StatusCode)
	}

	var result iap.IAPResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", domainErrors.ErrUpstreamNetwork, err)
	}

	c.logger.Debug("verifyReceipt call completed",
		zap.String("endpoint", endpoint),
		zap.Int("status", result.Status),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &result, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
