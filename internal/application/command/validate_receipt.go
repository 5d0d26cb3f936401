package command

import (
	"context"
	"strings"
	"time"

	iap "github.com/awa/go-iap/appstore"
	"go.uber.org/zap"

	"github.com/bivex/receipt-verify/internal/application/dto"
	domainErrors "github.com/bivex/receipt-verify/internal/domain/errors"
	"github.com/bivex/receipt-verify/internal/infrastructure/config"
	"github.com/bivex/receipt-verify/internal/infrastructure/external/appstore"
)

// Environments that may authenticate a receipt
const (
	EnvProduction = "production"
	EnvSandbox    = "sandbox"
)

// ReceiptVerifier is the upstream verifyReceipt port
type ReceiptVerifier interface {
	Verify(ctx context.Context, endpoint, receiptData string) (*iap.IAPResponse, error)
}

// ValidateReceiptCommand handles receipt validation. It performs at most
// two upstream calls (production first, sandbox on failure or re-route),
// classifies the result and returns a verdict.
type ValidateReceiptCommand struct {
	verifier      ReceiptVerifier
	bundleID      string
	productID     string
	productionURL string
	sandboxURL    string
	gracePeriod   time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewValidateReceiptCommand creates a new validate receipt command
func NewValidateReceiptCommand(verifier ReceiptVerifier, cfg config.AppStoreConfig, logger *zap.Logger) *ValidateReceiptCommand {
	return &ValidateReceiptCommand{
		verifier:      verifier,
		bundleID:      cfg.BundleID,
		productID:     cfg.SubscriptionProductID,
		productionURL: cfg.ProductionURL,
		sandboxURL:    cfg.SandboxURL,
		gracePeriod:   cfg.GracePeriod,
		logger:        logger,
		now:           time.Now,
	}
}

// Execute validates a receipt and always returns a verdict. The returned
// error, when non-nil, is a taxonomy sentinel the transport layer maps to
// an HTTP status; business-level "no" results return a nil error.
func (c *ValidateReceiptCommand) Execute(ctx context.Context, req *dto.ValidationRequest) (*dto.ValidationVerdict, error) {
	verdict := &dto.ValidationVerdict{Timestamp: c.now().UTC()}

	if strings.TrimSpace(req.ReceiptData) == "" {
		verdict.Error = domainErrors.ErrReceiptRequired.Error()
		return verdict, domainErrors.ErrReceiptRequired
	}
	if req.AppID != c.bundleID {
		verdict.Error = domainErrors.ErrInvalidAppID.Error()
		return verdict, domainErrors.ErrInvalidAppID
	}

	result, environment, err := c.resolveEnvironment(ctx, req.ReceiptData)
	if err != nil {
		verdict.Error = "validation failed with upstream"
		return verdict, err
	}
	verdict.Environment = environment
	if environment == EnvSandbox {
		verdict.Debug = &dto.UpstreamDebug{
			HasLatestReceiptInfo:  len(result.LatestReceiptInfo) > 0,
			HasInAppPurchases:     len(result.Receipt.InApp) > 0,
			HasPendingRenewalInfo: len(result.PendingRenewalInfo) > 0,
		}
	}

	if result.Status != appstore.StatusOK {
		verdict.StatusCode = result.Status
		if result.Status == appstore.StatusSubscriptionExpired {
			verdict.Error = "subscription expired"
			verdict.Expired = true
			return verdict, nil
		}
		verdict.Error = appstore.StatusMessage(result.Status)
		return verdict, nil
	}

	// Guards against cross-app receipt replay
	if result.Receipt.BundleID != c.bundleID {
		c.logger.Warn("receipt bundle id does not match configured app",
			zap.String("bundle_id", result.Receipt.BundleID),
			zap.String("environment", environment),
		)
		verdict.Error = domainErrors.ErrBundleMismatch.Error()
		return verdict, nil
	}

	sc := scanContext{
		environment: environment,
		productID:   c.productID,
		gracePeriod: c.gracePeriod,
		now:         verdict.Timestamp,
	}
	for _, scan := range detectionOrder {
		if info := scan(result, sc); info != nil {
			verdict.IsValid = true
			verdict.SubscriptionInfo = info
			return verdict, nil
		}
	}

	// No entitlement found. A well-formed "no" is not an error.
	return verdict, nil
}

// resolveEnvironment implements the two-level fallback: production first,
// sandbox after a production failure, and a single re-route when
// production reports a sandbox receipt. At most two upstream calls occur.
func (c *ValidateReceiptCommand) resolveEnvironment(ctx context.Context, receiptData string) (*iap.IAPResponse, string, error) {
	result, err := c.verifier.Verify(ctx, c.productionURL, receiptData)
	if err != nil {
		c.logger.Warn("production verification failed, trying sandbox", zap.Error(err))
		sandboxResult, sandboxErr := c.verifier.Verify(ctx, c.sandboxURL, receiptData)
		if sandboxErr != nil {
			return nil, "", sandboxErr
		}
		return sandboxResult, EnvSandbox, nil
	}

	if result.Status == appstore.StatusSandboxReceiptOnProd {
		c.logger.Debug("sandbox receipt sent to production, re-routing")
		sandboxResult, sandboxErr := c.verifier.Verify(ctx, c.sandboxURL, receiptData)
		if sandboxErr != nil {
			return nil, "", sandboxErr
		}
		return sandboxResult, EnvSandbox, nil
	}

	return result, EnvProduction, nil
}
