package command

import (
	"strconv"
	"time"

	iap "github.com/awa/go-iap/appstore"

	"github.com/bivex/receipt-verify/internal/application/dto"
)

type scanContext struct {
	environment string
	productID   string
	gracePeriod time.Duration
	now         time.Time
}

// detectionMethod inspects an upstream response for evidence of an
// entitlement. A nil result means "nothing found, try the next method".
type detectionMethod func(result *iap.IAPResponse, sc scanContext) *dto.SubscriptionInfo

// detectionOrder is evaluated in fixed order; the first match wins.
var detectionOrder = []detectionMethod{
	scanLatestReceiptInfo,
	scanInAppPurchases,
	scanPendingRenewals,
	sandboxFallback,
}

// scanLatestReceiptInfo picks the matching subscription record with the
// latest expiry and accepts it when the expiry is still inside the grace
// window.
func scanLatestReceiptInfo(result *iap.IAPResponse, sc scanContext) *dto.SubscriptionInfo {
	var latest *iap.InApp
	var latestExpiry int64
	for i := range result.LatestReceiptInfo {
		rec := &result.LatestReceiptInfo[i]
		if rec.ProductID != sc.productID {
			continue
		}
		expiry, err := strconv.ParseInt(rec.ExpiresDateMS, 10, 64)
		if err != nil {
			continue
		}
		if latest == nil || expiry > latestExpiry {
			latest = rec
			latestExpiry = expiry
		}
	}
	if latest == nil {
		return nil
	}

	cutoff := sc.now.Add(-sc.gracePeriod).UnixMilli()
	if latestExpiry <= cutoff {
		return nil
	}

	return &dto.SubscriptionInfo{
		Kind:               dto.KindActiveSubscription,
		ProductID:          latest.ProductID,
		Environment:        sc.environment,
		TransactionID:      latest.TransactionID,
		ExpiresAt:          time.UnixMilli(latestExpiry).UTC().Format(time.RFC3339),
		IsTrialPeriod:      latest.IsTrialPeriod == "true",
		IsIntroOfferPeriod: latest.IsInIntroOfferPeriod == "true",
	}
}

// scanInAppPurchases picks the newest matching purchase record from the
// receipt itself. Purchases count regardless of expiry; this covers
// non-expiring product modeling.
func scanInAppPurchases(result *iap.IAPResponse, sc scanContext) *dto.SubscriptionInfo {
	var newest *iap.InApp
	var newestPurchase int64
	for i := range result.Receipt.InApp {
		rec := &result.Receipt.InApp[i]
		if rec.ProductID != sc.productID {
			continue
		}
		purchased, err := strconv.ParseInt(rec.PurchaseDateMS, 10, 64)
		if err != nil {
			continue
		}
		if newest == nil || purchased > newestPurchase {
			newest = rec
			newestPurchase = purchased
		}
	}
	if newest == nil {
		return nil
	}

	return &dto.SubscriptionInfo{
		Kind:          dto.KindPastPurchase,
		ProductID:     newest.ProductID,
		Environment:   sc.environment,
		TransactionID: newest.TransactionID,
		PurchasedAt:   time.UnixMilli(newestPurchase).UTC().Format(time.RFC3339),
	}
}

// scanPendingRenewals accepts a pending auto-renewal as evidence, sandbox
// only. Production renewal pendingness is not proof of an entitlement.
func scanPendingRenewals(result *iap.IAPResponse, sc scanContext) *dto.SubscriptionInfo {
	if sc.environment != EnvSandbox {
		return nil
	}
	for _, info := range result.PendingRenewalInfo {
		if info.ProductID == sc.productID && info.SubscriptionAutoRenewStatus == "1" {
			return &dto.SubscriptionInfo{
				Kind:            dto.KindPendingRenewal,
				ProductID:       info.ProductID,
				Environment:     sc.environment,
				IsPending:       true,
				AutoRenewStatus: info.SubscriptionAutoRenewStatus,
			}
		}
	}
	return nil
}

// sandboxFallback marks any well-formed sandbox receipt with the right
// bundle id as valid. Sandbox testing receipts frequently lack usable
// transaction history; production receipts never get this leniency.
func sandboxFallback(result *iap.IAPResponse, sc scanContext) *dto.SubscriptionInfo {
	if sc.environment != EnvSandbox {
		return nil
	}
	return &dto.SubscriptionInfo{
		Kind:        dto.KindSandboxFallback,
		ProductID:   sc.productID,
		Environment: sc.environment,
	}
}
