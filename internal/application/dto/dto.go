package dto

import "time"

// ========== RECEIPT VALIDATION DTOs ==========

// ValidationRequest represents a receipt validation request
type ValidationRequest struct {
	ReceiptData string `json:"receipt_data"`
	AppID       string `json:"app_id"`
	ProductID   string `json:"product_id,omitempty"`
}

// ValidationVerdict is the response body for every validation outcome,
// success or failure.
type ValidationVerdict struct {
	IsValid          bool              `json:"is_valid"`
	Environment      string            `json:"environment,omitempty"`
	SubscriptionInfo *SubscriptionInfo `json:"subscription_info,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
	Error            string            `json:"error,omitempty"`
	StatusCode       int               `json:"status_code,omitempty"`
	Expired          bool              `json:"expired,omitempty"`
	Debug            *UpstreamDebug    `json:"debug,omitempty"`
}

// Detection kinds for SubscriptionInfo
const (
	KindActiveSubscription = "active_subscription"
	KindPastPurchase       = "past_purchase"
	KindPendingRenewal     = "pending_renewal"
	KindSandboxFallback    = "sandbox_fallback"
)

// SubscriptionInfo describes the entitlement that made the receipt valid,
// tagged with the detection method that produced it.
type SubscriptionInfo struct {
	Kind               string `json:"kind"`
	ProductID          string `json:"product_id"`
	Environment        string `json:"environment"`
	TransactionID      string `json:"transaction_id,omitempty"`
	ExpiresAt          string `json:"expires_at,omitempty"`
	PurchasedAt        string `json:"purchased_at,omitempty"`
	IsTrialPeriod      bool   `json:"is_trial_period,omitempty"`
	IsIntroOfferPeriod bool   `json:"is_intro_offer_period,omitempty"`
	IsPending          bool   `json:"is_pending,omitempty"`
	AutoRenewStatus    string `json:"auto_renew_status,omitempty"`
}

// UpstreamDebug reports which upstream response sections were present and
// non-empty. Attached only for sandbox verdicts.
type UpstreamDebug struct {
	HasLatestReceiptInfo  bool `json:"has_latest_receipt_info"`
	HasInAppPurchases     bool `json:"has_in_app_purchases"`
	HasPendingRenewalInfo bool `json:"has_pending_renewal_info"`
}
