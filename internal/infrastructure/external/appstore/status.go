package appstore

// verifyReceipt status codes. Status 0 means the receipt was accepted for
// further inspection; everything else is a rejection by the upstream
// authority.
const (
	StatusOK = 0

	StatusInvalidJSON             = 21000
	StatusInvalidReceiptData      = 21002
	StatusNotAuthenticated        = 21003
	StatusInvalidSharedSecret     = 21004
	StatusServerUnavailable       = 21005
	StatusSubscriptionExpired     = 21006
	StatusSandboxReceiptOnProd    = 21007
	StatusProductionReceiptOnTest = 21008
	StatusInternalError           = 21009
	StatusAccountNotFound         = 21010
)

var statusMessages = map[int]string{
	StatusInvalidJSON:             "the request was not a valid JSON object",
	StatusInvalidReceiptData:      "the receipt data was malformed or missing",
	StatusNotAuthenticated:        "the receipt could not be authenticated",
	StatusInvalidSharedSecret:     "the shared secret does not match",
	StatusServerUnavailable:       "the receipt server is currently unavailable",
	StatusSubscriptionExpired:     "subscription expired",
	StatusSandboxReceiptOnProd:    "sandbox receipt sent to the production environment",
	StatusProductionReceiptOnTest: "production receipt sent to the test environment",
	StatusInternalError:           "internal data access error at the receipt server",
	StatusAccountNotFound:         "the account could not be found or has been deleted",
}

// StatusMessage maps an upstream status code to a human-readable meaning.
// Codes outside the documented table map to a generic message.
func StatusMessage(code int) string {
	if msg, ok := statusMessages[code]; ok {
		return msg
	}
	return "unknown error"
}
