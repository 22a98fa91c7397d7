package constants

// Order status constants
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
)

// Order kind constants
const (
	OrderKindLight   = "light"
	OrderKindRegular = "regular"
)

// Payment mode constants
const (
	PaymentModeFree     = "free"
	PaymentModeCheckout = "checkout"
)

// Quantity type constants
const (
	QuantityTypeSingle  = "single"
	QuantityTypeLimited = "limited"
	QuantityTypeOpen    = "open"
)

// Batch frequency constants
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Label mode constants
const (
	LabelModeNone = "none"
	LabelModeDate = "date"
	LabelModeDay  = "day"
)

// Failure reason constants recorded on orders
const (
	FailReasonEmailSend     = "claim_email_send_failed"
	FailReasonMint          = "mint_failed"
	FailReasonPayment       = "payment_failed"
	FailReasonSoldOut       = "sold_out"
	FailReasonWindowClosed  = "window_closed"
	FailReasonAdminOverride = "admin_override"
)

// Queue constants
const (
	QueueDefault     = "default"
	TaskReceiptEmail = "order:receipt_email"
)

// Cache defaults
const (
	RedisPrefixDefault = "df"
)

// Currency default
const (
	SiteCurrencyDefault = "USD"
)
