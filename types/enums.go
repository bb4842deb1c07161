package types

// Header and content-type constants of the x402 wire surface.
const (
	// HeaderPaymentProof carries the transaction hash asserting that payment
	// was made when a request is replayed.
	HeaderPaymentProof = "x402-payment-proof"

	// HeaderPaymentRequired marks a 402 challenge response.
	HeaderPaymentRequired = "X-Payment-Required"

	// ContentTypeX402 is the content type of a 402 challenge body.
	ContentTypeX402 = "application/vnd.x402+json"
)

// Currency is the currency enum.
type Currency string

const (
	CurrencyUSDC Currency = "USDC"
)

// Network is the network enum.
type Network string

const (
	NetworkBase Network = "base"
)

// PaymentStatus is the ledger-observed status of a submitted transfer.
// Transitions are monotonic: pending goes to confirmed or failed and never back.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusConfirmed PaymentStatus = "confirmed"
	StatusFailed    PaymentStatus = "failed"
)

// PayState is the state of one pay operation.
type PayState string

const (
	PayStateIdle           PayState = "idle"
	PayStateBalanceChecked PayState = "balance-checked"
	PayStateSubmitted      PayState = "submitted"
	PayStatePolling        PayState = "polling"
	PayStateCompleted      PayState = "completed"
	PayStateFailed         PayState = "failed"
)

// FailureReason is the failure reason enum.
type FailureReason string

const (
	FailureReasonInvalidAmount       FailureReason = "invalid_amount"
	FailureReasonWalletNotConfigured FailureReason = "wallet_not_configured"
	FailureReasonInvalidRecipient    FailureReason = "invalid_recipient"
	FailureReasonInsufficientBalance FailureReason = "insufficient_balance"
	FailureReasonSubmissionRejected  FailureReason = "submission_rejected"
	FailureReasonConfirmationFailed  FailureReason = "confirmation_failed"
)
