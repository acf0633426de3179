package domain

// Kind groups errors by the part of the lifecycle that rejected the call.
type Kind string

const (
	KindCapacity   Kind = "capacity"
	KindScheduling Kind = "scheduling"
	KindSettlement Kind = "settlement"
	KindAccess     Kind = "access"
	KindLookup     Kind = "lookup"
	KindTransfer   Kind = "transfer"
	KindPayment    Kind = "payment"
	KindValidation Kind = "validation"
)

// Error is a rejected ledger operation. Code is stable and safe to branch on;
// it is also what the HTTP layer sends to clients.
type Error struct {
	Code string
	Kind Kind
}

func (e *Error) Error() string {
	return e.Code
}

func newError(kind Kind, code string) *Error {
	return &Error{Code: code, Kind: kind}
}

var (
	ErrCapacityExceeded  = newError(KindCapacity, "CapacityExceeded")
	ErrEmptyReceiverList = newError(KindCapacity, "EmptyReceiverList")

	ErrNotFullyMinted     = newError(KindScheduling, "NotFullyMinted")
	ErrAlreadyFunded      = newError(KindScheduling, "AlreadyFunded")
	ErrInsufficientNotice = newError(KindScheduling, "InsufficientNotice")
	ErrWindowTooShort     = newError(KindScheduling, "WindowTooShort")

	ErrWindowNotActive = newError(KindSettlement, "WindowNotActive")
	ErrNothingDue      = newError(KindSettlement, "NothingDue")

	ErrUnauthorized   = newError(KindAccess, "Unauthorized")
	ErrContractPaused = newError(KindAccess, "ContractPaused")
	ErrNotPaused      = newError(KindAccess, "NotPaused")
	ErrFeeTooHigh     = newError(KindAccess, "FeeTooHigh")

	ErrNonexistentToken = newError(KindLookup, "NonexistentToken")
	ErrUnknownCampaign  = newError(KindLookup, "UnknownCampaign")

	ErrTransferSuspended = newError(KindTransfer, "TransferSuspended")

	ErrDirectPaymentRejected = newError(KindPayment, "DirectPaymentRejected")
	ErrInvalidAmount         = newError(KindPayment, "InvalidAmount")

	ErrInvalidCapacity = newError(KindValidation, "InvalidCapacity")
	ErrInvalidWindow   = newError(KindValidation, "InvalidWindow")
	ErrInvalidAccount  = newError(KindValidation, "InvalidAccount")
)
