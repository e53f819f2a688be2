package enum

// MovementReason is why a stock movement was recorded
type MovementReason string

const (
	MovementReasonSale   MovementReason = "SALE"
	MovementReasonReturn MovementReason = "RETURN"
)
