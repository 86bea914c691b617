package orders

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentCard           PaymentMethod = "card" // kapalı: oluşturma reddedilir
)

// successRank orders the forward path. Admins may skip ahead (pending ->
// shipped is legal, the UI does not enforce strict sequencing) but never move
// backwards along it.
var successRank = map[OrderStatus]int{
	StatusPending:    0,
	StatusConfirmed:  1,
	StatusProcessing: 2,
	StatusShipped:    3,
	StatusDelivered:  4,
}

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCashOnDelivery, PaymentBankTransfer, PaymentCard:
		return true
	}
	return false
}

// IsTerminal reports whether no further customer-initiated transition is
// allowed from s.
func IsTerminal(s OrderStatus) bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRefunded
}

// CanTransition is the single transition table. Allowed moves:
//
//	pending -> confirmed -> processing -> shipped -> delivered  (ileri atlama serbest)
//	pending|confirmed|processing -> cancelled
//	delivered -> refunded
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	switch to {
	case StatusCancelled:
		return from == StatusPending || from == StatusConfirmed || from == StatusProcessing
	case StatusRefunded:
		return from == StatusDelivered
	}
	fr, okFrom := successRank[from]
	tr, okTo := successRank[to]
	return okFrom && okTo && tr > fr
}

// restoresStock: cancelled ve refunded telafi edici durumlardır; ilk girişte
// stok iadesi tetiklenir.
func restoresStock(to OrderStatus) bool {
	return to == StatusCancelled || to == StatusRefunded
}
