package enums

// PaymentStatus tracks where a member is with club dues.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPaid,
	PaymentStatusPending,
	PaymentStatusOverdue,
}

func (v PaymentStatus) String() string {
	return string(v)
}

func (v PaymentStatus) IsValid() bool {
	return isKnown(v, validPaymentStatuses)
}

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	return parse(value, "payment status", validPaymentStatuses)
}
