package domain

// Mail delivery status constants
const (
	DeliveryStatusPending = "PENDING"
	DeliveryStatusSending = "SENDING"
	DeliveryStatusSent    = "SENT"
	DeliveryStatusFailed  = "FAILED"
)
