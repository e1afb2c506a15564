package domain

// Delivery is a mail_deliveries row claimed for sending
type Delivery struct {
	ID         string
	Recipient  string
	Subject    string
	HTMLBody   string
	EventType  string
	Status     string
	WorkerID   string
	RetryCount int
	MaxRetries int
}

// DeliveryMessage represents a delivery message from RabbitMQ
type DeliveryMessage struct {
	DeliveryID  string `json:"delivery_id"`
	DeliveryTag uint64 `json:"-"`
}
