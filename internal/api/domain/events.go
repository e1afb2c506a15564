package domain

// Notification and lifecycle event types
const (
	EventApplicationCreated  = "application_created"
	EventApplicationAccepted = "application_accepted"
	EventApplicationStatus   = "application_status"
	EventJobCreated          = "job_created"
	EventJobApproved         = "job_approved"
	EventContactMessage      = "contact_message"
	EventFeedback            = "feedback"
)

// Realtime event names
const (
	RealtimeNotification      = "notification"
	RealtimeAdminNotification = "admin:notification"
	RealtimeApplicationNew    = "application:created"
	RealtimeApplicationStatus = "application:status"
	RealtimeJobApproved       = "job:approved"
)

// NotifyRoleAdmin is the only audience of persisted notifications
const NotifyRoleAdmin = "admin"
