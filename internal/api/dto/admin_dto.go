package dto

type ListNotificationsRequest struct {
	Limit int `form:"limit"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type ContactRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
