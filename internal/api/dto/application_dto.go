package dto

type ApplyRequest struct {
	CoverLetter string `json:"coverLetter" form:"coverLetter"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type RecruiterApplicationsRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
}
