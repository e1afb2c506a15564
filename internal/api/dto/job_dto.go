package dto

import (
	"encoding/json"
	"fmt"

	"github.com/cuongbtq/hirenest-be/internal/api/model"
)

// SkillList accepts skills as a JSON array or as a comma separated string
type SkillList []string

func (s *SkillList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("skills must be a list or a string")
	}
	*s = SkillList{single}
	return nil
}

type CreateJobRequest struct {
	Title          string    `json:"title" form:"title"`
	Company        string    `json:"company" form:"company"`
	Location       string    `json:"location" form:"location"`
	Description    string    `json:"description" form:"description"`
	Skills         SkillList `json:"skills" form:"skills"`
	Type           string    `json:"type" form:"type"`
	Salary         string    `json:"salary" form:"salary"`
	CompanyLogoURL string    `json:"companyLogoUrl" form:"companyLogoUrl"`
}

// UpdateJobRequest is a partial update; absent fields stay unchanged
type UpdateJobRequest struct {
	Title          *string    `json:"title" form:"title"`
	Company        *string    `json:"company" form:"company"`
	Location       *string    `json:"location" form:"location"`
	Description    *string    `json:"description" form:"description"`
	Skills         *SkillList `json:"skills" form:"skills"`
	Type           *string    `json:"type" form:"type"`
	Salary         *string    `json:"salary" form:"salary"`
	CompanyLogoURL *string    `json:"companyLogoUrl" form:"companyLogoUrl"`
	IsActive       *bool      `json:"isActive" form:"isActive"`
}

type ListJobsRequest struct {
	Query    string `form:"q"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListJobsResponse struct {
	Jobs       []model.Job `json:"jobs"`
	NextCursor string      `json:"nextCursor,omitempty"`
}
