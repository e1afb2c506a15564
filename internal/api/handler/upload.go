package handler

import (
	"errors"
	"net/http"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/files"
	"github.com/gin-gonic/gin"
)

// readUpload returns the file sent in field, or nil when the request is not
// multipart or carries no such file
func readUpload(c *gin.Context, field string, limit int64) (*files.Upload, error) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, nil
	}

	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.InvalidInput("invalid %s upload", field)
	}

	return files.FromMultipart(fh, limit)
}
