package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// isMultipart reports whether the request carries a multipart form.
func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// bindPayload binds a JSON body or a multipart form into dst. An empty JSON
// body leaves dst untouched.
func (h *HTTPHandler) bindPayload(c *gin.Context, dst any) error {
	if isMultipart(c) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)
		return c.ShouldBind(dst)
	}
	if c.Request.ContentLength == 0 {
		return nil
	}
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// readUpload returns the named multipart file, or nil when none was sent.
func (h *HTTPHandler) readUpload(c *gin.Context, field string) (*service.Upload, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, uploadError(field, "The submitted data was not a file.")
	}
	if header.Size > h.maxUploadBytes {
		return nil, uploadError(field, fmt.Sprintf("File too large, limit is %d MB.", h.maxUploadBytes>>20))
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > h.maxUploadBytes {
		return nil, uploadError(field, fmt.Sprintf("File too large, limit is %d MB.", h.maxUploadBytes>>20))
	}
	return &service.Upload{Filename: header.Filename, Data: data}, nil
}

func uploadError(field, message string) error {
	return &service.ValidationError{Message: "Invalid input.", Fields: map[string]string{field: message}}
}
