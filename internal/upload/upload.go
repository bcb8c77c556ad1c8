// Package upload reads CV submissions from inbound multipart requests and
// inspects the uploaded PDF.
package upload

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// Form field names shared by the browser form, the proxy, and the backend.
const (
	FieldCVFile         = "cv_file"
	FieldJobDescription = "job_description"
)

// Messages for requests that never reach field validation.
const (
	MsgTooLarge     = "Uploaded file is too large"
	MsgNotMultipart = "Request must be multipart/form-data"
	MsgUnreadable   = "Could not read the uploaded form"
)

// memoryLimit is how much of a multipart body is kept in memory before
// spilling file parts to disk.
const memoryLimit = 8 << 20

// ParseSubmission reads cv_file and job_description from a multipart request
// and validates them. Validation failures are *types.ValidationError; body
// problems are *RequestError.
func ParseSubmission(w http.ResponseWriter, r *http.Request, maxBytes int64) (*types.Submission, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		return nil, classifyParseError(err)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	sub := &types.Submission{
		JobDescription: r.PostFormValue(FieldJobDescription),
	}

	file, header, err := r.FormFile(FieldCVFile)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Reported by Validate with the other field problems.
	case err != nil:
		return nil, &RequestError{StatusCode: http.StatusBadRequest, Message: MsgUnreadable, Cause: err}
	default:
		defer func() { _ = file.Close() }()
		content, err := io.ReadAll(file)
		if err != nil {
			return nil, classifyParseError(err)
		}
		sub.FileName = filepath.Base(header.Filename)
		sub.Content = content
	}

	if err := sub.Validate(); err != nil {
		return nil, err
	}
	return sub, nil
}

// ReadSubmission builds a submission from a file on disk, for the CLI.
func ReadSubmission(cvPath, jobDescription string) (*types.Submission, error) {
	content, err := os.ReadFile(cvPath)
	if err != nil {
		return nil, &RequestError{StatusCode: http.StatusBadRequest, Message: "failed to read CV file", Cause: err}
	}

	sub := &types.Submission{
		FileName:       filepath.Base(cvPath),
		Content:        content,
		JobDescription: jobDescription,
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	return sub, nil
}

func classifyParseError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return &RequestError{StatusCode: http.StatusRequestEntityTooLarge, Message: MsgTooLarge, Cause: err}
	case errors.Is(err, http.ErrNotMultipart):
		return &RequestError{StatusCode: http.StatusBadRequest, Message: MsgNotMultipart, Cause: err}
	default:
		return &RequestError{StatusCode: http.StatusBadRequest, Message: MsgUnreadable, Cause: err}
	}
}
