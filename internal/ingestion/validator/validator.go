// Package validator checks upload requests for well-formedness before they
// reach the publisher, matching the length constraints spec.md §3 implies
// for document fields (title, abstract, body all bounded; doc-ID ≤19 bytes).
package validator

import (
	"fmt"
	"strings"

	"github.com/scisearch/engine/internal/docid"
	"github.com/scisearch/engine/internal/ingestion"
)

const (
	maxTitleLength    = 1024
	maxAbstractLength = 8192
	maxBodyLength     = 1 << 20
	minBodyLength     = 1
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateUploadRequest checks field lengths and returns a ValidationError
// describing every violation found, or nil if the request is acceptable.
func ValidateUploadRequest(req *ingestion.UploadRequest) error {
	errs := make(map[string]string)

	if req.DocID != "" && len(req.DocID) > docid.MaxLen {
		errs["doc_id"] = fmt.Sprintf("document-ID must be at most %d bytes", docid.MaxLen)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs["title"] = "title is required"
	} else if len(title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}

	if len(req.Abstract) > maxAbstractLength {
		errs["abstract"] = fmt.Sprintf("abstract must be at most %d characters", maxAbstractLength)
	}

	body := strings.TrimSpace(req.Body)
	if len(body) < minBodyLength {
		errs["body"] = "body is required and must not be empty"
	} else if len(body) > maxBodyLength {
		errs["body"] = fmt.Sprintf("body must be at most %d characters", maxBodyLength)
	}

	if req.IdempotencyKey != "" && len(req.IdempotencyKey) > 255 {
		errs["idempotency_key"] = "idempotency key must be at most 255 characters"
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
