package usecase

import "github.com/bazarly/listing-service/internal/listing/validation"

// ValidationError aggregates every validation finding of a publish or edit
// request. It is a value the HTTP layer serializes verbatim with status 400.
type ValidationError struct {
	FormData   map[string]string  `json:"form_data,omitempty"`
	Fields     *validation.Result `json:"fields,omitempty"`
	Location   map[string]string  `json:"location,omitempty"`
	Categories string             `json:"categories,omitempty"`
}

func (e *ValidationError) Error() string {
	return "listing validation failed"
}

func (e *ValidationError) empty() bool {
	return len(e.FormData) == 0 &&
		(e.Fields == nil || e.Fields.OK()) &&
		len(e.Location) == 0 &&
		e.Categories == ""
}
