package dto

import "github.com/hugh/go-grc/internal/api/validation"

// MaxFreeText caps descriptions and evidence.
const MaxFreeText = 5000

func cleanText(s string) string {
	return validation.CleanText(s, MaxFreeText)
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

// ListResponse wraps collection responses.
type ListResponse struct {
	Data  interface{} `json:"data"`
	Total int         `json:"total"`
}

type enum interface {
	~string
	Valid() bool
}

func checkEnum[T enum](errors map[string]string, field string, v T) {
	if !v.Valid() {
		errors[field] = "Invalid " + field + " \"" + string(v) + "\""
	}
}
