package tiktok

import "fmt"

// APIError represents a well-formed TikTok error object. The platform
// uses HTTP success to mean "request was parsed", so a non-"ok" error
// code must be surfaced even on a 2xx status.
type APIError struct {
	Code    string
	Message string
	LogID   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tiktok: remote error %s: %s", e.Code, e.Message)
}
