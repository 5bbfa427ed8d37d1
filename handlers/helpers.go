package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

// apiError writes a JSON error body with the given status.
func apiError(e *core.RequestEvent, status int, message string) error {
	return e.JSON(status, map[string]string{"error": message})
}

// notFound is the standard 404 response.
func notFound(e *core.RequestEvent, what string) error {
	return apiError(e, http.StatusNotFound, what+" not found")
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}
