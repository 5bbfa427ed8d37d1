package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase"
)

// formatRFPNumber constructs the RFP reference string from components.
// Uses "-" as separator to avoid conflicts with project references that contain "/".
func formatRFPNumber(projectRef string, year, sequence int) string {
	return fmt.Sprintf("RFP-%s-%d-%03d", projectRef, year, sequence)
}

// GenerateRFPNumber creates the next RFP reference for a project.
// Format: RFP-{project_ref}-{year}-{sequence}
// - project_ref: project's reference_number (falls back to project ID if empty)
// - sequence: 3-digit zero-padded, per project per calendar year
func GenerateRFPNumber(app *pocketbase.PocketBase, projectID string, now time.Time) (string, error) {
	project, err := app.FindRecordById("projects", projectID)
	if err != nil {
		return "", fmt.Errorf("project not found: %w", err)
	}

	projectRef := project.GetString("reference_number")
	if projectRef == "" {
		projectRef = projectID
	}

	year := now.Year()
	prefix := fmt.Sprintf("RFP-%s-%d-", projectRef, year)

	existing, err := app.FindRecordsByFilter(
		"rfps",
		"project = {:projectId} && reference_number ~ {:prefix}",
		"",
		0,
		0,
		map[string]any{
			"projectId": projectID,
			"prefix":    prefix + "%",
		},
	)
	if err != nil {
		// If collection doesn't exist or no records, start at 1
		existing = nil
	}

	return formatRFPNumber(projectRef, year, len(existing)+1), nil
}
