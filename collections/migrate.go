package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
)

// MigrateProjectVATDefaults backfills default_vat_rate on projects that were
// created before the field existed (or saved with a zero rate). Safe to call
// on every startup -- returns early if nothing to migrate.
func MigrateProjectVATDefaults(app *pocketbase.PocketBase, defaultVATRate float64) error {
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("migrate: could not find projects collection: %w", err)
	}

	missing, err := app.FindRecordsByFilter(
		projectsCol,
		"default_vat_rate = 0",
		"",
		0,
		0,
		nil,
	)
	if err != nil {
		return fmt.Errorf("migrate: could not query projects: %w", err)
	}

	if len(missing) == 0 {
		return nil
	}

	log.Printf("migrate: found %d project(s) without a default VAT rate -- backfilling %.0f%%...\n", len(missing), defaultVATRate)

	for _, project := range missing {
		project.Set("default_vat_rate", defaultVATRate)
		if err := app.Save(project); err != nil {
			log.Printf("migrate: failed to backfill VAT rate for project %q (%s): %v\n", project.GetString("name"), project.Id, err)
			continue
		}
	}

	log.Println("migrate: project VAT default backfill complete.")
	return nil
}
