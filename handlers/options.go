package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"procuretrack/services"
)

// HandleOptions exposes the dropdown values the dashboard needs to build
// RFP item and offer forms.
func HandleOptions(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return e.JSON(http.StatusOK, map[string]any{
			"uomOptions":      services.CanonicalUOMOptions,
			"vatRateOptions":  services.VATRateOptions,
			"projectStatuses": ProjectStatusOptions,
			"rfpStatuses":     RFPStatusOptions,
			"defaultVatRate":  services.DefaultVATRate,
			"defaultWeights":  services.DefaultWeights(),
		})
	}
}
