package main

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"procuretrack/collections"
	"procuretrack/handlers"
	"procuretrack/services"
)

// defaultVATRateFromEnv reads DEFAULT_VAT_RATE, falling back to the Italian
// standard rate when unset or invalid.
func defaultVATRateFromEnv() float64 {
	raw := os.Getenv("DEFAULT_VAT_RATE")
	if raw == "" {
		return services.DefaultVATRate
	}
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || rate < 0 || rate > 100 {
		log.Printf("config: ignoring invalid DEFAULT_VAT_RATE %q", raw)
		return services.DefaultVATRate
	}
	return rate
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}
	defaultVATRate := defaultVATRateFromEnv()

	app := pocketbase.New()

	// Create collections, seed demo data and run migrations on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app, defaultVATRate); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateProjectVATDefaults(app, defaultVATRate); err != nil {
			log.Printf("Warning: VAT default migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Project CRUD ─────────────────────────────────────────
		se.Router.GET("/projects", handlers.HandleProjectList(app))
		se.Router.POST("/projects", handlers.HandleProjectCreate(app))
		se.Router.GET("/projects/{id}", handlers.HandleProjectView(app))
		se.Router.PATCH("/projects/{id}", handlers.HandleProjectUpdate(app))
		se.Router.DELETE("/projects/{id}", handlers.HandleProjectDelete(app))

		// ── Vendors (global) ─────────────────────────────────────
		se.Router.GET("/vendors", handlers.HandleVendorList(app))
		se.Router.POST("/vendors", handlers.HandleVendorCreate(app))
		se.Router.DELETE("/vendors/{id}", handlers.HandleVendorDelete(app))

		// ── Vendors (project-scoped) ─────────────────────────────
		se.Router.GET("/projects/{projectId}/vendors", handlers.HandleVendorList(app))
		se.Router.POST("/projects/{projectId}/vendors/{id}/link", handlers.HandleVendorLink(app))
		se.Router.DELETE("/projects/{projectId}/vendors/{id}/link", handlers.HandleVendorUnlink(app))

		// ── RFPs and items ───────────────────────────────────────
		se.Router.GET("/projects/{projectId}/rfps", handlers.HandleRFPList(app))
		se.Router.POST("/projects/{projectId}/rfps", handlers.HandleRFPCreate(app))
		se.Router.GET("/rfps/{id}", handlers.HandleRFPView(app))
		se.Router.POST("/rfps/{id}/items", handlers.HandleRFPItemAdd(app))
		se.Router.DELETE("/rfps/{id}/items/{itemId}", handlers.HandleRFPItemDelete(app))

		// ── Offers ───────────────────────────────────────────────
		se.Router.GET("/rfps/{id}/offers", handlers.HandleOfferList(app))
		se.Router.POST("/rfps/{id}/offers", handlers.HandleOfferSubmit(app))
		se.Router.DELETE("/offers/{offerId}", handlers.HandleOfferDelete(app))

		// ── Comparison, export, award ────────────────────────────
		se.Router.POST("/projects/{projectId}/rfps/{id}/compare", handlers.HandleCompare(app))
		se.Router.GET("/comparisons/{id}", handlers.HandleComparisonView(app))
		se.Router.GET("/comparisons/{id}/export/excel", handlers.HandleComparisonExportExcel(app))
		se.Router.GET("/comparisons/{id}/export/pdf", handlers.HandleComparisonExportPDF(app))
		se.Router.POST("/comparisons/{id}/award", handlers.HandleComparisonAward(app))

		// ── Form options ─────────────────────────────────────────
		se.Router.GET("/options", handlers.HandleOptions(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
