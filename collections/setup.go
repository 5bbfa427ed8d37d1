package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures all collections exist: projects,
// vendors, project_vendors, rfps, rfp_items, offers, offer_lines,
// comparisons and contracts.
func Setup(app *pocketbase.PocketBase) {
	projects := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "reference_number", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"active", "completed", "on_hold"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "default_vat_rate", Required: false})
		c.Fields.Add(&core.JSONField{Name: "uom_preferences", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	vendors := ensureCollection(app, "vendors", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "vat_number", Required: false})
		c.Fields.Add(&core.TextField{Name: "city", Required: false})
		c.Fields.Add(&core.TextField{Name: "province", Required: false})
		c.Fields.Add(&core.TextField{Name: "country", Required: false})
		c.Fields.Add(&core.TextField{Name: "contact_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "phone", Required: false})
		c.Fields.Add(&core.EmailField{Name: "email", Required: false})
		c.Fields.Add(&core.URLField{Name: "website", Required: false})
		c.Fields.Add(&core.TextField{Name: "notes", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "project_vendors", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "vendor",
			Required:      true,
			CollectionId:  vendors.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})

	rfps := ensureCollection(app, "rfps", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.TextField{Name: "reference_number", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "open", "closed", "awarded"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.DateField{Name: "due_date", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "rfp_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "rfp",
			Required:      true,
			CollectionId:  rfps.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true})
		c.Fields.Add(&core.TextField{Name: "code", Required: false})
		c.Fields.Add(&core.TextField{Name: "description", Required: true})
		c.Fields.Add(&core.NumberField{Name: "qty", Required: true})
		c.Fields.Add(&core.TextField{Name: "uom", Required: true})
		c.Fields.Add(&core.NumberField{Name: "budget_unit_price", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	offers := ensureCollection(app, "offers", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "rfp",
			Required:      true,
			CollectionId:  rfps.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "vendor",
			Required:      true,
			CollectionId:  vendors.Id,
			CascadeDelete: false,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.DateField{Name: "received_date", Required: false})
		c.Fields.Add(&core.BoolField{Name: "vat_inclusive"})
		c.Fields.Add(&core.TextField{Name: "vat_notes", Required: false})
		c.Fields.Add(&core.TextField{Name: "notes", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "offer_lines", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "offer",
			Required:      true,
			CollectionId:  offers.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true})
		c.Fields.Add(&core.TextField{Name: "code", Required: false})
		c.Fields.Add(&core.TextField{Name: "description", Required: true})
		c.Fields.Add(&core.NumberField{Name: "qty", Required: true})
		c.Fields.Add(&core.TextField{Name: "uom", Required: false})
		c.Fields.Add(&core.NumberField{Name: "unit_price", Required: true})
		c.Fields.Add(&core.TextField{Name: "vat_rate", Required: false})
		c.Fields.Add(&core.TextField{Name: "lead_time", Required: false})
		c.Fields.Add(&core.BoolField{Name: "excluded"})
		c.Fields.Add(&core.TextField{Name: "exclusion_reason", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	comparisons := ensureCollection(app, "comparisons", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "rfp",
			Required:      true,
			CollectionId:  rfps.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "comparison_id", Required: true})
		c.Fields.Add(&core.JSONField{Name: "result", Required: true, MaxSize: 5 << 20})
		c.Fields.Add(&core.JSONField{Name: "warnings", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})

	ensureCollection(app, "contracts", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "rfp",
			Required:      true,
			CollectionId:  rfps.Id,
			CascadeDelete: false,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "vendor",
			Required:      true,
			CollectionId:  vendors.Id,
			CascadeDelete: false,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "comparison",
			Required:      false,
			CollectionId:  comparisons.Id,
			CascadeDelete: false,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "total_ex_vat", Required: false})
		c.Fields.Add(&core.NumberField{Name: "total_inc_vat", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "signed", "cancelled"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.DateField{Name: "awarded_date", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
