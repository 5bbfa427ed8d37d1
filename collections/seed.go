package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type rfpItemDef struct {
	sortOrder       int
	code            string
	description     string
	qty             float64
	uom             string
	budgetUnitPrice float64
}

type vendorDef struct {
	name        string
	vatNumber   string
	city        string
	province    string
	contactName string
	phone       string
	email       string
	website     string
}

type offerLineDef struct {
	sortOrder   int
	code        string
	description string
	qty         float64
	uom         string
	unitPrice   float64
	vatRate     string
	leadTime    string
	excluded    bool
	reason      string
}

type offerDef struct {
	vendorName   string
	receivedDate string
	vatInclusive bool
	vatNotes     string
	lines        []offerLineDef
}

// Seed populates the collections with a realistic residential construction
// project: one project, three vendors, an RFP for foundation and slab works
// and three competing offers. It is safe to call on every startup because it
// returns early if any project records already exist.
func Seed(app *pocketbase.PocketBase, defaultVATRate float64) error {
	// ── idempotency: skip if projects already exist ──────────────────
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("seed: could not find projects collection: %w", err)
	}
	existing, err := app.FindAllRecords(projectsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query projects: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: projects collection is empty – inserting seed data …")

	// ── lookup helper collections ────────────────────────────────────
	vendorsCol, err := app.FindCollectionByNameOrId("vendors")
	if err != nil {
		return fmt.Errorf("seed: could not find vendors collection: %w", err)
	}
	projectVendorsCol, err := app.FindCollectionByNameOrId("project_vendors")
	if err != nil {
		return fmt.Errorf("seed: could not find project_vendors collection: %w", err)
	}
	rfpsCol, err := app.FindCollectionByNameOrId("rfps")
	if err != nil {
		return fmt.Errorf("seed: could not find rfps collection: %w", err)
	}
	rfpItemsCol, err := app.FindCollectionByNameOrId("rfp_items")
	if err != nil {
		return fmt.Errorf("seed: could not find rfp_items collection: %w", err)
	}
	offersCol, err := app.FindCollectionByNameOrId("offers")
	if err != nil {
		return fmt.Errorf("seed: could not find offers collection: %w", err)
	}
	offerLinesCol, err := app.FindCollectionByNameOrId("offer_lines")
	if err != nil {
		return fmt.Errorf("seed: could not find offer_lines collection: %w", err)
	}

	// ── helper: create vendor ────────────────────────────────────────
	createVendor := func(d vendorDef) (*core.Record, error) {
		r := core.NewRecord(vendorsCol)
		r.Set("name", d.name)
		r.Set("vat_number", d.vatNumber)
		r.Set("city", d.city)
		r.Set("province", d.province)
		r.Set("country", "Italia")
		r.Set("contact_name", d.contactName)
		r.Set("phone", d.phone)
		r.Set("email", d.email)
		if d.website != "" {
			r.Set("website", d.website)
		}
		if err := app.Save(r); err != nil {
			return nil, fmt.Errorf("seed: save vendor %q: %w", d.name, err)
		}
		return r, nil
	}

	// ── helper: link vendor to project ───────────────────────────────
	linkVendorToProject := func(projectID, vendorID string) error {
		r := core.NewRecord(projectVendorsCol)
		r.Set("project", projectID)
		r.Set("vendor", vendorID)
		return app.Save(r)
	}

	// ── helper: create RFP item ──────────────────────────────────────
	createRFPItem := func(rfpID string, d rfpItemDef) error {
		r := core.NewRecord(rfpItemsCol)
		r.Set("rfp", rfpID)
		r.Set("sort_order", d.sortOrder)
		if d.code != "" {
			r.Set("code", d.code)
		}
		r.Set("description", d.description)
		r.Set("qty", d.qty)
		r.Set("uom", d.uom)
		r.Set("budget_unit_price", d.budgetUnitPrice)
		return app.Save(r)
	}

	// ── helper: create offer with lines ──────────────────────────────
	createOffer := func(rfpID, vendorID string, d offerDef) error {
		r := core.NewRecord(offersCol)
		r.Set("rfp", rfpID)
		r.Set("vendor", vendorID)
		r.Set("received_date", d.receivedDate)
		r.Set("vat_inclusive", d.vatInclusive)
		if d.vatNotes != "" {
			r.Set("vat_notes", d.vatNotes)
		}
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save offer from %q: %w", d.vendorName, err)
		}

		for _, li := range d.lines {
			lr := core.NewRecord(offerLinesCol)
			lr.Set("offer", r.Id)
			lr.Set("sort_order", li.sortOrder)
			if li.code != "" {
				lr.Set("code", li.code)
			}
			lr.Set("description", li.description)
			lr.Set("qty", li.qty)
			lr.Set("uom", li.uom)
			lr.Set("unit_price", li.unitPrice)
			if li.vatRate != "" {
				lr.Set("vat_rate", li.vatRate)
			}
			if li.leadTime != "" {
				lr.Set("lead_time", li.leadTime)
			}
			lr.Set("excluded", li.excluded)
			if li.reason != "" {
				lr.Set("exclusion_reason", li.reason)
			}
			if err := app.Save(lr); err != nil {
				return fmt.Errorf("seed: save offer line %q: %w", li.description, err)
			}
		}
		return nil
	}

	// ── project ──────────────────────────────────────────────────────
	p := core.NewRecord(projectsCol)
	p.Set("name", "Residenza Le Torri — Palazzina A")
	p.Set("client_name", "Immobiliare Borgo Nuovo S.r.l.")
	p.Set("reference_number", "RES-TORRE-A")
	p.Set("status", "active")
	p.Set("default_vat_rate", defaultVATRate)
	p.Set("uom_preferences", map[string]string{})
	if err := app.Save(p); err != nil {
		return fmt.Errorf("seed: save project: %w", err)
	}

	// ── vendors ──────────────────────────────────────────────────────
	vendorDefs := []vendorDef{
		{
			name: "Alfa Costruzioni S.r.l.", vatNumber: "IT01234567890",
			city: "Bergamo", province: "BG",
			contactName: "Marco Rossi", phone: "+39 035 123456",
			email: "preventivi@alfacostruzioni.it", website: "https://www.alfacostruzioni.it",
		},
		{
			name: "Beta Impianti S.p.A.", vatNumber: "IT09876543210",
			city: "Brescia", province: "BS",
			contactName: "Laura Bianchi", phone: "+39 030 654321",
			email: "commerciale@betaimpianti.it",
		},
		{
			name: "Gamma Edilizia S.n.c.", vatNumber: "IT05555566666",
			city: "Milano", province: "MI",
			contactName: "Giuseppe Verdi", phone: "+39 02 789012",
			email: "info@gammaedilizia.it",
		},
	}

	vendorIDs := make(map[string]string, len(vendorDefs))
	for _, vd := range vendorDefs {
		v, err := createVendor(vd)
		if err != nil {
			return err
		}
		vendorIDs[vd.name] = v.Id
		if err := linkVendorToProject(p.Id, v.Id); err != nil {
			return fmt.Errorf("seed: link vendor %q: %w", vd.name, err)
		}
	}

	// ── RFP: foundation and slab works ───────────────────────────────
	rfp := core.NewRecord(rfpsCol)
	rfp.Set("project", p.Id)
	rfp.Set("title", "Opere di fondazione e solai")
	rfp.Set("reference_number", "RFP-RES-TORRE-A-2026-001")
	rfp.Set("status", "open")
	rfp.Set("due_date", "2026-09-30 12:00:00.000Z")
	if err := app.Save(rfp); err != nil {
		return fmt.Errorf("seed: save rfp: %w", err)
	}

	rfpItems := []rfpItemDef{
		{sortOrder: 1, code: "F.01", description: "Vespaio areato", qty: 100, uom: "mq", budgetUnitPrice: 290},
		{sortOrder: 2, code: "F.02", description: "Massetto", qty: 100, uom: "mq", budgetUnitPrice: 78},
		{sortOrder: 3, code: "F.03", description: "Isolamento", qty: 100, uom: "mq", budgetUnitPrice: 48},
	}
	for _, it := range rfpItems {
		if err := createRFPItem(rfp.Id, it); err != nil {
			return fmt.Errorf("seed: save rfp item %q: %w", it.description, err)
		}
	}

	// ── offers ───────────────────────────────────────────────────────
	offerDefs := []offerDef{
		{
			vendorName: "Alfa Costruzioni S.r.l.", receivedDate: "2026-08-20 09:30:00.000Z",
			lines: []offerLineDef{
				{sortOrder: 1, code: "F.01", description: "Vespaio areato", qty: 100, uom: "mq", unitPrice: 270, vatRate: "22", leadTime: "20 giorni"},
				{sortOrder: 2, code: "F.02", description: "Massetto", qty: 100, uom: "mq", unitPrice: 70, vatRate: "22", leadTime: "10 giorni"},
				{sortOrder: 3, code: "F.03", description: "Isolamento", qty: 100, uom: "mq", unitPrice: 40, vatRate: "22", leadTime: "2 settimane"},
			},
		},
		{
			vendorName: "Beta Impianti S.p.A.", receivedDate: "2026-08-22 14:15:00.000Z",
			vatNotes: "IVA 22% esclusa",
			lines: []offerLineDef{
				{sortOrder: 1, code: "F.01", description: "Vespaio areato", qty: 100, uom: "mq", unitPrice: 280, leadTime: "3 settimane"},
				{sortOrder: 2, code: "F.02", description: "Massetto", qty: 100, uom: "mq", unitPrice: 75, leadTime: "15 giorni"},
				{sortOrder: 3, code: "F.03", description: "Isolamento", qty: 100, uom: "mq", unitPrice: 45, leadTime: "15 giorni"},
			},
		},
		{
			vendorName: "Gamma Edilizia S.n.c.", receivedDate: "2026-08-25 11:00:00.000Z",
			lines: []offerLineDef{
				{sortOrder: 1, code: "F.01", description: "Vespaio areato", qty: 100, uom: "mq", unitPrice: 300, vatRate: "22", leadTime: "1 mese"},
				{sortOrder: 2, code: "F.02", description: "Massetto", qty: 100, uom: "mq", unitPrice: 80, vatRate: "22", leadTime: "20 giorni"},
				{sortOrder: 3, code: "F.03", description: "Isolamento", qty: 100, uom: "mq", unitPrice: 50, vatRate: "22", excluded: true, reason: "Materiale non conforme al capitolato"},
			},
		},
	}
	for _, od := range offerDefs {
		if err := createOffer(rfp.Id, vendorIDs[od.vendorName], od); err != nil {
			return err
		}
	}

	log.Println("seed: all seed data inserted successfully (1 project, 3 vendors, 1 RFP, 3 offers)")
	return nil
}
