// Package catalog loads the read-only recommendation catalog: education
// items and partner offers tagged with the personas they serve. The catalog
// is reference data; it is loaded once per pipeline run and never mutated.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Eligibility carries a partner offer's minimum requirements. Zero values
// mean no requirement.
type Eligibility struct {
	MinIncome      float64 `json:"min_income,omitempty"`
	MinCreditScore int     `json:"min_credit_score,omitempty"`
}

// Item is one catalog entry, education or partner offer.
type Item struct {
	ID       string               `json:"id"`
	Type     domain.CandidateType `json:"type"`
	Title    string               `json:"title"`
	Body     string               `json:"body"`
	Personas []domain.PersonaID   `json:"personas"`
	// ProductCategory groups partner offers ("credit_card", "savings_account",
	// "personal_loan", ...) for blocklist and already-held checks.
	ProductCategory string      `json:"product_category,omitempty"`
	Eligibility     Eligibility `json:"eligibility,omitempty"`
}

// Catalog is the immutable item collection.
type Catalog struct {
	items []Item
}

// New builds a catalog from a fixed item list. Used by tests and loaders.
func New(items []Item) *Catalog {
	copied := make([]Item, len(items))
	copy(copied, items)
	return &Catalog{items: copied}
}

// LoadFromFile reads a catalog from a local JSON file.
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadFromFile: reading %s: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var payload struct {
		Items []Item `json:"items"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse: unmarshal catalog: %w", err)
	}
	if len(payload.Items) == 0 {
		return nil, fmt.Errorf("parse: catalog has no items")
	}
	return New(payload.Items), nil
}

// Get returns the item with the given ID.
func (c *Catalog) Get(id string) (Item, bool) {
	for _, item := range c.items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Len returns the total item count.
func (c *Catalog) Len() int {
	return len(c.items)
}

// ForPersona returns the items of the given type tagged for the persona, in
// catalog order.
func (c *Catalog) ForPersona(id domain.PersonaID, typ domain.CandidateType) []Item {
	var out []Item
	for _, item := range c.items {
		if item.Type != typ {
			continue
		}
		for _, p := range item.Personas {
			if p == id {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
