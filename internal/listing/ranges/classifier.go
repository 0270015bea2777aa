package ranges

import (
	catalog "github.com/bazarly/listing-service/internal/catalog/domain"
)

// Table maps a catalog node id to the aliases that filter with numeric range
// semantics instead of exact or substring matching. Curated externally.
type Table map[string][]string

// Classifier answers whether an alias filters as a numeric range for a given
// category. It is injected rather than being process-wide state so category
// rules can be swapped and tested per case.
type Classifier struct {
	table map[string]map[string]struct{}
}

func NewClassifier(table Table) *Classifier {
	c := &Classifier{table: make(map[string]map[string]struct{}, len(table))}
	for categoryID, aliases := range table {
		set := make(map[string]struct{}, len(aliases))
		for _, alias := range aliases {
			set[alias] = struct{}{}
		}
		c.table[categoryID] = set
	}
	return c
}

// IsRangeAlias reports whether alias uses range semantics for categoryID.
// A category without an entry treats every alias as non-range.
func (c *Classifier) IsRangeAlias(categoryID, alias string) bool {
	set, ok := c.table[categoryID]
	if !ok {
		return false
	}
	_, ok = set[alias]
	return ok
}

// Mismatches returns the aliases of a schema whose informational range flag
// disagrees with this table. The table is authoritative for filter semantics;
// disagreements are data-quality findings the caller should log.
func (c *Classifier) Mismatches(schema *catalog.CatalogNode) []string {
	var out []string
	for _, def := range schema.Fields {
		if def.IsRange != c.IsRangeAlias(schema.ID, def.Alias) {
			out = append(out, def.Alias)
		}
	}
	return out
}
