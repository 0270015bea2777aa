package ranges

import (
	"testing"

	catalog "github.com/bazarly/listing-service/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassifier_IsRangeAlias(t *testing.T) {
	c := NewClassifier(Table{
		"cars": {"year_of_issue", "mileage"},
	})

	assert.True(t, c.IsRangeAlias("cars", "year_of_issue"))
	assert.True(t, c.IsRangeAlias("cars", "mileage"))
	assert.False(t, c.IsRangeAlias("cars", "transmission"))
	// A category absent from the table treats every alias as non-range.
	assert.False(t, c.IsRangeAlias("boats", "year_of_issue"))
}

func TestClassifier_Mismatches(t *testing.T) {
	c := NewClassifier(Table{
		"cars": {"year_of_issue"},
	})

	schema := &catalog.CatalogNode{
		ID: "cars",
		Fields: []catalog.FieldDef{
			{Alias: "year_of_issue", IsRange: true},
			{Alias: "mileage", IsRange: true},
			{Alias: "transmission", IsRange: false},
		},
	}

	// mileage claims range but the table disagrees; the table wins.
	assert.Equal(t, []string{"mileage"}, c.Mismatches(schema))
}

func TestDefaultTable_LoadsIntoClassifier(t *testing.T) {
	c := NewClassifier(DefaultTable())
	assert.True(t, c.IsRangeAlias("d4fb6083-3112-4c8d-a372-1d323f4d19f3", "mileage"))
}
