package domain

// FieldType is the closed set of additional-field kinds a catalog node can declare.
type FieldType string

const (
	FieldSelect        FieldType = "select"
	FieldCheckboxes    FieldType = "checkboxes"
	FieldColor         FieldType = "color"
	FieldText          FieldType = "text"
	FieldNumber        FieldType = "number"
	FieldCheckbox      FieldType = "checkbox"
	FieldSelectRequest FieldType = "select_request"
)

// LocalizedText maps a locale code to a display string.
type LocalizedText map[string]string

// ColorOption is one entry of a color palette. Name is the value users submit,
// Value is the hex code the UI renders.
type ColorOption struct {
	Name  string `json:"name" bson:"name"`
	Value string `json:"value" bson:"value"`
}

// Properties carries the type-specific part of a field definition. Only the
// fields relevant for the declared FieldType are populated:
//
//	select:         Options
//	text:           Measure
//	checkboxes:     Checks
//	number:         Measure, NumberType, Min, Max
//	select_request: URL, Dependencies
//	color:          Colors
type Properties struct {
	Options      []string      `json:"options,omitempty" bson:"options,omitempty"`
	Measure      string        `json:"measure,omitempty" bson:"measure,omitempty"`
	Checks       []string      `json:"checks,omitempty" bson:"checks,omitempty"`
	NumberType   string        `json:"type,omitempty" bson:"type,omitempty"`
	Min          float64       `json:"min,omitempty" bson:"min,omitempty"`
	Max          float64       `json:"max,omitempty" bson:"max,omitempty"`
	URL          string        `json:"url,omitempty" bson:"url,omitempty"`
	Dependencies []string      `json:"dependencies,omitempty" bson:"dependencies,omitempty"`
	Colors       []ColorOption `json:"colors,omitempty" bson:"colors,omitempty"`
}

// FieldDef declares one additional field of a catalog node.
type FieldDef struct {
	Alias        string     `json:"alias" bson:"alias"`
	Title        string     `json:"title" bson:"title"`
	Required     bool       `json:"required" bson:"required"`
	Editable     bool       `json:"edit" bson:"edit"`
	ShowInFilter bool       `json:"show_filter" bson:"show_filter"`
	// IsRange is informational only; filter semantics are decided by the
	// range-alias table, not this flag.
	IsRange      bool       `json:"range" bson:"range"`
	Dependencies []string   `json:"dependencies,omitempty" bson:"dependencies,omitempty"`
	Type         FieldType  `json:"type" bson:"type"`
	Properties   Properties `json:"properties" bson:"properties"`
}

// CatalogNode is one node of the category tree together with its field schema.
type CatalogNode struct {
	ID            string         `json:"id"`
	ParentID      string         `json:"parent_id,omitempty"`
	Path          LocalizedText  `json:"path"`
	Title         LocalizedText  `json:"title"`
	IsPublished   bool           `json:"is_publish"`
	DynamicTitle  []string       `json:"dynamic_title,omitempty"`
	Fields        []FieldDef     `json:"additional_fields,omitempty"`
	SubCategories []*CatalogNode `json:"sub_categories,omitempty"`
}

// FieldByAlias returns the field definition for alias, or nil when the node
// does not declare it.
func (n *CatalogNode) FieldByAlias(alias string) *FieldDef {
	for i := range n.Fields {
		if n.Fields[i].Alias == alias {
			return &n.Fields[i]
		}
	}
	return nil
}
