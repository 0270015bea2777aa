package validation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	catalog "github.com/bazarly/listing-service/internal/catalog/domain"
	"github.com/bazarly/listing-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *catalog.CatalogNode {
	return &catalog.CatalogNode{
		ID: "cars",
		Fields: []catalog.FieldDef{
			{
				Alias: "transmission", Type: catalog.FieldSelect, Required: true,
				Properties: catalog.Properties{Options: []string{"manual", "automatic"}},
			},
			{
				Alias: "options", Type: catalog.FieldCheckboxes,
				Properties: catalog.Properties{Checks: []string{"abs", "airbag", "cruise"}},
			},
			{
				Alias: "color", Type: catalog.FieldColor,
				Properties: catalog.Properties{Colors: []catalog.ColorOption{
					{Name: "Black", Value: "#000000"},
					{Name: "White", Value: "#ffffff"},
				}},
			},
			{Alias: "vin", Type: catalog.FieldText},
			{
				Alias: "year_of_issue", Type: catalog.FieldNumber,
				Properties: catalog.Properties{NumberType: "int", Min: 1950, Max: 2030},
			},
			{
				Alias: "engine_capacity", Type: catalog.FieldNumber,
				Properties: catalog.Properties{NumberType: "float", Min: 0.5, Max: 10},
			},
			{Alias: "exchange", Type: catalog.FieldCheckbox},
		},
	}
}

func newTestValidator(t *testing.T, opts ...Option) *Validator {
	t.Helper()
	return NewValidator(NewSuggesterRegistry(), logger.NewLogger(), opts...)
}

func TestValidate_EmptySubmission(t *testing.T) {
	v := newTestValidator(t)

	t.Run("non-empty schema rejects empty submission", func(t *testing.T) {
		res := v.Validate(context.Background(), testSchema(), map[string]any{})
		assert.False(t, res.OK())
		assert.Equal(t, "no data found in request", res.Error)
		assert.Empty(t, res.Aliases)
	})

	t.Run("empty schema accepts empty submission", func(t *testing.T) {
		res := v.Validate(context.Background(), &catalog.CatalogNode{ID: "leaf"}, nil)
		assert.True(t, res.OK())
	})
}

func TestValidate_UnknownAlias(t *testing.T) {
	v := newTestValidator(t)
	res := v.Validate(context.Background(), testSchema(), map[string]any{
		"transmission": "manual",
		"warp_drive":   "installed",
	})
	assert.False(t, res.OK())
	assert.Contains(t, res.Aliases, "warp_drive")
	assert.NotContains(t, res.Aliases, "transmission")
}

func TestValidate_Select(t *testing.T) {
	v := newTestValidator(t)

	cases := []struct {
		name  string
		value any
		valid bool
	}{
		{"allowed option", "manual", true},
		{"unknown option", "hover", false},
		{"wrong type", 42.0, false},
		{"empty but required", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := v.Validate(context.Background(), testSchema(), map[string]any{"transmission": tc.value})
			assert.Equal(t, tc.valid, res.OK(), "aliases: %v", res.Aliases)
		})
	}
}

func TestValidate_Checkboxes(t *testing.T) {
	v := newTestValidator(t)

	t.Run("all values allowed", func(t *testing.T) {
		res := v.Validate(context.Background(), testSchema(), map[string]any{
			"transmission": "manual",
			"options":      []any{"abs", "cruise"},
		})
		assert.True(t, res.OK(), "aliases: %v", res.Aliases)
	})

	t.Run("one unknown value fails the alias", func(t *testing.T) {
		res := v.Validate(context.Background(), testSchema(), map[string]any{
			"transmission": "manual",
			"options":      []any{"abs", "ejector_seat"},
		})
		assert.Contains(t, res.Aliases, "options")
	})

	t.Run("scalar value is a type error", func(t *testing.T) {
		res := v.Validate(context.Background(), testSchema(), map[string]any{
			"transmission": "manual",
			"options":      "abs",
		})
		assert.Equal(t, "invalid data type", res.Aliases["options"])
	})
}

func TestValidate_Color(t *testing.T) {
	v := newTestValidator(t)

	res := v.Validate(context.Background(), testSchema(), map[string]any{
		"transmission": "manual",
		"color":        "Black",
	})
	assert.True(t, res.OK())

	res = v.Validate(context.Background(), testSchema(), map[string]any{
		"transmission": "manual",
		"color":        "#000000",
	})
	assert.Equal(t, "value is not allowed", res.Aliases["color"])
}

func TestValidate_Text(t *testing.T) {
	v := newTestValidator(t)

	t.Run("within the limit", func(t *testing.T) {
		res := v.Validate(context.Background(), testSchema(), map[string]any{
			"transmission": "manual",
			"vin":          strings.Repeat("x", 255),
		})
		assert.True(t, res.OK())
	})

	t.Run("over the limit", func(t *testing.T) {
		res := v.Validate(context.Background(), testSchema(), map[string]any{
			"transmission": "manual",
			"vin":          strings.Repeat("x", 256),
		})
		assert.Equal(t, "character limit exceeded: 255 maximum", res.Aliases["vin"])
	})
}

func TestValidate_Number(t *testing.T) {
	v := newTestValidator(t)

	cases := []struct {
		name  string
		alias string
		value any
		valid bool
	}{
		{"int at lower bound", "year_of_issue", 1950.0, true},
		{"int at upper bound", "year_of_issue", 2030.0, true},
		{"int below min", "year_of_issue", 1949.0, false},
		{"int above max", "year_of_issue", 2031.0, false},
		{"int as numeric string", "year_of_issue", "2005", true},
		{"fraction rejected for int", "year_of_issue", 2005.5, false},
		{"garbage string", "year_of_issue", "yesterday", false},
		{"float accepted", "engine_capacity", 1.6, true},
		{"float as string", "engine_capacity", "2.0", true},
		{"float out of range", "engine_capacity", 12.0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := v.Validate(context.Background(), testSchema(), map[string]any{
				"transmission": "manual",
				tc.alias:       tc.value,
			})
			assert.Equal(t, tc.valid, res.OK(), "aliases: %v", res.Aliases)
		})
	}

	t.Run("range bound message", func(t *testing.T) {
		res := v.Validate(context.Background(), testSchema(), map[string]any{
			"transmission":  "manual",
			"year_of_issue": 1800.0,
		})
		assert.Equal(t, "enter a value between 1950 and 2030", res.Aliases["year_of_issue"])
	})
}

func TestValidate_Checkbox(t *testing.T) {
	v := newTestValidator(t)

	res := v.Validate(context.Background(), testSchema(), map[string]any{
		"transmission": "manual",
		"exchange":     true,
	})
	assert.True(t, res.OK())

	res = v.Validate(context.Background(), testSchema(), map[string]any{
		"transmission": "manual",
		"exchange":     "yes",
	})
	assert.Equal(t, "invalid data type", res.Aliases["exchange"])
}

func TestValidate_AccumulatesAllFailures(t *testing.T) {
	v := newTestValidator(t)

	res := v.Validate(context.Background(), testSchema(), map[string]any{
		"transmission":  "hover",
		"year_of_issue": "not-a-year",
		"exchange":      "yes",
	})
	assert.Len(t, res.Aliases, 3)
}

func TestValidate_FailureHook(t *testing.T) {
	var failures []string
	v := newTestValidator(t, WithFailureHook(func(fieldType string) {
		failures = append(failures, fieldType)
	}))

	v.Validate(context.Background(), testSchema(), map[string]any{
		"transmission": "hover",
		"unknown":      "x",
	})
	assert.ElementsMatch(t, []string{"select", "unknown"}, failures)
}

type stubSuggester struct {
	values []string
	err    error
	deps   map[string]string
}

func (s *stubSuggester) Suggest(_ context.Context, deps map[string]string) ([]string, error) {
	s.deps = deps
	return s.values, s.err
}

func suggestSchema() *catalog.CatalogNode {
	return &catalog.CatalogNode{
		ID: "cars",
		Fields: []catalog.FieldDef{
			{
				Alias: "brand", Type: catalog.FieldSelect,
				Properties: catalog.Properties{Options: []string{"Toyota", "BMW"}},
			},
			{
				Alias: "model", Type: catalog.FieldSelectRequest,
				Properties: catalog.Properties{URL: "models", Dependencies: []string{"brand"}},
			},
		},
	}
}

func TestValidate_SelectRequest(t *testing.T) {
	t.Run("provider-approved value passes", func(t *testing.T) {
		registry := NewSuggesterRegistry()
		stub := &stubSuggester{values: []string{"Corolla", "Camry"}}
		registry.Register("models", stub)
		v := NewValidator(registry, logger.NewLogger())

		res := v.Validate(context.Background(), suggestSchema(), map[string]any{
			"brand": "Toyota",
			"model": "Corolla",
		})
		require.True(t, res.OK(), "aliases: %v", res.Aliases)
		assert.Equal(t, map[string]string{"brand": "Toyota"}, stub.deps)
	})

	t.Run("value outside provider set fails", func(t *testing.T) {
		registry := NewSuggesterRegistry()
		registry.Register("models", &stubSuggester{values: []string{"Corolla"}})
		v := NewValidator(registry, logger.NewLogger())

		res := v.Validate(context.Background(), suggestSchema(), map[string]any{
			"brand": "Toyota",
			"model": "Mustang",
		})
		assert.Equal(t, "value is not allowed", res.Aliases["model"])
	})

	t.Run("provider failure rejects only the dependent alias", func(t *testing.T) {
		registry := NewSuggesterRegistry()
		registry.Register("models", &stubSuggester{err: errors.New("directory down")})
		v := NewValidator(registry, logger.NewLogger())

		res := v.Validate(context.Background(), suggestSchema(), map[string]any{
			"brand": "Toyota",
			"model": "Corolla",
		})
		assert.Equal(t, "value is not allowed", res.Aliases["model"])
		assert.NotContains(t, res.Aliases, "brand")
	})

	t.Run("slow provider times out as invalid value", func(t *testing.T) {
		registry := NewSuggesterRegistry()
		registry.Register("models", slowSuggester{})
		v := NewValidator(registry, logger.NewLogger(), WithSuggestTimeout(10*time.Millisecond))

		res := v.Validate(context.Background(), suggestSchema(), map[string]any{
			"model": "Corolla",
		})
		assert.Equal(t, "value is not allowed", res.Aliases["model"])
	})
}

type slowSuggester struct{}

func (slowSuggester) Suggest(ctx context.Context, _ map[string]string) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Second):
		return []string{"Corolla"}, nil
	}
}
