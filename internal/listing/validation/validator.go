package validation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	catalog "github.com/bazarly/listing-service/internal/catalog/domain"
	"github.com/bazarly/listing-service/internal/platform/logger"
	"go.uber.org/zap"
)

// Validation messages. The aliases map carries these verbatim to the client.
const (
	msgEmptyRequest = "no data found in request"
	msgUnknownAlias = "field is not declared in the catalog schema"
	msgRequired     = "required field"
	msgBadType      = "invalid data type"
	msgInvalidValue = "value is not allowed"
	msgTextTooLong  = "character limit exceeded: 255 maximum"
)

const maxTextLength = 255

// Result is the outcome of validating a submission against a schema. The
// caller treats the submission as invalid when Error is set or Aliases is
// non-empty.
type Result struct {
	Error   string            `json:"error"`
	Aliases map[string]string `json:"aliases"`
}

// OK reports whether the submission passed.
func (r Result) OK() bool {
	return r.Error == "" && len(r.Aliases) == 0
}

// strategy validates one submitted value against its field definition.
// submission is the full current submission; only dependent fields need it.
// It returns "" when the value is acceptable.
type strategy interface {
	validate(ctx context.Context, def *catalog.FieldDef, submission map[string]any, value any) string
}

// Validator checks a submitted alias->value map against a catalog node's
// field schema. It is total: it never panics and never returns a Go error;
// every problem ends up in the Result.
type Validator struct {
	strategies     map[catalog.FieldType]strategy
	logger         *logger.Logger
	onFailure      func(fieldType string)
	suggestTimeout time.Duration
}

// Option configures a Validator.
type Option func(*Validator)

// WithFailureHook installs a callback invoked with the field type of every
// per-alias failure, used to feed metrics.
func WithFailureHook(hook func(fieldType string)) Option {
	return func(v *Validator) { v.onFailure = hook }
}

// WithSuggestTimeout bounds each suggestion provider call. A timeout counts
// as an invalid value for that alias only.
func WithSuggestTimeout(d time.Duration) Option {
	return func(v *Validator) { v.suggestTimeout = d }
}

func NewValidator(suggesters *SuggesterRegistry, log *logger.Logger, opts ...Option) *Validator {
	v := &Validator{
		logger:         log.Named("FieldValidator"),
		suggestTimeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.strategies = map[catalog.FieldType]strategy{
		catalog.FieldSelect:        selectStrategy{},
		catalog.FieldCheckboxes:    checkboxesStrategy{},
		catalog.FieldColor:         colorStrategy{},
		catalog.FieldText:          textStrategy{},
		catalog.FieldNumber:        numberStrategy{},
		catalog.FieldCheckbox:      checkboxStrategy{},
		catalog.FieldSelectRequest: selectRequestStrategy{registry: suggesters, timeout: v.suggestTimeout, logger: v.logger},
	}
	return v
}

// Validate runs every submitted (alias, value) pair through the strategy for
// its declared field type, accumulating per-alias errors. An empty submission
// against a non-empty schema short-circuits with a top-level error.
func (v *Validator) Validate(ctx context.Context, schema *catalog.CatalogNode, fields map[string]any) Result {
	res := Result{Aliases: make(map[string]string)}

	if len(fields) == 0 {
		if len(schema.Fields) > 0 {
			res.Error = msgEmptyRequest
		}
		return res
	}

	for alias, value := range fields {
		def := schema.FieldByAlias(alias)
		if def == nil {
			res.Aliases[alias] = msgUnknownAlias
			v.fail("unknown")
			continue
		}

		strat, ok := v.strategies[def.Type]
		if !ok {
			v.logger.Warn("No validation strategy for field type",
				zap.String("alias", alias), zap.String("type", string(def.Type)))
			res.Aliases[alias] = msgBadType
			v.fail(string(def.Type))
			continue
		}

		if msg := strat.validate(ctx, def, fields, value); msg != "" {
			res.Aliases[alias] = msg
			v.fail(string(def.Type))
		}
	}
	return res
}

func (v *Validator) fail(fieldType string) {
	if v.onFailure != nil {
		v.onFailure(fieldType)
	}
}

type selectStrategy struct{}

func (selectStrategy) validate(_ context.Context, def *catalog.FieldDef, _ map[string]any, value any) string {
	return validateMembership(def.Properties.Options, def.Required, value)
}

type colorStrategy struct{}

func (colorStrategy) validate(_ context.Context, def *catalog.FieldDef, _ map[string]any, value any) string {
	names := make([]string, 0, len(def.Properties.Colors))
	for _, c := range def.Properties.Colors {
		names = append(names, c.Name)
	}
	return validateMembership(names, def.Required, value)
}

func validateMembership(allowed []string, required bool, value any) string {
	s, ok := value.(string)
	if !ok {
		return msgBadType
	}
	if s == "" {
		if required {
			return msgRequired
		}
		return ""
	}
	for _, a := range allowed {
		if a == s {
			return ""
		}
	}
	return msgInvalidValue
}

type checkboxesStrategy struct{}

func (checkboxesStrategy) validate(_ context.Context, def *catalog.FieldDef, _ map[string]any, value any) string {
	items, ok := toStringSlice(value)
	if !ok {
		return msgBadType
	}
	if len(items) == 0 {
		if def.Required {
			return msgRequired
		}
		return ""
	}
	allowed := make(map[string]bool, len(def.Properties.Checks))
	for _, c := range def.Properties.Checks {
		allowed[c] = true
	}
	for _, item := range items {
		if !allowed[item] {
			return msgInvalidValue
		}
	}
	return ""
}

// toStringSlice accepts both []string and the []any a JSON decoder produces.
func toStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

type textStrategy struct{}

func (textStrategy) validate(_ context.Context, def *catalog.FieldDef, _ map[string]any, value any) string {
	s, ok := value.(string)
	if !ok {
		return msgBadType
	}
	if s == "" && def.Required {
		return msgRequired
	}
	if utf8.RuneCountInString(s) > maxTextLength {
		return msgTextTooLong
	}
	return ""
}

type numberStrategy struct{}

func (numberStrategy) validate(_ context.Context, def *catalog.FieldDef, _ map[string]any, value any) string {
	props := def.Properties

	empty := value == nil
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		empty = true
	}
	if empty {
		if def.Required {
			return msgRequired
		}
		return ""
	}

	num, msg := coerceNumber(value, props.NumberType)
	if msg != "" {
		return msg
	}
	if num < props.Min || num > props.Max {
		return fmt.Sprintf("enter a value between %v and %v", props.Min, props.Max)
	}
	return ""
}

// coerceNumber parses value per the declared numeric subtype. JSON decoding
// yields float64 for numbers, but attribute values also arrive as strings.
func coerceNumber(value any, numberType string) (float64, string) {
	switch numberType {
	case "int":
		switch v := value.(type) {
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return 0, msgBadType
			}
			return float64(n), ""
		case float64:
			if v != float64(int64(v)) {
				return 0, msgBadType
			}
			return v, ""
		case int:
			return float64(v), ""
		default:
			return 0, msgBadType
		}
	case "float":
		switch v := value.(type) {
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return 0, msgBadType
			}
			return f, ""
		case float64:
			return v, ""
		case int:
			return float64(v), ""
		default:
			return 0, msgBadType
		}
	default:
		return 0, msgBadType
	}
}

type checkboxStrategy struct{}

func (checkboxStrategy) validate(_ context.Context, _ *catalog.FieldDef, _ map[string]any, value any) string {
	if _, ok := value.(bool); !ok {
		return msgBadType
	}
	return ""
}

type selectRequestStrategy struct {
	registry *SuggesterRegistry
	timeout  time.Duration
	logger   *logger.Logger
}

func (s selectRequestStrategy) validate(ctx context.Context, def *catalog.FieldDef, submission map[string]any, value any) string {
	v, ok := value.(string)
	if !ok {
		return msgBadType
	}
	if v == "" {
		if def.Required {
			return msgRequired
		}
		return ""
	}
	if s.registry == nil {
		return msgInvalidValue
	}

	// Dependency context comes from the current submission, not from stored
	// attributes. Only one hop: transitive dependencies are not resolved.
	deps := make(map[string]string, len(def.Properties.Dependencies))
	for _, depAlias := range def.Properties.Dependencies {
		if depValue, ok := submission[depAlias].(string); ok {
			deps[depAlias] = depValue
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	allowed, err := s.registry.Suggest(callCtx, def.Properties.URL, deps)
	if err != nil {
		// Provider failure rejects the value but never aborts the batch.
		s.logger.Warn("Suggestion provider failed",
			zap.String("url_key", def.Properties.URL), zap.String("alias", def.Alias), zap.Error(err))
		return msgInvalidValue
	}
	if _, ok := allowed[v]; !ok {
		return msgInvalidValue
	}
	return ""
}
