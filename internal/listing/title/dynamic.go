package title

import "strings"

// Generate builds a listing title from the catalog's dynamic-title aliases:
// the submitted value of each alias, in declared order, space-joined. Returns
// "" when no alias matched; the caller then falls back to the explicit title.
func Generate(dynamicTitleAliases []string, fields map[string]any) string {
	var b strings.Builder
	for _, alias := range dynamicTitleAliases {
		value, ok := fields[alias]
		if !ok {
			continue
		}
		s, ok := value.(string)
		if !ok || s == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}
	return strings.TrimSpace(b.String())
}
