package compliance

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LabelsFrom coerces a decoded JSON value into compliance labels. Arrays keep
// their string entries and drop everything else; a lone string is a single
// label; any other value, including nil, yields no labels.
func LabelsFrom(v any) []string {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{t}
	default:
		return nil
	}
}

// Label renders id the way prompt text expects it, e.g. "BASEL-III".
func Label(id ID) string {
	// A Caser keeps state and must not be shared between goroutines.
	return cases.Upper(language.Und).String(string(id))
}

// JoinLabels renders ids as a comma-separated upper-case list.
func JoinLabels(ids []ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = Label(id)
	}
	return strings.Join(parts, ", ")
}

// IDs converts plain strings to ids without normalizing them.
func IDs(ss []string) []ID {
	out := make([]ID, len(ss))
	for i, s := range ss {
		out[i] = ID(s)
	}
	return out
}
