package persistence

import "strings"

// sortSpec whitelists the columns one repository exposes for sorting.
// OrderBy/OrderDir come straight from query strings and end up inside
// an ORDER BY, so anything outside the whitelist falls back to the
// repository's default column and the direction is normalized.
type sortSpec struct {
	defaultField string
	allowed      map[string]bool
}

// baseSortColumns are sortable on every table.
var baseSortColumns = []string{"id", "created_at", "updated_at"}

// newSortSpec builds a spec from the default column plus any further
// sortable columns. The base columns are always included.
func newSortSpec(defaultField string, fields ...string) sortSpec {
	allowed := make(map[string]bool, len(baseSortColumns)+len(fields)+1)
	for _, f := range baseSortColumns {
		allowed[f] = true
	}
	allowed[defaultField] = true
	for _, f := range fields {
		allowed[f] = true
	}
	return sortSpec{defaultField: defaultField, allowed: allowed}
}

// field returns orderBy when it is whitelisted, the default column otherwise.
func (s sortSpec) field(orderBy string) string {
	if trimmed := strings.TrimSpace(orderBy); s.allowed[trimmed] {
		return trimmed
	}
	return s.defaultField
}

// clause renders the ORDER BY expression for the given caller input.
func (s sortSpec) clause(orderBy, orderDir string) string {
	return s.field(orderBy) + " " + sortDirection(orderDir)
}

// sortDirection normalizes the direction to ASC or DESC, defaulting to DESC.
func sortDirection(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}
