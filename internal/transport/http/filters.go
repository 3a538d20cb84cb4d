package http

import (
	"net/url"
	"strings"

	"finora/pkg/contracts/domain"
)

// filterPrefix marks filter query parameters: ?filter.country=UAE&filter.country=KSA
const filterPrefix = "filter."

// parseQueryFilters reads filters from the query string. A parameter given
// once with an empty value selects nothing, which excludes every row.
func parseQueryFilters(query url.Values) domain.Filters {
	var filters domain.Filters
	for key, values := range query {
		if !strings.HasPrefix(key, filterPrefix) {
			continue
		}
		column := strings.TrimPrefix(key, filterPrefix)
		if column == "" {
			continue
		}
		if filters == nil {
			filters = domain.Filters{}
		}

		selected := make([]string, 0, len(values))
		for _, v := range values {
			if v != "" {
				selected = append(selected, v)
			}
		}
		filters[column] = selected
	}
	return filters
}

// cleanFilters turns JSON nulls into empty selections so that a column sent
// as null behaves like one sent as [].
func cleanFilters(filters domain.Filters) domain.Filters {
	for col, values := range filters {
		if values == nil {
			filters[col] = []string{}
		}
	}
	return filters
}
