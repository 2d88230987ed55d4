package shared

import "net/http"

type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination applies defaultLimit when limit is absent and caps it at maxLimit.
// Malformed values are reported on v rather than silently replaced.
func ParsePagination(v *Validator, r *http.Request, defaultLimit, maxLimit int) Pagination {
	p := Pagination{Limit: defaultLimit}
	if limit := QueryInt(v, r, "limit", 1, 0); limit > 0 {
		p.Limit = limit
	}
	p.Offset = QueryInt(v, r, "offset", 0, 0)
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}
