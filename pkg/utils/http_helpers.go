package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"institute-system/pkg/types"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

// ParseFilterFromQuery разбирает query string вида
// ?page=2&limit=50&search=...&sort[created_at]=desc&filter[status]=pending
func ParseFilterFromQuery(values url.Values) types.Filter {
	filterReq := types.Filter{
		Filter: make(map[string]interface{}),
		Sort:   make(map[string]string),
	}

	filterReq.Search = strings.TrimSpace(values.Get("search"))
	filterReq.WithPagination, _ = strconv.ParseBool(values.Get("withPagination"))

	page, _ := strconv.Atoi(values.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(values.Get("limit"))
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	filterReq.Page = page
	filterReq.Limit = limit
	filterReq.Offset = (page - 1) * limit

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		if strings.HasPrefix(key, "sort[") && strings.HasSuffix(key, "]") {
			field := key[len("sort[") : len(key)-1]
			filterReq.Sort[field] = vals[0]
			continue
		}
		if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") {
			field := key[len("filter[") : len(key)-1]
			if existing, ok := filterReq.Filter[field]; ok {
				filterReq.Filter[field] = fmt.Sprintf("%v,%s", existing, vals[0])
			} else {
				filterReq.Filter[field] = vals[0]
			}
		}
	}

	return filterReq
}
