package handler

import (
	"net/http"
	"strconv"
)

type PaginationParams struct {
	Page  int
	Limit int
}

func ParsePagination(r *http.Request) PaginationParams {
	params := PaginationParams{Page: 1, Limit: 50}

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			params.Page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			params.Limit = n
		}
	}
	return params
}
