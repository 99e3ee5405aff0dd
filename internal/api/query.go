package api

import (
	"net/url"
	"strconv"
	"strings"
)

// ==== Параметры листингов ====

type ListParams struct {
	Limit  int
	Offset int
	Q      string
}

func parseListParams(q url.Values) ListParams {
	// limit
	limit := 50
	lv := q.Get("_limit")
	if lv == "" {
		lv = q.Get("limit")
	}
	if lv != "" {
		if n, err := strconv.Atoi(lv); err == nil && n >= 0 && n <= 1000 {
			limit = n
		}
	}

	// offset
	offset := 0
	ov := q.Get("_offset")
	if ov == "" {
		ov = q.Get("offset")
	}
	if ov != "" {
		if n, err := strconv.Atoi(ov); err == nil && n >= 0 {
			offset = n
		}
	}

	return ListParams{
		Limit:  limit,
		Offset: offset,
		Q:      strings.TrimSpace(q.Get("q")),
	}
}

// pageSlice вырезает страницу из отфильтрованного списка.
func pageSlice[T any](items []T, lp ListParams) []T {
	start := lp.Offset
	if start > len(items) {
		start = len(items)
	}
	end := start + lp.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// matchQ — регистронезависимое вхождение подстроки, пустой запрос матчит всё.
func matchQ(s, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(q))
}
