package engine

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"vidtube/backend/internal/constants"
	"vidtube/backend/internal/store"
)

// Page is a validated page request. Skip is derived from Page and Limit.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Skip  int `json:"-"`
}

// NewPage builds a page without clamping. Callers with raw input use ParsePage.
func NewPage(page, limit int) Page {
	return Page{Page: page, Limit: limit, Skip: (page - 1) * limit}
}

// Window converts the page into a store listing window
func (p Page) Window() store.Window {
	return store.Window{Skip: p.Skip, Limit: p.Limit}
}

// ParsePage clamps raw page and limit query values using the engine's limits
func (e *Engine) ParsePage(pageRaw, limitRaw string) Page {
	return parsePage(pageRaw, limitRaw, e.opts.DefaultPageLimit, e.opts.MaxPageLimit)
}

// parsePage applies the clamp policy: a missing, non-numeric or non-positive
// page becomes 1, a missing, non-numeric or non-positive limit becomes
// defaultLimit, and a limit above maxLimit becomes maxLimit. The page is
// capped so the skip offset stays within int32.
func parsePage(pageRaw, limitRaw string, defaultLimit, maxLimit int) Page {
	page, err := strconv.Atoi(strings.TrimSpace(pageRaw))
	if err != nil || page < 1 {
		page = constants.DefaultPage
	}

	limit, err := strconv.Atoi(strings.TrimSpace(limitRaw))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if maxPage := math.MaxInt32 / limit; page > maxPage {
		page = maxPage
	}

	return NewPage(page, limit)
}

// Paginate returns the slice of items selected by page. Out of range is empty, not an error.
func Paginate[T any](items []T, page Page) []T {
	if page.Skip < 0 || page.Skip >= len(items) {
		return []T{}
	}
	end := page.Skip + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Skip:end]
}

// sortNewestFirst orders items by creation time descending, breaking ties by id descending
func sortNewestFirst[T any](items []T, createdAt func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := createdAt(items[i]), createdAt(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return id(items[i]) > id(items[j])
	})
}
