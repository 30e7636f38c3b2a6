// Package query filters, searches, sorts and paginates decision records.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/pbaille/continuum/internal/domain"
)

// DefaultItemsPerPage is the page size used when none is given.
const DefaultItemsPerPage = 5

const msPerDay = float64(24 * time.Hour / time.Millisecond)

// Run returns the records matching filter and term, newest first.
// Filters and search compose by AND; the input slice is not modified.
func Run(records []domain.Decision, filter domain.Filter, term string, now time.Time) []domain.Decision {
	term = strings.ToLower(strings.TrimSpace(term))
	tag := strings.TrimSpace(filter.Tag)
	if strings.EqualFold(tag, "all") {
		tag = ""
	}
	window := filter.Timeframe.Days()
	nowMS := now.UnixMilli()

	out := make([]domain.Decision, 0, len(records))
	for _, d := range records {
		if term != "" && !matches(d, term) {
			continue
		}
		if window > 0 && float64(nowMS-d.Timestamp)/msPerDay > window {
			continue
		}
		if tag != "" && !d.HasTag(tag) {
			continue
		}
		out = append(out, d.Clone())
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders records by timestamp descending, keeping input order for ties.
func SortNewestFirst(records []domain.Decision) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
}

func matches(d domain.Decision, term string) bool {
	for _, field := range []string{d.Title, d.Intent, d.FinalDecision, d.Reasoning} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	for _, t := range d.Tags {
		if strings.Contains(strings.ToLower(t), term) {
			return true
		}
	}
	return false
}

// Page is one slice of a result sequence.
type Page struct {
	Items        []domain.Decision `json:"items"`
	Page         int               `json:"page"`
	ItemsPerPage int               `json:"itemsPerPage"`
	Total        int               `json:"total"`
	TotalPages   int               `json:"totalPages"`
}

// Paginate returns the 1-based page of records. Pages past the end are empty.
func Paginate(records []domain.Decision, page, itemsPerPage int) Page {
	if itemsPerPage <= 0 {
		itemsPerPage = DefaultItemsPerPage
	}
	if page < 1 {
		page = 1
	}
	total := len(records)
	totalPages := total / itemsPerPage
	if total%itemsPerPage != 0 {
		totalPages++
	}
	p := Page{
		Items:        []domain.Decision{},
		Page:         page,
		ItemsPerPage: itemsPerPage,
		Total:        total,
		TotalPages:   totalPages,
	}

	// Compare before multiplying so huge page numbers cannot overflow.
	if page-1 >= totalPages {
		return p
	}
	start := (page - 1) * itemsPerPage
	end := total
	if total-start > itemsPerPage {
		end = start + itemsPerPage
	}
	p.Items = append(p.Items, records[start:end]...)
	return p
}
