package tgz

import (
	"fmt"
	"strconv"
)

// PaginationLayout controls how the navigation buttons are arranged.
type PaginationLayout int

const (
	// LayoutRow puts every navigation button on one row.
	LayoutRow PaginationLayout = iota
	// LayoutSplit puts prev/next and first/last on separate rows.
	LayoutSplit
	// LayoutSmart keeps one row while there are at most two navigation
	// buttons and splits otherwise.
	LayoutSmart
)

// Pagination builds paginated inline keyboards. Items are callback buttons;
// navigation buttons carry callback data of the form prefix+page, which the
// host routes back into a new page render.
type Pagination struct {
	items      []Button
	totalItems int
	perPage    int
	columns    int
	page       int
	prefix     string

	prevText      string
	nextText      string
	firstText     string
	lastText      string
	showFirstLast bool

	layout    PaginationLayout
	headerRow []Button
	returnBtn *Button
}

// NewPagination creates a builder with one column and five items per page.
func NewPagination(prefix string) *Pagination {
	return &Pagination{
		perPage:  5,
		columns:  1,
		page:     1,
		prefix:   prefix,
		prevText: "<",
		nextText: ">",
	}
}

// Items sets the buttons the pages are assembled from.
func (p *Pagination) Items(items []Button) *Pagination {
	p.items = items
	return p
}

// TotalItems overrides the item count, for callers that pass only the
// current page's slice of a larger list.
func (p *Pagination) TotalItems(total int) *Pagination {
	p.totalItems = total
	return p
}

// PerPage sets how many items one page holds. Must be positive.
func (p *Pagination) PerPage(perPage int) *Pagination {
	if perPage <= 0 {
		panic("tgz: pagination per-page must be positive")
	}
	p.perPage = perPage
	return p
}

// Columns sets how many items share a row. Must be positive.
func (p *Pagination) Columns(columns int) *Pagination {
	if columns <= 0 {
		panic("tgz: pagination columns must be positive")
	}
	p.columns = columns
	return p
}

// Page sets the page to render, starting at 1. Pages beyond the end clamp
// to the last page.
func (p *Pagination) Page(page int) *Pagination {
	if page <= 0 {
		panic("tgz: pagination page must be positive")
	}
	p.page = page
	return p
}

// Signs sets the prev/next navigation captions.
func (p *Pagination) Signs(prev, next string) *Pagination {
	p.prevText = prev
	p.nextText = next
	return p
}

// SideSigns enables first/last navigation with the given captions.
func (p *Pagination) SideSigns(first, last string) *Pagination {
	p.firstText = first
	p.lastText = last
	p.showFirstLast = true
	return p
}

// Layout sets the navigation arrangement.
func (p *Pagination) Layout(layout PaginationLayout) *Pagination {
	p.layout = layout
	return p
}

// Header prepends a fixed row of buttons to every page.
func (p *Pagination) Header(row []Button) *Pagination {
	p.headerRow = row
	return p
}

// ReturnBtn appends a final row with a single back button.
func (p *Pagination) ReturnBtn(text, callbackData string) *Pagination {
	p.returnBtn = &Button{Text: text, Data: callbackData}
	return p
}

// TotalPages returns how many pages the item list spans.
func (p *Pagination) TotalPages() int {
	total := p.totalItems
	if total == 0 {
		total = len(p.items)
	}
	pages := (total + p.perPage - 1) / p.perPage
	if pages < 1 {
		pages = 1
	}
	return pages
}

func (p *Pagination) navButton(text string, page int) Button {
	return Button{Text: text, Data: p.prefix + strconv.Itoa(page)}
}

// Build assembles the keyboard rows for the current page.
func (p *Pagination) Build() [][]Button {
	if len(p.items) == 0 {
		return nil
	}

	totalPages := p.TotalPages()
	page := p.page
	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * p.perPage
	if offset > len(p.items) {
		offset = len(p.items)
	}
	end := offset + p.perPage
	if end > len(p.items) {
		end = len(p.items)
	}
	pageItems := p.items[offset:end]

	var keyboard [][]Button
	if p.headerRow != nil {
		keyboard = append(keyboard, p.headerRow)
	}
	for i := 0; i < len(pageItems); i += p.columns {
		rowEnd := i + p.columns
		if rowEnd > len(pageItems) {
			rowEnd = len(pageItems)
		}
		keyboard = append(keyboard, pageItems[i:rowEnd])
	}

	if totalPages > 1 {
		var inner, outer []Button
		if p.showFirstLast && page > 1 {
			outer = append(outer, p.navButton(p.firstText, 1))
		}
		if page > 1 {
			inner = append(inner, p.navButton(p.prevText, page-1))
		}
		if page < totalPages {
			inner = append(inner, p.navButton(p.nextText, page+1))
		}
		if p.showFirstLast && page < totalPages {
			outer = append(outer, p.navButton(p.lastText, totalPages))
		}

		split := false
		switch p.layout {
		case LayoutSplit:
			split = len(outer) > 0
		case LayoutSmart:
			split = len(inner)+len(outer) > 2
		}

		if split {
			if len(inner) > 0 {
				keyboard = append(keyboard, inner)
			}
			if len(outer) > 0 {
				keyboard = append(keyboard, outer)
			}
		} else {
			var row []Button
			if p.showFirstLast && page > 1 {
				row = append(row, p.navButton(p.firstText, 1))
			}
			row = append(row, inner...)
			if p.showFirstLast && page < totalPages {
				row = append(row, p.navButton(p.lastText, totalPages))
			}
			if len(row) > 0 {
				keyboard = append(keyboard, row)
			}
		}
	}

	if p.returnBtn != nil {
		keyboard = append(keyboard, []Button{*p.returnBtn})
	}
	return keyboard
}

// PageFromData extracts the page number from navigation callback data built
// with the given prefix.
func PageFromData(prefix, data string) (int, error) {
	if len(data) <= len(prefix) || data[:len(prefix)] != prefix {
		return 0, fmt.Errorf("tgz: callback data %q does not carry prefix %q", data, prefix)
	}
	return strconv.Atoi(data[len(prefix):])
}
