// Package query derives the filtered, searched, ranked and paginated list
// views. Everything here is a pure function over parcel slices; the store is
// never touched.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/BearBump/ParcelDesk/internal/models"
)

const (
	// DefaultPageSize is the fixed list window; overridable via config.
	DefaultPageSize = 10

	// Search kicks in from this query length; shorter queries are ignored.
	minSearchLen = 3
)

// StatusAll disables the status predicate.
const StatusAll = "All"

type Options struct {
	Status string // exact status or "All"/"" for passthrough

	// Date-only bounds on creationDate, inclusive: [start 00:00:00,
	// end 23:59:59.999…]. Zero value means the bound is not set.
	StartDate time.Time
	EndDate   time.Time

	Search string
}

// Apply filters and orders. Search-active results are ranked by score,
// otherwise newest first.
func Apply(parcels []*models.Parcel, opts Options) []*models.Parcel {
	q := strings.ToLower(strings.TrimSpace(opts.Search))
	searchActive := len(q) >= minSearchLen

	var start, end time.Time
	if !opts.StartDate.IsZero() {
		y, m, d := opts.StartDate.Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, opts.StartDate.Location())
	}
	if !opts.EndDate.IsZero() {
		y, m, d := opts.EndDate.Date()
		end = time.Date(y, m, d, 0, 0, 0, 0, opts.EndDate.Location()).Add(24*time.Hour - time.Nanosecond)
	}
	dateBound := !start.IsZero() || !end.IsZero()

	out := make([]*models.Parcel, 0, len(parcels))
	for _, p := range parcels {
		if opts.Status != "" && opts.Status != StatusAll && p.Status != opts.Status {
			continue
		}
		if p.CreationDate.IsZero() {
			// No usable creation date: drop whenever any date bound is set.
			if dateBound {
				continue
			}
		} else {
			if !start.IsZero() && p.CreationDate.Before(start) {
				continue
			}
			if !end.IsZero() && p.CreationDate.After(end) {
				continue
			}
		}
		if searchActive && !matches(p, q) {
			continue
		}
		out = append(out, p)
	}

	if searchActive {
		sort.SliceStable(out, func(i, j int) bool {
			return score(out[i], q) > score(out[j], q)
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreationDate.After(out[j].CreationDate)
		})
	}
	return out
}

func matches(p *models.Parcel, q string) bool {
	return strings.Contains(strings.ToLower(p.TrackingNumber), q) ||
		strings.Contains(strings.ToLower(p.CustomerName), q) ||
		strings.Contains(strings.ToLower(p.CustomerAddress), q)
}

// score ranks matches: customer name first, then tracking number, then
// address. A name prefix match gets a bonus on top of the substring hit.
func score(p *models.Parcel, q string) int {
	name := strings.ToLower(p.CustomerName)
	tracking := strings.ToLower(p.TrackingNumber)
	address := strings.ToLower(p.CustomerAddress)

	s := 0
	if strings.Contains(name, q) {
		s += 10
	}
	if strings.HasPrefix(name, q) {
		s += 5
	}
	if strings.Contains(tracking, q) {
		s += 5
	}
	if strings.Contains(address, q) {
		s += 2
	}
	return s
}

// Page cuts a 1-based fixed-size window. Out-of-range pages return an empty
// slice, never an error.
func Page(items []*models.Parcel, page, size int) []*models.Parcel {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	startIdx := (page - 1) * size
	if startIdx >= len(items) {
		return []*models.Parcel{}
	}
	endIdx := startIdx + size
	if endIdx > len(items) {
		endIdx = len(items)
	}
	return items[startIdx:endIdx]
}

// TotalPages for the pagination widget.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	return (total + size - 1) / size
}
