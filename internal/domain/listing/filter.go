package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// ListFilter narrows listing reads. Nil fields do not filter.
type ListFilter struct {
	Category *string
	Search   *string
	MinPrice *float64
	MaxPrice *float64
	Make     *string
	Year     *int
	UserID   *int64

	// IncludeSold lifts the default hiding of sold listings.
	IncludeSold bool
	// Sold restricts to one sold state; it implies IncludeSold.
	Sold *bool
}

// FilterFromQuery parses the public query string of GET /listings.
func FilterFromQuery(q url.Values) (ListFilter, error) {
	var f ListFilter
	verr := &ValidationError{}

	text := func(key string) *string {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			return nil
		}
		return &v
	}
	f.Category = text("category")
	f.Search = text("search")
	f.Make = text("make")

	if v := text("minPrice"); v != nil {
		n, err := strconv.ParseFloat(*v, 64)
		if err != nil {
			verr.add(FieldError{Field: "minPrice", Rule: "number", Message: "must be a number"})
		} else {
			f.MinPrice = &n
		}
	}
	if v := text("maxPrice"); v != nil {
		n, err := strconv.ParseFloat(*v, 64)
		if err != nil {
			verr.add(FieldError{Field: "maxPrice", Rule: "number", Message: "must be a number"})
		} else {
			f.MaxPrice = &n
		}
	}
	if v := text("year"); v != nil {
		n, err := strconv.Atoi(*v)
		if err != nil {
			verr.add(FieldError{Field: "year", Rule: "int", Message: "must be a whole number"})
		} else {
			f.Year = &n
		}
	}

	f.IncludeSold = strings.EqualFold(strings.TrimSpace(q.Get("includeSold")), "true")
	return f, verr.orNil()
}

// Matches is the reference semantics of the filter; the SQL builder
// implements the same predicate.
func (f ListFilter) Matches(l Listing) bool {
	switch {
	case f.Sold != nil:
		if l.Sold != *f.Sold {
			return false
		}
	case !f.IncludeSold && l.Sold:
		return false
	}
	if f.UserID != nil && l.UserID != *f.UserID {
		return false
	}
	if f.Category != nil && l.Category != *f.Category {
		return false
	}
	if f.Make != nil && l.Make != *f.Make {
		return false
	}
	if f.Year != nil && (l.Year == nil || *l.Year != *f.Year) {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	if f.Search != nil {
		needle := strings.ToLower(*f.Search)
		hit := false
		for _, hay := range []string{l.Title, l.Description, l.Make, l.Model} {
			if strings.Contains(strings.ToLower(hay), needle) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}
