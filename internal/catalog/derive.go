package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DeriveVisibleProducts applies the search, category, price, stock and
// best-seller filters of state, in that order, then stable-sorts by
// state.SortBy. The input slice is never modified.
func DeriveVisibleProducts(products []Product, state FilterState) []Product {
	visible := make([]Product, 0, len(products))
	search := strings.ToLower(strings.TrimSpace(state.Search))
	categories := categorySet(state.CategoryIDs)

	for _, p := range products {
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if categories != nil {
			if _, ok := categories[strings.ToLower(p.CategoryID.String())]; !ok {
				continue
			}
		}
		if !withinPrice(p, state) {
			continue
		}
		if state.InStockOnly && !p.InStock {
			continue
		}
		if state.BestSellersOnly && !p.BestSeller {
			continue
		}
		visible = append(visible, p)
	}

	sortProducts(visible, ParseSortKey(string(state.SortBy)))
	return visible
}

func matchesSearch(p Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.CategoryName), needle)
}

func categorySet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[strings.ToLower(strings.TrimSpace(id))] = struct{}{}
	}
	return set
}

// absent bounds are open: min defaults to zero, max to unbounded.
func withinPrice(p Product, state FilterState) bool {
	if state.MinPrice.Valid && p.Price.LessThan(state.MinPrice.Decimal) {
		return false
	}
	if state.MaxPrice.Valid && p.Price.GreaterThan(state.MaxPrice.Decimal) {
		return false
	}
	if !state.MinPrice.Valid && state.MaxPrice.Valid && p.Price.IsNegative() {
		return false
	}
	return true
}

func sortProducts(products []Product, key SortKey) {
	var less func(a, b Product) bool
	switch key {
	case SortPriceLow:
		less = func(a, b Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceHigh:
		less = func(a, b Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortRating:
		less = func(a, b Product) bool { return a.Rating > b.Rating }
	case SortName:
		// Collators keep internal buffers, so each sort gets its own.
		col := collate.New(language.English, collate.Loose)
		less = func(a, b Product) bool { return col.CompareString(a.Name, b.Name) < 0 }
	case SortNewest:
		less = func(a, b Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		less = func(a, b Product) bool {
			if a.BestSeller != b.BestSeller {
				return a.BestSeller
			}
			return a.Rating > b.Rating
		}
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}
