package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SortKey selects the ordering of derived listings.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortName      SortKey = "name"
	SortNewest    SortKey = "newest"
)

// ParseSortKey maps user input to a key, falling back to SortFeatured.
func ParseSortKey(value string) SortKey {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(value))); key {
	case SortPriceLow, SortPriceHigh, SortRating, SortName, SortNewest:
		return key
	default:
		return SortFeatured
	}
}

// FilterState holds the shopper's active filters and sort.
type FilterState struct {
	Search          string
	CategoryIDs     []string
	MinPrice        decimal.NullDecimal
	MaxPrice        decimal.NullDecimal
	InStockOnly     bool
	BestSellersOnly bool
	SortBy          SortKey
}

// DefaultFilterState is the state with every filter cleared.
func DefaultFilterState() FilterState {
	return FilterState{SortBy: SortFeatured}
}

// Reset clears every filter and restores the default sort.
func (f *FilterState) Reset() {
	*f = DefaultFilterState()
}

// IsDefault reports whether no filter is active.
func (f FilterState) IsDefault() bool {
	return strings.TrimSpace(f.Search) == "" &&
		len(f.CategoryIDs) == 0 &&
		!f.MinPrice.Valid && !f.MaxPrice.Valid &&
		!f.InStockOnly && !f.BestSellersOnly &&
		ParseSortKey(string(f.SortBy)) == SortFeatured
}

// Query parameter names understood by ParseFilterState.
const (
	ParamSearch          = "search"
	ParamCategoryIDs     = "category_ids"
	ParamMinPrice        = "min_price"
	ParamMaxPrice        = "max_price"
	ParamInStockOnly     = "in_stock_only"
	ParamBestSellersOnly = "best_sellers_only"
	ParamSortBy          = "sort_by"
)

// ParseFilterState reads a FilterState from query values. Category ids may be
// repeated or comma separated. Malformed prices and flags are ignored.
func ParseFilterState(values url.Values) FilterState {
	state := DefaultFilterState()
	state.Search = strings.TrimSpace(values.Get(ParamSearch))
	for _, raw := range values[ParamCategoryIDs] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				state.CategoryIDs = append(state.CategoryIDs, id)
			}
		}
	}
	state.MinPrice = parsePrice(values.Get(ParamMinPrice))
	state.MaxPrice = parsePrice(values.Get(ParamMaxPrice))
	state.InStockOnly = parseFlag(values.Get(ParamInStockOnly))
	state.BestSellersOnly = parseFlag(values.Get(ParamBestSellersOnly))
	state.SortBy = ParseSortKey(values.Get(ParamSortBy))
	return state
}

// Values encodes the state back into query parameters, omitting defaults.
func (f FilterState) Values() url.Values {
	values := url.Values{}
	if s := strings.TrimSpace(f.Search); s != "" {
		values.Set(ParamSearch, s)
	}
	if len(f.CategoryIDs) > 0 {
		values.Set(ParamCategoryIDs, strings.Join(f.CategoryIDs, ","))
	}
	if f.MinPrice.Valid {
		values.Set(ParamMinPrice, f.MinPrice.Decimal.String())
	}
	if f.MaxPrice.Valid {
		values.Set(ParamMaxPrice, f.MaxPrice.Decimal.String())
	}
	if f.InStockOnly {
		values.Set(ParamInStockOnly, "true")
	}
	if f.BestSellersOnly {
		values.Set(ParamBestSellersOnly, "true")
	}
	if key := ParseSortKey(string(f.SortBy)); key != SortFeatured {
		values.Set(ParamSortBy, string(key))
	}
	return values
}

func parsePrice(raw string) decimal.NullDecimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(value)
}

func parseFlag(raw string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && value
}
