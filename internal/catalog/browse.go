package catalog

import (
	"context"
	"errors"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Source supplies the full list of browsable products.
type Source interface {
	CatalogProducts(ctx context.Context) ([]Product, error)
}

type derivationRecorder interface {
	ObserveDerivation(sortKey string, visible int)
	IncSourceFailure()
}

// Result is one page of a derived listing. Unavailable is set when the source
// could not be loaded; Products is then empty.
type Result struct {
	Products    []Product `json:"products"`
	Total       int       `json:"total"`
	Limit       int       `json:"limit"`
	Skip        int       `json:"skip"`
	Unavailable bool      `json:"unavailable"`
}

// Browser runs the filter/sort pipeline over a Source.
type Browser struct {
	source   Source
	metrics  derivationRecorder
	logg     *logger.Logger
	maxLimit int
}

// NewBrowser builds a Browser. maxLimit caps page sizes.
func NewBrowser(source Source, metrics derivationRecorder, logg *logger.Logger, maxLimit int) (*Browser, error) {
	if source == nil {
		return nil, errors.New("catalog source required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Browser{source: source, metrics: metrics, logg: logg, maxLimit: maxLimit}, nil
}

// Browse loads the catalog, derives the visible products for state and
// returns the requested page. A failing source yields an empty, unavailable
// result instead of an error.
func (b *Browser) Browse(ctx context.Context, state FilterState, page pagination.Params) Result {
	page = page.Normalize(b.maxLimit)
	products, err := b.source.CatalogProducts(ctx)
	if err != nil {
		b.logg.Warn(b.logg.WithField(ctx, "error", err.Error()), "catalog source unavailable")
		if b.metrics != nil {
			b.metrics.IncSourceFailure()
		}
		return Result{Products: []Product{}, Limit: page.Limit, Skip: page.Skip, Unavailable: true}
	}

	visible := DeriveVisibleProducts(products, state)
	if b.metrics != nil {
		b.metrics.ObserveDerivation(string(ParseSortKey(string(state.SortBy))), len(visible))
	}
	start, end := page.Window(len(visible))
	return Result{
		Products: visible[start:end],
		Total:    len(visible),
		Limit:    page.Limit,
		Skip:     page.Skip,
	}
}
