package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	productsvc "github.com/angelmondragon/storefront-backend/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubProductService struct {
	productsvc.Service

	listInput   productsvc.ListProductsInput
	browseInput productsvc.BrowseInput
	createInput productsvc.CreateProductInput
	updateInput productsvc.UpdateProductInput
	searchQuery string
	products    []productsvc.ProductDTO
	product     *productsvc.ProductDTO
	err         error
}

func (s *stubProductService) List(ctx context.Context, input productsvc.ListProductsInput) ([]productsvc.ProductDTO, error) {
	s.listInput = input
	return s.products, s.err
}

func (s *stubProductService) Browse(ctx context.Context, input productsvc.BrowseInput) catalog.Result {
	s.browseInput = input
	return catalog.Result{Total: 1, Products: []catalog.Product{{ID: uuid.New(), Name: "Kale"}}}
}

func (s *stubProductService) Search(ctx context.Context, q string, limit int) ([]productsvc.ProductDTO, error) {
	s.searchQuery = q
	if strings.TrimSpace(q) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}
	return s.products, s.err
}

func (s *stubProductService) GetBySlug(ctx context.Context, slug string) (*productsvc.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubProductService) Get(ctx context.Context, id uuid.UUID) (*productsvc.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubProductService) Create(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	s.createInput = input
	return &productsvc.ProductDTO{ID: uuid.New(), Name: input.Name, Price: input.Price}, s.err
}

func (s *stubProductService) Update(ctx context.Context, id uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
	s.updateInput = input
	return &productsvc.ProductDTO{ID: id}, s.err
}

func (s *stubProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func (s *stubProductService) CartProduct(ctx context.Context, id uuid.UUID) (*cart.CatalogEntry, error) {
	return nil, s.err
}

func TestProductListPassesFilters(t *testing.T) {
	categoryID := uuid.New()
	svc := &stubProductService{products: []productsvc.ProductDTO{{Name: "Honey"}}}
	req := httptest.NewRequest(http.MethodGet, "/api/products?category_id="+categoryID.String()+"&is_featured=true&limit=5&skip=10", nil)
	resp := httptest.NewRecorder()

	ProductList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	filters := svc.listInput.Filters
	if filters.CategoryID == nil || *filters.CategoryID != categoryID {
		t.Fatalf("category filter not passed: %+v", filters)
	}
	if filters.IsFeatured == nil || !*filters.IsFeatured {
		t.Fatalf("featured filter not passed: %+v", filters)
	}
	if filters.IncludeInactive {
		t.Fatalf("public listing must not include inactive products")
	}
	if svc.listInput.Pagination.Limit != 5 || svc.listInput.Pagination.Skip != 10 {
		t.Fatalf("unexpected pagination: %+v", svc.listInput.Pagination)
	}
	var products []productsvc.ProductDTO
	decodeData(t, resp, &products)
	if len(products) != 1 || products[0].Name != "Honey" {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestAdminProductListIncludesInactive(t *testing.T) {
	svc := &stubProductService{}
	req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
	resp := httptest.NewRecorder()

	AdminProductList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !svc.listInput.Filters.IncludeInactive {
		t.Fatalf("admin listing should include inactive products")
	}
}

func TestProductListRejectsBadCategory(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/products?category_id=nope", nil)
	resp := httptest.NewRecorder()

	ProductList(&stubProductService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProductBrowseParsesFilterState(t *testing.T) {
	svc := &stubProductService{}
	req := httptest.NewRequest(http.MethodGet, "/api/products/browse?search=kale&in_stock_only=true&sort_by=price-low&limit=12", nil)
	resp := httptest.NewRecorder()

	ProductBrowse(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.browseInput.State.Search != "kale" {
		t.Fatalf("search term not parsed: %+v", svc.browseInput.State)
	}
	if svc.browseInput.Pagination.Limit != 12 {
		t.Fatalf("limit not parsed: %+v", svc.browseInput.Pagination)
	}
	var result catalog.Result
	decodeData(t, resp, &result)
	if result.Total != 1 || len(result.Products) != 1 {
		t.Fatalf("unexpected browse result: %+v", result)
	}
}

func TestProductSearchRequiresQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/products/search", nil)
	resp := httptest.NewRecorder()

	ProductSearch(&stubProductService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected error code %s", code)
	}
}

func TestProductGetBySlugNotFound(t *testing.T) {
	svc := &stubProductService{err: pkgerrors.NotFound("product")}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/slug/missing", nil), "slug", "missing")
	resp := httptest.NewRecorder()

	ProductGetBySlug(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestProductGetRejectsBadID(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/abc", nil), "productId", "abc")
	resp := httptest.NewRecorder()

	ProductGet(&stubProductService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminProductCreate(t *testing.T) {
	svc := &stubProductService{}
	body := `{
		"slug": "raw-honey",
		"name": "  Raw Honey  ",
		"description": "From the hives",
		"category_id": "` + uuid.NewString() + `",
		"price": "12.50",
		"affiliate_url": "https://example.com/honey",
		"rating": 4.5,
		"review_count": 3
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", strings.NewReader(body))
	resp := httptest.NewRecorder()

	AdminProductCreate(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.createInput.Name != "Raw Honey" {
		t.Fatalf("name not sanitised: %q", svc.createInput.Name)
	}
	if !svc.createInput.Price.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("unexpected price %s", svc.createInput.Price)
	}
	if !svc.createInput.InStock || !svc.createInput.IsActive {
		t.Fatalf("in_stock and is_active should default to true")
	}
}

func TestAdminProductCreateRejectsInvalidImage(t *testing.T) {
	body := `{
		"slug": "raw-honey",
		"name": "Raw Honey",
		"description": "From the hives",
		"category_id": "` + uuid.NewString() + `",
		"price": "12.50",
		"affiliate_url": "https://example.com/honey",
		"image_base64": "bm90IGFuIGltYWdl"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", strings.NewReader(body))
	resp := httptest.NewRecorder()

	AdminProductCreate(&stubProductService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminProductCreateRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", strings.NewReader(`{"bogus":true}`))
	resp := httptest.NewRecorder()

	AdminProductCreate(&stubProductService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminProductUpdatePartial(t *testing.T) {
	svc := &stubProductService{}
	id := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/api/admin/products/"+id.String(), strings.NewReader(`{"price":"8.00","in_stock":false}`))
	req = withURLParam(req, "productId", id.String())
	resp := httptest.NewRecorder()

	AdminProductUpdate(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.updateInput.Price == nil || !svc.updateInput.Price.Equal(decimal.RequireFromString("8")) {
		t.Fatalf("price not passed: %+v", svc.updateInput.Price)
	}
	if svc.updateInput.InStock == nil || *svc.updateInput.InStock {
		t.Fatalf("in_stock not passed")
	}
	if svc.updateInput.Name != nil {
		t.Fatalf("absent fields must stay nil")
	}
}

func TestAdminProductDeleteConflict(t *testing.T) {
	id := uuid.New()
	svc := &stubProductService{err: pkgerrors.NotFound("product")}
	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/admin/products/"+id.String(), nil), "productId", id.String())
	resp := httptest.NewRecorder()

	AdminProductDelete(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestProductHandlersNilService(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	resp := httptest.NewRecorder()

	ProductList(nil, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
