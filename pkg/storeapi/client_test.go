package storeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func writeData(t *testing.T, w http.ResponseWriter, status int, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(types.SuccessEnvelope{Data: data}))
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorEnvelope{Error: types.APIError{Code: code, Message: message}})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(server.URL+"/api/", opts...)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ")
	assert.ErrorIs(t, err, errBaseURLRequired)

	_, err = NewClient("not a url")
	assert.Error(t, err)
}

func TestListProductsSendsQueryAndDecodesEnvelope(t *testing.T) {
	categoryID := uuid.New()
	featured := true
	productID := uuid.New()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, categoryID.String(), r.URL.Query().Get("category_id"))
		assert.Equal(t, "true", r.URL.Query().Get("is_featured"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Empty(t, r.URL.Query().Get("skip"))
		assert.Equal(t, "sess-42", r.Header.Get(sessionIDHeader))
		writeData(t, w, http.StatusOK, []map[string]any{{
			"id":             productID,
			"name":           "Sleep Gummies",
			"price":          "19.99",
			"original_price": "24.99",
			"in_stock":       true,
			"is_featured":    true,
			"category_id":    categoryID,
			"category_name":  "Sleep",
		}})
	}, WithSessionID(" sess-42 "))

	products, err := client.ListProducts(context.Background(), ListParams{CategoryID: &categoryID, IsFeatured: &featured, Limit: 5})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, productID, products[0].ID)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("19.99")))
	assert.True(t, products[0].BestSeller)
	assert.True(t, products[0].OnSale())
}

func TestBrowseProductsEncodesFilterState(t *testing.T) {
	state := catalog.FilterState{Search: "magnesium", InStockOnly: true, SortBy: catalog.SortPriceLow}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/browse", r.URL.Path)
		got := catalog.ParseFilterState(r.URL.Query())
		assert.Equal(t, state, got)
		assert.Equal(t, "10", r.URL.Query().Get("skip"))
		writeData(t, w, http.StatusOK, map[string]any{"products": []any{}, "total": 12, "limit": 0, "skip": 10})
	})

	result, err := client.BrowseProducts(context.Background(), state, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 12, result.Total)
	assert.Equal(t, 10, result.Skip)
	assert.Empty(t, result.Products)
}

func TestSearchProductsRequiresQuery(t *testing.T) {
	client, err := NewClient("http://example.test/api", WithHTTPClient(&http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			t.Fatalf("unexpected request")
			return nil, nil
		}),
	}))
	require.NoError(t, err)

	_, err = client.SearchProducts(context.Background(), "  ", 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestErrorEnvelopeBecomesTypedError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusNotFound, string(pkgerrors.CodeNotFound), "product not found")
	})

	_, err := client.GetProductBySlug(context.Background(), "missing")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Equal(t, "product not found", typed.Message())
}

func TestNonEnvelopeErrorIsDependencyFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := client.ListCategories(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Contains(t, err.Error(), "502")
}

func TestTransportErrorIsDependencyFailure(t *testing.T) {
	client, err := NewClient("http://example.test/api", WithHTTPClient(&http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, context.DeadlineExceeded
		}),
	}))
	require.NoError(t, err)

	_, err = client.ListPosts(context.Background(), ListParams{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAdminCallsSendBearerToken(t *testing.T) {
	productID := uuid.New()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get(authorizationHeader))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/admin/stats":
			writeData(t, w, http.StatusOK, Stats{TotalProducts: 3, TotalCategories: 2})
		case r.Method == http.MethodPut && r.URL.Path == "/api/admin/products/"+productID.String():
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]any{"in_stock": false}, body)
			writeData(t, w, http.StatusOK, map[string]any{"id": productID, "in_stock": false, "price": "1.00"})
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})

	ctx := context.Background()
	stats, err := client.Stats(ctx, "tok-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalProducts)

	inStock := false
	product, err := client.UpdateProduct(ctx, "tok-1", productID, ProductPatch{InStock: &inStock})
	require.NoError(t, err)
	assert.False(t, product.InStock)

	require.NoError(t, client.DeleteProduct(ctx, "tok-1", productID))
}

func TestListPostsUsesPostsCollection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/blog/posts", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		writeData(t, w, http.StatusOK, []Post{{Title: "Winter Feeding", Slug: "winter-feeding", Tags: []string{"feed"}}})
	})

	posts, err := client.ListPosts(context.Background(), ListParams{Limit: 3})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "winter-feeding", posts[0].Slug)
}

func TestOrderStatusCallsUseAdminRoutes(t *testing.T) {
	orderID := uuid.New()
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "Bearer tok-2", r.Header.Get(authorizationHeader))
		seen = append(seen, r.URL.Path+"?"+r.URL.RawQuery)
		writeData(t, w, http.StatusOK, map[string]string{"message": "updated"})
	})

	ctx := context.Background()
	require.NoError(t, client.UpdateOrderStatus(ctx, "tok-2", orderID, "shipped"))
	require.NoError(t, client.UpdatePaymentStatus(ctx, "tok-2", orderID, "paid"))
	assert.Equal(t, []string{
		"/api/admin/orders/" + orderID.String() + "/status?status=shipped",
		"/api/admin/orders/" + orderID.String() + "/payment-status?payment_status=paid",
	}, seen)
}

func TestLoginValidatesAndDecodes(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "owner", body["username"])
		writeData(t, w, http.StatusOK, LoginResult{AccessToken: "tok", TokenType: "Bearer", ExpiresAt: expires, Admin: Admin{Username: "owner", Role: "owner"}})
	})

	_, err := client.Login(context.Background(), "", "pw")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	result, err := client.Login(context.Background(), " owner ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", result.AccessToken)
	assert.True(t, result.ExpiresAt.Equal(expires))
	assert.Equal(t, "owner", result.Admin.Role)
}
