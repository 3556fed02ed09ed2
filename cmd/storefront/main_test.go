package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/types"
)

func fakeStore(t *testing.T) *httptest.Server {
	t.Helper()
	products := []map[string]any{
		{"id": uuid.New(), "slug": "omega-3", "name": "Omega 3", "price": "20.00", "rating": 4.8, "in_stock": true, "category_name": "Heart"},
		{"id": uuid.New(), "slug": "zinc", "name": "Zinc", "price": "5.50", "original_price": "7.00", "rating": 4.1, "in_stock": true, "category_name": "Minerals"},
		{"id": uuid.New(), "slug": "magnesium", "name": "Magnesium", "price": "12.00", "rating": 4.5, "in_stock": false, "category_name": "Minerals"},
	}
	write := func(w http.ResponseWriter, data any) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(types.SuccessEnvelope{Data: data}))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("skip") != "" {
			write(w, []any{})
			return
		}
		write(w, products)
	})
	mux.HandleFunc("/api/products/slug/", func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimPrefix(r.URL.Path, "/api/products/slug/")
		for _, p := range products {
			if p["slug"] == slug {
				write(w, p)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(types.ErrorEnvelope{Error: types.APIError{Code: "NOT_FOUND", Message: "product not found"}})
	})
	mux.HandleFunc("/api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(types.ErrorEnvelope{Error: types.APIError{Code: "UNAUTHORIZED", Message: "invalid credentials"}})
			return
		}
		write(w, map[string]any{"access_token": "tok", "expires_at": time.Now().Add(time.Hour)})
	})
	mux.HandleFunc("/api/admin/stats", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		write(w, map[string]any{"total_products": 3, "total_categories": 2, "total_blog_posts": 1, "featured_products": 1})
	})
	mux.HandleFunc("/api/admin/logout", func(w http.ResponseWriter, r *http.Request) {
		write(w, map[string]string{"message": "logged out"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	t.Setenv("STOREFRONT_API_URL", server.URL+"/api")
	return server
}

func TestBrowseFiltersAndSortsLocally(t *testing.T) {
	fakeStore(t)
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"browse", "-in-stock", "-sort", "price-low"}, &out))
	text := out.String()
	assert.NotContains(t, text, "Magnesium")
	assert.Less(t, strings.Index(text, "Zinc"), strings.Index(text, "Omega 3"))
	assert.Contains(t, text, "5.50 (was 7.00)")
	assert.Contains(t, text, "2 products")
}

func TestQuotePricesItemsBySlug(t *testing.T) {
	fakeStore(t)
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"quote", "-item", "omega-3:2", "-item", "zinc"}, &out))
	text := out.String()
	assert.Contains(t, text, "45.50")
	assert.Contains(t, text, "9.99")
	assert.Contains(t, text, "3.64")
	assert.Contains(t, text, "59.13")
	assert.Contains(t, text, "Add 4.50 more for free shipping")
}

func TestQuoteUnknownSlugFails(t *testing.T) {
	fakeStore(t)
	err := run(context.Background(), []string{"quote", "-item", "nope"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product not found")
}

func TestStatsLogsInWithEnvPassword(t *testing.T) {
	fakeStore(t)
	t.Setenv("STOREFRONT_ADMIN_PASSWORD", "hunter22")
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"stats", "-username", "owner"}, &out))
	assert.Contains(t, out.String(), "Categories")
	assert.Contains(t, out.String(), "3")

	err := run(context.Background(), []string{"stats", "-username", "owner", "-password", "wrong"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestUsageErrors(t *testing.T) {
	fakeStore(t)
	assert.ErrorIs(t, run(context.Background(), nil, &bytes.Buffer{}), errUsage)
	assert.ErrorIs(t, run(context.Background(), []string{"dance"}, &bytes.Buffer{}), errUsage)
	assert.ErrorIs(t, run(context.Background(), []string{"quote"}, &bytes.Buffer{}), errUsage)
}

func TestItemFlagsParsing(t *testing.T) {
	var items itemFlags
	require.NoError(t, items.Set("zinc:3"))
	require.NoError(t, items.Set("omega"))
	assert.Error(t, items.Set(":2"))
	assert.Error(t, items.Set("zinc:x"))
	assert.Equal(t, "zinc:3,omega:1", items.String())
}
