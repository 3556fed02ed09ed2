package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/health"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubHealthService struct {
	health.Service
	listInput    health.ListArticlesInput
	category     string
	verifiedOnly bool
	limit        int
	submitted    health.TestimonialInput
	article      health.ArticleInput
	verifiedID   uuid.UUID
	verified     bool
	err          error
}

func (s *stubHealthService) ListArticles(ctx context.Context, input health.ListArticlesInput) ([]health.ArticleDTO, error) {
	s.listInput = input
	return []health.ArticleDTO{}, s.err
}

func (s *stubHealthService) ArticlesByCategory(ctx context.Context, category string) ([]health.ArticleDTO, error) {
	s.category = category
	return []health.ArticleDTO{}, s.err
}

func (s *stubHealthService) Categories(ctx context.Context) ([]health.CategoryCount, error) {
	return []health.CategoryCount{{Name: "Dental", Count: 2}}, s.err
}

func (s *stubHealthService) Benefits() []health.Benefit {
	return []health.Benefit{{Title: "Physical Exercise"}}
}

func (s *stubHealthService) ListTestimonials(ctx context.Context, verifiedOnly bool, limit int) ([]health.TestimonialDTO, error) {
	s.verifiedOnly = verifiedOnly
	s.limit = limit
	return []health.TestimonialDTO{}, s.err
}

func (s *stubHealthService) SubmitTestimonial(ctx context.Context, input health.TestimonialInput) (*health.TestimonialDTO, error) {
	s.submitted = input
	return &health.TestimonialDTO{Name: input.Name, Rating: input.Rating}, s.err
}

func (s *stubHealthService) CreateArticle(ctx context.Context, input health.ArticleInput) (*health.ArticleDTO, error) {
	s.article = input
	return &health.ArticleDTO{Title: input.Title}, s.err
}

func (s *stubHealthService) VerifyTestimonial(ctx context.Context, id uuid.UUID, verified bool) error {
	s.verifiedID = id
	s.verified = verified
	return s.err
}

func TestHealthArticleListParsesFilters(t *testing.T) {
	svc := &stubHealthService{}
	resp := httptest.NewRecorder()
	HealthArticleList(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health/articles?category=Dental&featured_only=true&limit=5&skip=10", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	in := svc.listInput
	if in.Filters.Category != "Dental" || !in.Filters.FeaturedOnly || in.Pagination.Limit != 5 || in.Pagination.Skip != 10 {
		t.Fatalf("unexpected list input: %+v", in)
	}

	resp = httptest.NewRecorder()
	HealthArticleList(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health/articles", nil))
	if svc.listInput.Pagination.Limit != defaultHealthListLimit || svc.listInput.Filters.FeaturedOnly {
		t.Fatalf("unexpected defaults: %+v", svc.listInput)
	}

	resp = httptest.NewRecorder()
	HealthArticleList(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health/articles?featured_only=maybe", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestHealthArticlesByCategoryUsesPathParam(t *testing.T) {
	svc := &stubHealthService{}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/health/articles/category/nutrition", nil), "category", "nutrition")
	resp := httptest.NewRecorder()

	HealthArticlesByCategory(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK || svc.category != "nutrition" {
		t.Fatalf("unexpected result %d %q", resp.Code, svc.category)
	}
}

func TestHealthCategoriesAndBenefitsAreWrapped(t *testing.T) {
	svc := &stubHealthService{}

	resp := httptest.NewRecorder()
	HealthCategories(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health/categories", nil))
	var categories struct {
		Categories []health.CategoryCount `json:"categories"`
	}
	decodeData(t, resp, &categories)
	if len(categories.Categories) != 1 || categories.Categories[0].Count != 2 {
		t.Fatalf("unexpected categories: %+v", categories)
	}

	resp = httptest.NewRecorder()
	HealthBenefits(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health/benefits", nil))
	var benefits struct {
		Benefits []health.Benefit `json:"benefits"`
	}
	decodeData(t, resp, &benefits)
	if len(benefits.Benefits) != 1 || benefits.Benefits[0].Title != "Physical Exercise" {
		t.Fatalf("unexpected benefits: %+v", benefits)
	}
}

func TestHealthTestimonialListDefaultsToVerified(t *testing.T) {
	svc := &stubHealthService{}

	HealthTestimonialList(svc, nil).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health/testimonials", nil))
	if !svc.verifiedOnly || svc.limit != defaultHealthListLimit {
		t.Fatalf("unexpected defaults: verified=%v limit=%d", svc.verifiedOnly, svc.limit)
	}

	HealthTestimonialList(svc, nil).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health/testimonials?verified_only=false&limit=3", nil))
	if svc.verifiedOnly || svc.limit != 3 {
		t.Fatalf("unexpected overrides: verified=%v limit=%d", svc.verifiedOnly, svc.limit)
	}

	resp := httptest.NewRecorder()
	HealthTestimonialList(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health/testimonials?limit=0", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestHealthTestimonialSubmit(t *testing.T) {
	svc := &stubHealthService{}
	body := `{"name":" Jo ","avatar":"J","rating":5,"text":"Great toys","pet_name":"Biscuit"}`
	resp := httptest.NewRecorder()

	HealthTestimonialSubmit(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/health/testimonials", strings.NewReader(body)))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.submitted.Name != "Jo" || svc.submitted.Rating != 5 {
		t.Fatalf("unexpected submission: %+v", svc.submitted)
	}

	resp = httptest.NewRecorder()
	HealthTestimonialSubmit(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/health/testimonials", strings.NewReader(`{"name":"Jo","text":"x","rating":9}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminHealthArticleCreate(t *testing.T) {
	svc := &stubHealthService{}
	body := `{"title":"Dental Care","excerpt":"Teeth","content":"Brush daily","image":"https://cdn.example/d.jpg","read_time":"3 min read","category":"Dental","featured":true}`
	resp := httptest.NewRecorder()

	AdminHealthArticleCreate(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/admin/health/articles", strings.NewReader(body)))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.article.Category != "Dental" || !svc.article.Featured || !svc.article.PublishedAt.IsZero() {
		t.Fatalf("unexpected article input: %+v", svc.article)
	}

	resp = httptest.NewRecorder()
	AdminHealthArticleCreate(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/admin/health/articles", strings.NewReader(`{"title":"x"}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminTestimonialVerify(t *testing.T) {
	svc := &stubHealthService{}
	id := uuid.New()
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/admin/health/testimonials/"+id.String()+"/verify", strings.NewReader(`{"verified":true}`)), "testimonialId", id.String())
	resp := httptest.NewRecorder()

	AdminTestimonialVerify(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK || svc.verifiedID != id || !svc.verified {
		t.Fatalf("unexpected verify call: %d %s %v", resp.Code, svc.verifiedID, svc.verified)
	}

	req = withURLParam(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{}`)), "testimonialId", id.String())
	resp = httptest.NewRecorder()
	AdminTestimonialVerify(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	svc.err = pkgerrors.NotFound("testimonial")
	req = withURLParam(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"verified":false}`)), "testimonialId", id.String())
	resp = httptest.NewRecorder()
	AdminTestimonialVerify(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestHealthHandlersNilService(t *testing.T) {
	resp := httptest.NewRecorder()
	HealthBenefits(nil, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health/benefits", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
