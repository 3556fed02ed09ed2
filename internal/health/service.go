package health

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
)

const (
	defaultArticleLimit     = 10
	categoryArticleLimit    = 50
	defaultTestimonialLimit = 10
	categoryCountLimit      = 50
	minRating               = 1
	maxRating               = 5
)

// ArticleDTO is the health article payload.
type ArticleDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	Image       string    `json:"image"`
	ReadTime    string    `json:"read_time"`
	Category    string    `json:"category"`
	Featured    bool      `json:"featured"`
	PublishedAt time.Time `json:"published_at"`
}

// ArticleInput creates an article. A zero PublishedAt means now.
type ArticleInput struct {
	Title       string
	Excerpt     string
	Content     string
	Image       string
	ReadTime    string
	Category    string
	Featured    bool
	PublishedAt time.Time
}

// ListArticlesInput is a filtered, paginated article listing.
type ListArticlesInput struct {
	Filters    ArticleFilters
	Pagination pagination.Params
}

// TestimonialDTO is the testimonial payload.
type TestimonialDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	PetName   string    `json:"pet_name"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// TestimonialInput is a shopper submission.
type TestimonialInput struct {
	Name    string
	Avatar  string
	Rating  int
	Text    string
	PetName string
}

// Benefit is one entry of the static health benefits panel.
type Benefit struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var benefits = []Benefit{
	{Icon: "🧠", Title: "Mental Stimulation", Description: "Our toys are designed to challenge your pets mentally, preventing boredom and destructive behavior."},
	{Icon: "💪", Title: "Physical Exercise", Description: "Promote healthy activity levels with toys that encourage movement and play."},
	{Icon: "❤️", Title: "Emotional Wellbeing", Description: "Reduce stress and anxiety through engaging, species-appropriate enrichment activities."},
	{Icon: "🏥", Title: "Health Benefits", Description: "Many of our toys support dental health, weight management, and natural behaviors."},
}

// Service exposes the pet health hub: articles, testimonials and the
// benefits panel.
type Service interface {
	ListArticles(ctx context.Context, input ListArticlesInput) ([]ArticleDTO, error)
	GetArticle(ctx context.Context, id uuid.UUID) (*ArticleDTO, error)
	ArticlesByCategory(ctx context.Context, category string) ([]ArticleDTO, error)
	CreateArticle(ctx context.Context, input ArticleInput) (*ArticleDTO, error)
	Categories(ctx context.Context) ([]CategoryCount, error)
	Benefits() []Benefit
	ListTestimonials(ctx context.Context, verifiedOnly bool, limit int) ([]TestimonialDTO, error)
	SubmitTestimonial(ctx context.Context, input TestimonialInput) (*TestimonialDTO, error)
	VerifyTestimonial(ctx context.Context, id uuid.UUID, verified bool) error
}

type service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService wires the health hub service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("health repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) ListArticles(ctx context.Context, input ListArticlesInput) ([]ArticleDTO, error) {
	page := input.Pagination
	if page.Limit <= 0 {
		page.Limit = defaultArticleLimit
	}
	rows, err := s.repo.ListArticles(ctx, input.Filters, page.Normalize(pagination.MaxLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list health articles")
	}
	return newArticleDTOs(rows), nil
}

func (s *service) GetArticle(ctx context.Context, id uuid.UUID) (*ArticleDTO, error) {
	article, err := s.repo.FindArticle(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("article")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load health article")
	}
	dto := newArticleDTO(article)
	return &dto, nil
}

// ArticlesByCategory returns up to fifty articles whose category contains
// the given text.
func (s *service) ArticlesByCategory(ctx context.Context, category string) ([]ArticleDTO, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	rows, err := s.repo.ListArticles(ctx, ArticleFilters{Category: category}, pagination.Params{Limit: categoryArticleLimit})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list health articles")
	}
	return newArticleDTOs(rows), nil
}

func (s *service) CreateArticle(ctx context.Context, input ArticleInput) (*ArticleDTO, error) {
	article := &models.HealthArticle{
		Title:       strings.TrimSpace(input.Title),
		Excerpt:     strings.TrimSpace(input.Excerpt),
		Content:     input.Content,
		Image:       strings.TrimSpace(input.Image),
		ReadTime:    strings.TrimSpace(input.ReadTime),
		Category:    strings.TrimSpace(input.Category),
		Featured:    input.Featured,
		PublishedAt: input.PublishedAt.UTC(),
	}
	switch {
	case article.Title == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	case strings.TrimSpace(article.Content) == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	case article.Category == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if input.PublishedAt.IsZero() {
		article.PublishedAt = s.now().UTC()
	}
	created, err := s.repo.CreateArticle(ctx, article)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create health article")
	}
	s.logg.Info(s.logg.WithField(ctx, "article_id", created.ID.String()), "health article created")
	dto := newArticleDTO(created)
	return &dto, nil
}

func (s *service) Categories(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.repo.CategoryCounts(ctx, categoryCountLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count health categories")
	}
	if rows == nil {
		rows = []CategoryCount{}
	}
	return rows, nil
}

// Benefits returns a copy of the static panel.
func (s *service) Benefits() []Benefit {
	return append([]Benefit(nil), benefits...)
}

func (s *service) ListTestimonials(ctx context.Context, verifiedOnly bool, limit int) ([]TestimonialDTO, error) {
	if limit <= 0 {
		limit = defaultTestimonialLimit
	}
	rows, err := s.repo.ListTestimonials(ctx, verifiedOnly, pagination.NormalizeLimit(limit, pagination.MaxLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list testimonials")
	}
	out := make([]TestimonialDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newTestimonialDTO(&rows[i]))
	}
	return out, nil
}

// SubmitTestimonial stores a shopper testimonial as unverified.
func (s *service) SubmitTestimonial(ctx context.Context, input TestimonialInput) (*TestimonialDTO, error) {
	testimonial := &models.Testimonial{
		Name:    strings.TrimSpace(input.Name),
		Avatar:  strings.TrimSpace(input.Avatar),
		Rating:  input.Rating,
		Text:    strings.TrimSpace(input.Text),
		PetName: strings.TrimSpace(input.PetName),
	}
	switch {
	case testimonial.Name == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case testimonial.Text == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "text is required")
	case testimonial.Rating < minRating || testimonial.Rating > maxRating:
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "rating must be between %d and %d", minRating, maxRating)
	}
	created, err := s.repo.CreateTestimonial(ctx, testimonial)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create testimonial")
	}
	s.logg.Info(s.logg.WithField(ctx, "testimonial_id", created.ID.String()), "testimonial submitted")
	dto := newTestimonialDTO(created)
	return &dto, nil
}

func (s *service) VerifyTestimonial(ctx context.Context, id uuid.UUID, verified bool) error {
	found, err := s.repo.SetVerified(ctx, id, verified)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify testimonial")
	}
	if !found {
		return pkgerrors.NotFound("testimonial")
	}
	return nil
}

func newArticleDTOs(rows []models.HealthArticle) []ArticleDTO {
	out := make([]ArticleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newArticleDTO(&rows[i]))
	}
	return out
}

func newArticleDTO(a *models.HealthArticle) ArticleDTO {
	return ArticleDTO{
		ID:          a.ID,
		Title:       a.Title,
		Excerpt:     a.Excerpt,
		Content:     a.Content,
		Image:       a.Image,
		ReadTime:    a.ReadTime,
		Category:    a.Category,
		Featured:    a.Featured,
		PublishedAt: a.PublishedAt,
	}
}

func newTestimonialDTO(t *models.Testimonial) TestimonialDTO {
	return TestimonialDTO{
		ID:        t.ID,
		Name:      t.Name,
		Avatar:    t.Avatar,
		Rating:    t.Rating,
		Text:      t.Text,
		PetName:   t.PetName,
		Verified:  t.Verified,
		CreatedAt: t.CreatedAt,
	}
}
