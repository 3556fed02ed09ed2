package storeapi

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
)

var errNotLoggedIn = pkgerrors.New(pkgerrors.CodeUnauthorized, "not logged in")

// Session is one console user's view of the store: the admin token, if any,
// and a cart priced locally. It is safe for concurrent use.
type Session struct {
	client *Client
	policy pricing.Policy
	now    func() time.Time

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	admin     *Admin
	cart      *cart.Cart
}

// NewSession starts an anonymous session with an empty cart.
func NewSession(client *Client, policy pricing.Policy) *Session {
	return &Session{
		client: client,
		policy: policy,
		now:    time.Now,
		cart:   cart.New(),
	}
}

// Login exchanges credentials for a token and keeps it for admin calls.
func (s *Session) Login(ctx context.Context, username, password string) (*Admin, error) {
	result, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	admin := result.Admin

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = result.AccessToken
	s.expiresAt = result.ExpiresAt
	s.admin = &admin
	return &admin, nil
}

// Logout revokes the token remotely and always clears local state, including
// the cart. The remote error, if any, is returned after clearing.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.token = ""
	s.expiresAt = time.Time{}
	s.admin = nil
	s.cart.ClearCart()
	s.mu.Unlock()

	if token == "" {
		return nil
	}
	return s.client.Logout(ctx, token)
}

// Authenticated reports whether an unexpired token is held.
func (s *Session) Authenticated() bool {
	_, ok := s.currentToken()
	return ok
}

// Admin returns the logged in admin, or nil.
func (s *Session) Admin() *Admin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.admin == nil {
		return nil
	}
	admin := *s.admin
	return &admin
}

func (s *Session) currentToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", false
	}
	if !s.expiresAt.IsZero() && !s.now().Before(s.expiresAt) {
		return "", false
	}
	return s.token, true
}

func (s *Session) requireToken() (string, error) {
	token, ok := s.currentToken()
	if !ok {
		return "", errNotLoggedIn
	}
	return token, nil
}

func (s *Session) Stats(ctx context.Context) (*Stats, error) {
	token, err := s.requireToken()
	if err != nil {
		return nil, err
	}
	return s.client.Stats(ctx, token)
}

func (s *Session) CreateProduct(ctx context.Context, input ProductInput) (*catalog.Product, error) {
	token, err := s.requireToken()
	if err != nil {
		return nil, err
	}
	return s.client.CreateProduct(ctx, token, input)
}

func (s *Session) UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*catalog.Product, error) {
	token, err := s.requireToken()
	if err != nil {
		return nil, err
	}
	return s.client.UpdateProduct(ctx, token, id, patch)
}

func (s *Session) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	token, err := s.requireToken()
	if err != nil {
		return err
	}
	return s.client.DeleteProduct(ctx, token, id)
}

func (s *Session) CreateCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	token, err := s.requireToken()
	if err != nil {
		return nil, err
	}
	return s.client.CreateCategory(ctx, token, input)
}

func (s *Session) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	token, err := s.requireToken()
	if err != nil {
		return err
	}
	return s.client.DeleteCategory(ctx, token, id)
}

// AddToCart snapshots p into the local cart.
func (s *Session) AddToCart(p catalog.Product, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.AddToCart(CartProduct(p), quantity)
}

func (s *Session) UpdateQuantity(productID uuid.UUID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.UpdateQuantity(productID, quantity)
}

func (s *Session) RemoveFromCart(productID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.RemoveFromCart(productID)
}

// CartLines returns a copy of the local cart lines.
func (s *Session) CartLines() []cart.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Lines()
}

func (s *Session) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.ItemCount()
}

// Quote prices the local cart with the session's policy.
func (s *Session) Quote() pricing.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Quote(s.policy)
}

// CartProduct is the cart snapshot of a catalog listing.
func CartProduct(p catalog.Product) cart.Product {
	return cart.Product{
		ID:           p.ID,
		Name:         p.Name,
		Image:        p.Image,
		UnitPrice:    p.Price,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
	}
}
