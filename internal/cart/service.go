package cart

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/google/uuid"
)

// Service exposes the session cart operations used by the HTTP layer and checkout.
type Service interface {
	Get(ctx context.Context, sessionID string) (*View, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (*View, error)
	UpdateItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, sessionID string) (*View, error)
}

// AddItemInput is the validated payload for adding a product.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CatalogEntry is what the cart needs to know about a product before adding it.
type CatalogEntry struct {
	Product  Product
	IsActive bool
	InStock  bool
}

// ProductSource resolves products for the cart. Missing products must be
// reported as a NOT_FOUND error.
type ProductSource interface {
	CartProduct(ctx context.Context, id uuid.UUID) (*CatalogEntry, error)
}

type mutationRecorder interface {
	IncMutation(op string)
}

type service struct {
	store    Store
	products ProductSource
	policy   pricing.Policy
	metrics  mutationRecorder
	logg     *logger.Logger
}

// NewService wires the cart service.
func NewService(store Store, products ProductSource, policy pricing.Policy, metrics mutationRecorder, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product source required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		store:    store,
		products: products,
		policy:   policy,
		metrics:  metrics,
		logg:     logg,
	}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*View, error) {
	sessionID, err := requireSession(sessionID)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return NewView(sessionID, c, s.policy), nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*View, error) {
	sessionID, err := requireSession(sessionID)
	if err != nil {
		return nil, err
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}

	entry, err := s.products.CartProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !entry.IsActive {
		return nil, pkgerrors.NotFound("product")
	}
	if !entry.InStock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock")
	}

	return s.mutate(ctx, sessionID, "add", func(c *Cart) error {
		c.AddToCart(entry.Product, input.Quantity)
		return nil
	})
}

func (s *service) UpdateItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*View, error) {
	sessionID, err := requireSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, "update", func(c *Cart) error {
		c.UpdateQuantity(productID, quantity)
		return nil
	})
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*View, error) {
	sessionID, err := requireSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, "remove", func(c *Cart) error {
		c.RemoveFromCart(productID)
		return nil
	})
}

func (s *service) Clear(ctx context.Context, sessionID string) (*View, error) {
	sessionID, err := requireSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	s.record("clear")
	return NewView(sessionID, New(), s.policy), nil
}

func (s *service) mutate(ctx context.Context, sessionID, op string, fn func(*Cart) error) (*View, error) {
	c, err := s.store.Update(ctx, sessionID, fn)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		s.logg.Error(s.logg.WithFields(ctx, map[string]any{"session_id": sessionID, "op": op}), "cart mutation failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart")
	}
	s.record(op)
	return NewView(sessionID, c, s.policy), nil
}

func (s *service) record(op string) {
	if s.metrics != nil {
		s.metrics.IncMutation(op)
	}
}

func requireSession(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return sessionID, nil
}
