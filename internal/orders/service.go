package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	sessionOrderLimit      = 100
	orderNumberPrefix      = "ORD-"
	maxOrderNumberAttempts = 3
)

var priceTolerance = decimal.RequireFromString("0.01")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartStore interface {
	Load(ctx context.Context, sessionID string) (*cart.Cart, error)
	Delete(ctx context.Context, sessionID string) error
}

type productLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// Service defines checkout and order tracking for shopper sessions, plus the
// status changes operators make from the admin surface.
type Service interface {
	Create(ctx context.Context, sessionID string, input CreateOrderInput) (*OrderDTO, error)
	List(ctx context.Context, sessionID string) ([]OrderDTO, error)
	Get(ctx context.Context, sessionID string, id uuid.UUID) (*OrderDTO, error)
	GetByNumber(ctx context.Context, orderNumber string) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error
}

type service struct {
	repo     Repository
	tx       txRunner
	carts    cartStore
	products productLookup
	policy   pricing.Policy
	logg     *logger.Logger
	newID    func() string
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, tx txRunner, carts cartStore, products productLookup, policy pricing.Policy, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:     repo,
		tx:       tx,
		carts:    carts,
		products: products,
		policy:   policy,
		logg:     logg,
		newID:    uuid.NewString,
	}, nil
}

// Create places an order for the session's cart using current catalog
// prices, then empties the cart.
func (s *service) Create(ctx context.Context, sessionID string, input CreateOrderInput) (*OrderDTO, error) {
	sessionID, err := requireSession(sessionID)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithSessionID(ctx, sessionID)

	current, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	lines := current.Lines()
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart products")
	}

	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for i, line := range lines {
		product, ok := products[line.ProductID]
		if !ok || !product.IsActive {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "product %s not found", line.ProductID)
		}
		if !product.InStock {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "product %s is out of stock", product.Name)
		}
		items = append(items, models.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductImage: product.ImageBase64,
			UnitPrice:    product.Price,
			Quantity:     line.Quantity,
			Position:     i,
		})
		subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	if !pricing.WithinTolerance(subtotal, input.Subtotal, priceTolerance) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price mismatch").WithDetails(map[string]any{
			"expected_subtotal": pricing.Format(subtotal),
			"received_subtotal": pricing.Format(input.Subtotal),
		})
	}

	quote := s.policy.Quote(subtotal).Rounded()
	addr := input.ShippingAddress
	order := &models.Order{
		SessionID:     sessionID,
		FirstName:     strings.TrimSpace(addr.FirstName),
		LastName:      strings.TrimSpace(addr.LastName),
		Email:         strings.TrimSpace(addr.Email),
		Phone:         addr.Phone,
		Address:       strings.TrimSpace(addr.Address),
		City:          strings.TrimSpace(addr.City),
		State:         strings.TrimSpace(addr.State),
		ZipCode:       strings.TrimSpace(addr.ZipCode),
		Country:       strings.TrimSpace(addr.Country),
		Subtotal:      quote.Subtotal,
		Shipping:      quote.Shipping,
		Tax:           quote.Tax,
		Total:         quote.Total,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		Items:         items,
	}

	if err := s.insert(ctx, order); err != nil {
		return nil, err
	}

	if err := s.carts.Delete(ctx, sessionID); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", order.ID.String()), "clear cart after order", err)
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"total":        pricing.Format(order.Total),
	}), "order placed")

	dto := newOrderDTO(order)
	return &dto, nil
}

// insert stores the order, drawing a fresh order number when the random
// one collides.
func (s *service) insert(ctx context.Context, order *models.Order) error {
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		order.ID = uuid.Nil
		for i := range order.Items {
			order.Items[i].ID = uuid.Nil
			order.Items[i].OrderID = uuid.Nil
		}
		order.OrderNumber = s.orderNumber()
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			_, err := s.repo.WithTx(tx).Create(ctx, order)
			return err
		})
		if err == nil {
			return nil
		}
		if !db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "could not allocate order number")
}

func (s *service) orderNumber() string {
	return orderNumberPrefix + strings.ToUpper(s.newID()[:8])
}

func (s *service) List(ctx context.Context, sessionID string) ([]OrderDTO, error) {
	sessionID, err := requireSession(sessionID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListBySession(ctx, sessionID, sessionOrderLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newOrderDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, sessionID string, id uuid.UUID) (*OrderDTO, error) {
	sessionID, err := requireSession(sessionID)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.FindForSession(ctx, id, sessionID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	dto := newOrderDTO(order)
	return &dto, nil
}

// GetByNumber looks an order up without a session, for customer service.
func (s *service) GetByNumber(ctx context.Context, orderNumber string) (*OrderDTO, error) {
	orderNumber = strings.ToUpper(strings.TrimSpace(orderNumber))
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	dto := newOrderDTO(order)
	return &dto, nil
}

// UpdateStatus moves any order to a new fulfilment status.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	if !status.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order status %q", status)
	}
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	if !updated {
		return pkgerrors.NotFound("order")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"order_id": id.String(), "status": string(status)}), "order status updated")
	return nil
}

func (s *service) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error {
	if !status.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid payment status %q", status)
	}
	updated, err := s.repo.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update payment status")
	}
	if !updated {
		return pkgerrors.NotFound("order")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"order_id": id.String(), "payment_status": string(status)}), "payment status updated")
	return nil
}

func requireSession(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return sessionID, nil
}
