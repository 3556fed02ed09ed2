package orders

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingAddress is where an order ships to.
type ShippingAddress struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone,omitempty"`
	Address   string  `json:"address" validate:"required"`
	City      string  `json:"city" validate:"required"`
	State     string  `json:"state" validate:"required"`
	ZipCode   string  `json:"zip_code" validate:"required"`
	Country   string  `json:"country" validate:"required"`
}

// CreateOrderInput is the checkout request. Subtotal is the figure the
// shopper saw and must agree with the server's recomputation.
type CreateOrderInput struct {
	ShippingAddress ShippingAddress `json:"shipping_address" validate:"required"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

// OrderItemDTO is one line of a placed order.
type OrderItemDTO struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductImage *string   `json:"product_image,omitempty"`
	Price        string    `json:"price"`
	Quantity     int       `json:"quantity"`
}

// OrderDTO is the order payload returned to shoppers.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	SessionID       string              `json:"session_id"`
	Items           []OrderItemDTO      `json:"items"`
	ShippingAddress ShippingAddress     `json:"shipping_address"`
	Subtotal        string              `json:"subtotal"`
	Shipping        string              `json:"shipping"`
	Tax             string              `json:"tax"`
	Total           string              `json:"total"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func newOrderDTO(o *models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			Price:        pricing.Format(item.UnitPrice),
			Quantity:     item.Quantity,
		})
	}
	return OrderDTO{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		SessionID:   o.SessionID,
		Items:       items,
		ShippingAddress: ShippingAddress{
			FirstName: o.FirstName,
			LastName:  o.LastName,
			Email:     o.Email,
			Phone:     o.Phone,
			Address:   o.Address,
			City:      o.City,
			State:     o.State,
			ZipCode:   o.ZipCode,
			Country:   o.Country,
		},
		Subtotal:      pricing.Format(o.Subtotal),
		Shipping:      pricing.Format(o.Shipping),
		Tax:           pricing.Format(o.Tax),
		Total:         pricing.Format(o.Total),
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
