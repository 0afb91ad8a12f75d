// internal/receipt/sale.go
package receipt

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleType represents how a sale is fulfilled
type SaleType string

const (
	SaleTypeRetail   SaleType = "retail"
	SaleTypeDelivery SaleType = "delivery"
)

// PaymentMethod represents how a sale was paid
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentCard   PaymentMethod = "CARD"
	PaymentWallet PaymentMethod = "WALLET"
)

// SaleItem represents a single line item on a sale. Price is the pack
// price; when IsUnit is set the item was sold by individual unit and the
// effective price divides by UnitsPerPack.
type SaleItem struct {
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	IsUnit       bool            `json:"is_unit"`
	UnitsPerPack int             `json:"units_per_pack"`
	Discount     decimal.Decimal `json:"discount"`
}

// EffectiveUnitPrice returns the price charged per sold unit.
func (i *SaleItem) EffectiveUnitPrice() decimal.Decimal {
	if i.IsUnit && i.UnitsPerPack > 0 {
		return i.Price.Div(decimal.NewFromInt(int64(i.UnitsPerPack)))
	}
	return i.Price
}

// LineTotal returns quantity times effective unit price, minus the
// per-item discount.
func (i *SaleItem) LineTotal() decimal.Decimal {
	total := i.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
	return total.Sub(i.Discount)
}

// Sale represents a completed sale record, consumed read-only by the
// receipt builder.
type Sale struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     int             `json:"order_number"`
	SaleType        SaleType        `json:"sale_type"`
	CustomerName    string          `json:"customer_name,omitempty"`
	CustomerPhone   string          `json:"customer_phone,omitempty"`
	CustomerAddress string          `json:"customer_address,omitempty"`
	Items           []SaleItem      `json:"items"`
	Discount        decimal.Decimal `json:"discount"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Subtotal sums all line totals.
func (s *Sale) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for i := range s.Items {
		subtotal = subtotal.Add(s.Items[i].LineTotal())
	}
	return subtotal
}

// Total applies the global discount and delivery fee to the subtotal.
func (s *Sale) Total() decimal.Decimal {
	return s.Subtotal().Sub(s.Discount).Add(s.DeliveryFee)
}
