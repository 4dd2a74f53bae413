package sales

import (
	"retail_sales/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleItem is one product line within a sale. Items are owned by their sale
// and are never shared or mutated outside it.
type SaleItem struct {
	productID   uuid.UUID
	productName string
	quantity    int
	unitPrice   money.Money
	discount    decimal.Decimal
	totalPrice  money.Money
}

// NewSaleItem builds an undiscounted item and runs the item rules on it.
// It does not enforce MaxItemQuantity; only Sale.AddItem does.
func NewSaleItem(productID uuid.UUID, productName string, quantity int, unitPrice money.Money) (SaleItem, error) {
	item := SaleItem{
		productID:   productID,
		productName: productName,
		quantity:    quantity,
		unitPrice:   unitPrice,
		discount:    decimal.Zero,
		totalPrice:  unitPrice.MulInt(quantity),
	}
	if err := newValidationError("sale item", ItemViolations(item)); err != nil {
		return SaleItem{}, err
	}
	return item, nil
}

// applyDiscount sets the discount fraction and recomputes the line total as
// quantity * unitPrice * (1 - discount).
func (i *SaleItem) applyDiscount(discount decimal.Decimal) error {
	if err := newValidationError("sale item", DiscountViolations(discount)); err != nil {
		return err
	}
	i.discount = discount
	i.totalPrice = i.unitPrice.MulInt(i.quantity).Mul(decimal.NewFromInt(1).Sub(discount))
	return nil
}

func (i SaleItem) ProductID() uuid.UUID      { return i.productID }
func (i SaleItem) ProductName() string       { return i.productName }
func (i SaleItem) Quantity() int             { return i.quantity }
func (i SaleItem) UnitPrice() money.Money    { return i.unitPrice }
func (i SaleItem) Discount() decimal.Decimal { return i.discount }
func (i SaleItem) TotalPrice() money.Money   { return i.totalPrice }
