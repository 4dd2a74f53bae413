package sales

import "github.com/shopspring/decimal"

// MaxItemQuantity is the most units of one item a single add may carry.
const MaxItemQuantity = 20

var (
	noDiscount   = decimal.Zero
	tierDiscount = decimal.RequireFromString("0.10")
	bulkDiscount = decimal.RequireFromString("0.20")
)

// DiscountFor returns the discount fraction for one line item. Tiers are
// inclusive on their lower bound and are evaluated per item, never across
// the items of a sale.
func DiscountFor(quantity int) decimal.Decimal {
	switch {
	case quantity >= 10:
		return bulkDiscount
	case quantity >= 4:
		return tierDiscount
	default:
		return noDiscount
	}
}
