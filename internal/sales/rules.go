package sales

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"retail_sales/internal/money"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RuleScope selects which sale rules apply.
type RuleScope int

const (
	// ScopeConstruction checks only the customer and branch references; an
	// empty sale is a valid in-progress state.
	ScopeConstruction RuleScope = iota
	// ScopePersistence additionally requires at least one item.
	ScopePersistence
)

type saleRules struct {
	CustomerID uuid.UUID  `validate:"required"`
	BranchID   uuid.UUID  `validate:"required"`
	Items      []SaleItem `validate:"min=1"`
}

type saleItemRules struct {
	ProductID   uuid.UUID   `validate:"required"`
	ProductName string      `validate:"required"`
	Quantity    int         `validate:"gt=0"`
	UnitPrice   money.Money `validate:"gte=0"`
}

type discountRules struct {
	Discount decimal.Decimal `validate:"fraction"`
}

var ruleMessages = map[string]string{
	"CustomerID.required":  "Customer ID is required.",
	"BranchID.required":    "Branch ID is required.",
	"Items.min":            "A sale must have at least one item.",
	"ProductID.required":   "Product ID is required.",
	"ProductName.required": "Product name is required.",
	"Quantity.gt":          "Quantity must be greater than zero.",
	"UnitPrice.gte":        "Unit price cannot be negative.",
	"Discount.fraction":    "Discount must be between 0 and 1.",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// uuid.Nil reads as empty so "required" rejects it.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if id, ok := field.Interface().(uuid.UUID); ok && id != uuid.Nil {
			return id.String()
		}
		return ""
	}, uuid.UUID{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if m, ok := field.Interface().(money.Money); ok {
			return m.Float64()
		}
		return 0.0
	}, money.Money{})
	// Decimals travel as their exact string form so range checks never
	// round through float64.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return ""
	}, decimal.Decimal{})
	_ = v.RegisterValidation("fraction", isFraction)
	return v
}

// isFraction accepts decimals in [0,1].
func isFraction(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.Sign() >= 0 && d.Cmp(decimal.NewFromInt(1)) <= 0
}

// SaleViolations evaluates the sale rules for the given scope against the
// sale's current state. It has no side effects.
func SaleViolations(s *Sale, scope RuleScope) []Violation {
	candidate := saleRules{
		CustomerID: s.customerID,
		BranchID:   s.branchID,
		Items:      s.items,
	}
	if scope == ScopeConstruction {
		return toViolations(validate.StructPartial(candidate, "CustomerID", "BranchID"))
	}
	return toViolations(validate.Struct(candidate))
}

// ItemViolations evaluates the line item rules. The quantity ceiling is not
// one of them; it belongs to the sale.
func ItemViolations(item SaleItem) []Violation {
	return toViolations(validate.Struct(saleItemRules{
		ProductID:   item.productID,
		ProductName: strings.TrimSpace(item.productName),
		Quantity:    item.quantity,
		UnitPrice:   item.unitPrice,
	}))
}

// DiscountViolations checks that a discount fraction lies in [0,1].
func DiscountViolations(discount decimal.Decimal) []Violation {
	return toViolations(validate.Struct(discountRules{Discount: discount}))
}

func toViolations(err error) []Violation {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Violation{{Message: err.Error()}}
	}
	out := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := ruleMessages[fe.StructField()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s failed the %q rule.", fe.StructField(), fe.Tag())
		}
		out = append(out, Violation{Field: fe.StructField(), Message: msg})
	}
	return out
}
