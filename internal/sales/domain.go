package sales

import (
	"fmt"
	"strings"
	"time"

	"retail_sales/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is the aggregate root of a sales transaction. It owns its items and
// keeps TotalAmount equal to the sum of their line totals after every
// mutation. A Sale is meant for one caller within one unit of work and is
// not safe for concurrent mutation.
type Sale struct {
	id           uuid.UUID
	saleNumber   string
	date         time.Time
	customerID   uuid.UUID
	customerName string
	branchID     uuid.UUID
	branchName   string
	items        []SaleItem
	totalAmount  money.Money
	cancelled    bool
}

// NewSale starts an open, empty sale. Only the customer and branch
// references are checked here; Validate applies the full rule set.
func NewSale(customerID uuid.UUID, customerName string, branchID uuid.UUID, branchName string) (*Sale, error) {
	now := time.Now().UTC()
	s := &Sale{
		id:           uuid.New(),
		saleNumber:   newSaleNumber(now),
		date:         now,
		customerID:   customerID,
		customerName: customerName,
		branchID:     branchID,
		branchName:   branchName,
		totalAmount:  money.Zero,
	}
	if err := newValidationError("sale", SaleViolations(s, ScopeConstruction)); err != nil {
		return nil, err
	}
	return s, nil
}

// newSaleNumber formats YYYYMMDD-XXXXXXXX from the UTC date and the first
// eight hex digits of a random UUID. Uniqueness is enforced by storage.
func newSaleNumber(at time.Time) string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s", at.UTC().Format("20060102"), random)
}

// AddItem appends a discounted line item and recomputes the total. On error
// the sale is left untouched.
func (s *Sale) AddItem(productID uuid.UUID, productName string, quantity int, unitPrice money.Money) error {
	if s.cancelled {
		return &DomainError{Kind: KindAlreadyCancelled, Message: "cannot add items to a cancelled sale"}
	}
	if quantity > MaxItemQuantity {
		return &DomainError{
			Kind:    KindQuantityLimitExceeded,
			Message: fmt.Sprintf("cannot sell more than %d units of the same item in a single transaction", MaxItemQuantity),
		}
	}

	item, err := NewSaleItem(productID, productName, quantity, unitPrice)
	if err != nil {
		return err
	}
	if err := item.applyDiscount(DiscountFor(quantity)); err != nil {
		return err
	}

	s.items = append(s.items, item)
	s.recalculateTotal()
	return nil
}

// Cancel marks the sale cancelled. Items and total are kept as they are.
func (s *Sale) Cancel() error {
	if s.cancelled {
		return &DomainError{Kind: KindAlreadyCancelled, Message: "sale is already cancelled"}
	}
	s.cancelled = true
	return nil
}

// Validate is the gate before persistence: customer, branch and at least one
// item are required. All failing rules are reported together.
func (s *Sale) Validate() error {
	return newValidationError("sale", SaleViolations(s, ScopePersistence))
}

func (s *Sale) recalculateTotal() {
	total := money.Zero
	for _, item := range s.items {
		total = total.Add(item.totalPrice)
	}
	s.totalAmount = total
}

func (s *Sale) ID() uuid.UUID            { return s.id }
func (s *Sale) SaleNumber() string       { return s.saleNumber }
func (s *Sale) Date() time.Time          { return s.date }
func (s *Sale) CustomerID() uuid.UUID    { return s.customerID }
func (s *Sale) CustomerName() string     { return s.customerName }
func (s *Sale) BranchID() uuid.UUID      { return s.branchID }
func (s *Sale) BranchName() string       { return s.branchName }
func (s *Sale) TotalAmount() money.Money { return s.totalAmount }
func (s *Sale) IsCancelled() bool        { return s.cancelled }

// Items returns a copy of the line items in insertion order.
func (s *Sale) Items() []SaleItem {
	out := make([]SaleItem, len(s.items))
	copy(out, s.items)
	return out
}

// clone returns an independent copy for storage snapshots.
func (s *Sale) clone() *Sale {
	c := *s
	c.items = s.Items()
	return &c
}

// SaleSnapshot carries stored sale state back into an aggregate.
type SaleSnapshot struct {
	ID           uuid.UUID
	SaleNumber   string
	Date         time.Time
	CustomerID   uuid.UUID
	CustomerName string
	BranchID     uuid.UUID
	BranchName   string
	Items        []SaleItemSnapshot
	TotalAmount  money.Money
	IsCancelled  bool
}

// SaleItemSnapshot is the stored state of one line item.
type SaleItemSnapshot struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   money.Money
	Discount    decimal.Decimal
	TotalPrice  money.Money
}

// RestoreSale rebuilds a sale from stored state without re-running the
// discount policy, so prices persisted under older rules are kept.
func RestoreSale(snap SaleSnapshot) *Sale {
	s := &Sale{
		id:           snap.ID,
		saleNumber:   snap.SaleNumber,
		date:         snap.Date.UTC(),
		customerID:   snap.CustomerID,
		customerName: snap.CustomerName,
		branchID:     snap.BranchID,
		branchName:   snap.BranchName,
		totalAmount:  snap.TotalAmount,
		cancelled:    snap.IsCancelled,
		items:        make([]SaleItem, 0, len(snap.Items)),
	}
	for _, it := range snap.Items {
		s.items = append(s.items, SaleItem{
			productID:   it.ProductID,
			productName: it.ProductName,
			quantity:    it.Quantity,
			unitPrice:   it.UnitPrice,
			discount:    it.Discount,
			totalPrice:  it.TotalPrice,
		})
	}
	return s
}

// Snapshot exports the sale's state for storage.
func (s *Sale) Snapshot() SaleSnapshot {
	snap := SaleSnapshot{
		ID:           s.id,
		SaleNumber:   s.saleNumber,
		Date:         s.date,
		CustomerID:   s.customerID,
		CustomerName: s.customerName,
		BranchID:     s.branchID,
		BranchName:   s.branchName,
		TotalAmount:  s.totalAmount,
		IsCancelled:  s.cancelled,
		Items:        make([]SaleItemSnapshot, 0, len(s.items)),
	}
	for _, it := range s.items {
		snap.Items = append(snap.Items, SaleItemSnapshot{
			ProductID:   it.productID,
			ProductName: it.productName,
			Quantity:    it.quantity,
			UnitPrice:   it.unitPrice,
			Discount:    it.discount,
			TotalPrice:  it.totalPrice,
		})
	}
	return snap
}
