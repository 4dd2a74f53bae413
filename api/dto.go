package api

import (
	"time"

	"retail_sales/internal/money"
	"retail_sales/internal/sales"

	"github.com/google/uuid"
)

// apiResponse is the envelope for every response body.
type apiResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    interface{}   `json:"data,omitempty"`
	Errors  []errorDetail `json:"errors,omitempty"`
}

type errorDetail struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// IDs are strings so an empty or missing reference reaches the sale rules
// instead of failing JSON decoding.
type createSaleRequest struct {
	CustomerID   string                  `json:"customer_id"`
	CustomerName string                  `json:"customer_name"`
	BranchID     string                  `json:"branch_id"`
	BranchName   string                  `json:"branch_name"`
	Items        []createSaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

type createSaleItemRequest struct {
	ProductID   string      `json:"product_id"`
	ProductName string      `json:"product_name"`
	Quantity    int         `json:"quantity"`
	UnitPrice   money.Money `json:"unit_price"`
}

type createSaleResponse struct {
	SaleID      uuid.UUID   `json:"sale_id"`
	SaleNumber  string      `json:"sale_number"`
	TotalAmount money.Money `json:"total_amount"`
}

type saleResponse struct {
	ID           uuid.UUID          `json:"id"`
	SaleNumber   string             `json:"sale_number"`
	Date         time.Time          `json:"date"`
	CustomerID   uuid.UUID          `json:"customer_id"`
	CustomerName string             `json:"customer_name"`
	BranchID     uuid.UUID          `json:"branch_id"`
	BranchName   string             `json:"branch_name"`
	TotalAmount  money.Money        `json:"total_amount"`
	IsCancelled  bool               `json:"is_cancelled"`
	Items        []saleItemResponse `json:"items"`
}

type saleItemResponse struct {
	ProductID   uuid.UUID   `json:"product_id"`
	ProductName string      `json:"product_name"`
	Quantity    int         `json:"quantity"`
	UnitPrice   money.Money `json:"unit_price"`
	Discount    float64     `json:"discount"`
	TotalPrice  money.Money `json:"total_price"`
}

type searchSalesResponse struct {
	Results  []saleResponse      `json:"results"`
	Metadata sales.SalesMetadata `json:"metadata"`
}

func toSaleResponse(s *sales.Sale) saleResponse {
	items := s.Items()
	out := saleResponse{
		ID:           s.ID(),
		SaleNumber:   s.SaleNumber(),
		Date:         s.Date(),
		CustomerID:   s.CustomerID(),
		CustomerName: s.CustomerName(),
		BranchID:     s.BranchID(),
		BranchName:   s.BranchName(),
		TotalAmount:  s.TotalAmount(),
		IsCancelled:  s.IsCancelled(),
		Items:        make([]saleItemResponse, 0, len(items)),
	}
	for _, it := range items {
		out.Items = append(out.Items, saleItemResponse{
			ProductID:   it.ProductID(),
			ProductName: it.ProductName(),
			Quantity:    it.Quantity(),
			UnitPrice:   it.UnitPrice(),
			Discount:    it.Discount().InexactFloat64(),
			TotalPrice:  it.TotalPrice(),
		})
	}
	return out
}

// parseOptionalID maps an empty string to uuid.Nil.
func parseOptionalID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}

func (r createSaleRequest) toInput() (sales.CreateSaleInput, error) {
	customerID, err := parseOptionalID(r.CustomerID)
	if err != nil {
		return sales.CreateSaleInput{}, invalidField("customer_id", err)
	}
	branchID, err := parseOptionalID(r.BranchID)
	if err != nil {
		return sales.CreateSaleInput{}, invalidField("branch_id", err)
	}

	in := sales.CreateSaleInput{
		CustomerID:   customerID,
		CustomerName: r.CustomerName,
		BranchID:     branchID,
		BranchName:   r.BranchName,
		Items:        make([]sales.CreateSaleItemInput, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		productID, err := parseOptionalID(it.ProductID)
		if err != nil {
			return sales.CreateSaleInput{}, invalidField("product_id", err)
		}
		in.Items = append(in.Items, sales.CreateSaleItemInput{
			ProductID:   productID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return in, nil
}

func invalidField(field string, err error) error {
	return &sales.ValidationError{
		Entity:     "request",
		Violations: []sales.Violation{{Field: field, Message: field + " is not a valid identifier: " + err.Error()}},
	}
}
