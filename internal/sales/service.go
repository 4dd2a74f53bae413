package sales

import (
	"context"
	"errors"
	"fmt"

	"retail_sales/internal/money"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Search state filters.
const (
	StateActive    = "active"
	StateCancelled = "cancelled"
)

// Service provides high-level sales management operations on a Storage backend.
type Service struct {
	storage   Storage
	publisher Publisher
	logger    *zap.Logger
}

// SalesMetadata summarises a search result.
type SalesMetadata struct {
	Quantity    int         `json:"quantity"`
	Active      int         `json:"active"`
	Cancelled   int         `json:"cancelled"`
	TotalAmount money.Money `json:"total_amount"`
}

// CreateSaleItemInput is one requested line item.
type CreateSaleItemInput struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   money.Money
}

// CreateSaleInput is everything needed to record a sale.
type CreateSaleInput struct {
	CustomerID   uuid.UUID
	CustomerName string
	BranchID     uuid.UUID
	BranchName   string
	Items        []CreateSaleItemInput
}

// CreateSaleResult identifies the stored sale.
type CreateSaleResult struct {
	SaleID      uuid.UUID   `json:"sale_id"`
	SaleNumber  string      `json:"sale_number"`
	TotalAmount money.Money `json:"total_amount"`
}

// NewService creates a new Service.
func NewService(storage Storage, publisher Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
		defer logger.Sync() // flushes buffer, if any
	}

	return &Service{
		storage:   storage,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateSale builds the sale item by item, validates it, stores it and
// publishes exactly one sale.created event.
func (s *Service) CreateSale(ctx context.Context, in CreateSaleInput) (*CreateSaleResult, error) {
	sale, err := NewSale(in.CustomerID, in.CustomerName, in.BranchID, in.BranchName)
	if err != nil {
		return nil, err
	}

	for _, item := range in.Items {
		if err := sale.AddItem(item.ProductID, item.ProductName, item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}

	if err := sale.Validate(); err != nil {
		return nil, err
	}

	if err := s.storage.Create(ctx, sale); err != nil {
		s.logger.Error("failed to save sale", zap.String("sale_id", sale.ID().String()), zap.Error(err))
		return nil, fmt.Errorf("failed to save sale: %w", err)
	}

	s.publish(ctx, newEvent(EventSaleCreated, sale))

	s.logger.Info("sale created",
		zap.String("sale_id", sale.ID().String()),
		zap.String("sale_number", sale.SaleNumber()),
		zap.Int("items", len(sale.items)),
		zap.Stringer("total_amount", sale.TotalAmount()),
	)

	return &CreateSaleResult{
		SaleID:      sale.ID(),
		SaleNumber:  sale.SaleNumber(),
		TotalAmount: sale.TotalAmount(),
	}, nil
}

// GetSale returns the full aggregate or ErrNotFound.
func (s *Service) GetSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	sale, err := s.storage.Read(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to read sale", zap.String("sale_id", id.String()), zap.Error(err))
		}
		return nil, err
	}
	return sale, nil
}

// CancelSale cancels a stored sale and publishes sale.cancelled.
func (s *Service) CancelSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	sale, err := s.storage.Read(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := sale.Cancel(); err != nil {
		return nil, err
	}

	if err := s.storage.Update(ctx, sale); err != nil {
		if errors.Is(err, ErrAlreadyCancelled) || errors.Is(err, ErrNotFound) {
			s.logger.Warn("sale changed before cancel was stored", zap.String("sale_id", sale.ID().String()), zap.Error(err))
			return nil, err
		}
		s.logger.Error("failed to update sale", zap.String("sale_id", sale.ID().String()), zap.Error(err))
		return nil, fmt.Errorf("failed to update sale: %w", err)
	}

	s.publish(ctx, newEvent(EventSaleCancelled, sale))
	s.logger.Info("sale cancelled", zap.String("sale_id", sale.ID().String()))

	return sale, nil
}

// SearchSales filters stored sales by customer and state. Empty filters
// match everything.
func (s *Service) SearchSales(ctx context.Context, customerID uuid.UUID, state string) ([]*Sale, SalesMetadata, error) {
	switch state {
	case "", StateActive, StateCancelled:
	default:
		s.logger.Warn("Invalid state filter provided", zap.String("state_filter", state))
		return nil, SalesMetadata{}, &ValidationError{
			Entity:     "search",
			Violations: []Violation{{Field: "state", Message: fmt.Sprintf("invalid state value '%s'", state)}},
		}
	}

	allSales, err := s.storage.GetAll(ctx)
	if err != nil {
		s.logger.Error("Failed to get all sales from storage", zap.Error(err))
		return nil, SalesMetadata{}, fmt.Errorf("failed to retrieve sales: %w", err)
	}

	filteredSales := make([]*Sale, 0)
	metadata := SalesMetadata{TotalAmount: money.Zero}

	for _, sale := range allSales {
		if customerID != uuid.Nil && sale.CustomerID() != customerID {
			continue
		}
		if state == StateActive && sale.IsCancelled() {
			continue
		}
		if state == StateCancelled && !sale.IsCancelled() {
			continue
		}

		filteredSales = append(filteredSales, sale)

		metadata.Quantity++
		metadata.TotalAmount = metadata.TotalAmount.Add(sale.TotalAmount())
		if sale.IsCancelled() {
			metadata.Cancelled++
		} else {
			metadata.Active++
		}
	}

	s.logger.Info("Sales search completed",
		zap.String("customer_filter", customerID.String()),
		zap.String("state_filter", state),
		zap.Int("results_count", len(filteredSales)),
		zap.Any("metadata", metadata),
	)

	return filteredSales, metadata, nil
}

// publish is invoked once per successful store. A failed delivery is logged
// and does not undo the stored sale.
func (s *Service) publish(ctx context.Context, event Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish sale event",
			zap.String("event", string(event.Type)),
			zap.String("sale_id", event.SaleID.String()),
			zap.Error(err),
		)
	}
}
