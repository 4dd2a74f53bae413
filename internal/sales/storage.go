package sales

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Storage is the main interface for our sales storage layer.
type Storage interface {
	// Create stores a new sale. It returns ErrDuplicateSaleNumber when the
	// sale number is already taken.
	Create(ctx context.Context, sale *Sale) error
	// Update persists the sale's header state (cancellation flag, total).
	// The write only applies to a sale that is still open in storage; a sale
	// already cancelled there yields ErrAlreadyCancelled.
	Update(ctx context.Context, sale *Sale) error
	Read(ctx context.Context, id uuid.UUID) (*Sale, error)
	GetAll(ctx context.Context) ([]*Sale, error)
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	mu       sync.RWMutex
	m        map[uuid.UUID]*Sale
	byNumber map[string]uuid.UUID
}

// NewLocalStorage instantiates a new LocalStorage for sales with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m:        map[uuid.UUID]*Sale{},
		byNumber: map[string]uuid.UUID{},
	}
}

// Create returns ErrEmptyID if the sale has an empty ID.
func (l *LocalStorage) Create(_ context.Context, sale *Sale) error {
	if sale.ID() == uuid.Nil {
		return ErrEmptyID
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byNumber[sale.SaleNumber()]; ok {
		return ErrDuplicateSaleNumber
	}
	if _, ok := l.m[sale.ID()]; ok {
		return ErrDuplicateSaleNumber
	}
	l.m[sale.ID()] = sale.clone()
	l.byNumber[sale.SaleNumber()] = sale.ID()
	return nil
}

// Update returns ErrNotFound if the sale was never created and
// ErrAlreadyCancelled if the stored copy is already cancelled.
func (l *LocalStorage) Update(_ context.Context, sale *Sale) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored, ok := l.m[sale.ID()]
	if !ok {
		return ErrNotFound
	}
	if stored.IsCancelled() {
		return &DomainError{Kind: KindAlreadyCancelled, Message: "sale is already cancelled"}
	}
	l.m[sale.ID()] = sale.clone()
	return nil
}

// Read retrieves a sale from the local storage by ID.
// Returns ErrNotFound if the sale is not found.
func (l *LocalStorage) Read(_ context.Context, id uuid.UUID) (*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.clone(), nil
}

// GetAll retrieves all sales ordered by creation date.
func (l *LocalStorage) GetAll(_ context.Context) ([]*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sales := make([]*Sale, 0, len(l.m))
	for _, s := range l.m {
		sales = append(sales, s.clone())
	}
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].Date().Before(sales[j].Date())
	})
	return sales, nil
}
