package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"retail_sales/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type saleRecord struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey"`
	SaleNumber   string           `gorm:"size:50;not null;uniqueIndex"`
	SaleDate     time.Time        `gorm:"not null;index"`
	CustomerID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	CustomerName string           `gorm:"size:200"`
	BranchID     uuid.UUID        `gorm:"type:uuid;not null"`
	BranchName   string           `gorm:"size:200"`
	TotalAmount  money.Money      `gorm:"type:decimal(18,2);not null"`
	IsCancelled  bool             `gorm:"not null;default:false"`
	Items        []saleItemRecord `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

func (saleRecord) TableName() string { return "sales" }

type saleItemRecord struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"size:200;not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   money.Money     `gorm:"type:decimal(18,2);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	TotalPrice  money.Money     `gorm:"type:decimal(18,2);not null"`
}

func (saleItemRecord) TableName() string { return "sale_items" }

// Migrate creates or updates the sales tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&saleRecord{}, &saleItemRecord{})
}

// GormStorage stores sales in a SQL database through gorm. The unique index
// on sale_number is what guarantees sale number uniqueness.
type GormStorage struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStorage expects db to be opened with TranslateError enabled so
// unique violations surface as gorm.ErrDuplicatedKey.
func NewGormStorage(db *gorm.DB, logger *zap.Logger) *GormStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormStorage{
		db:     db,
		logger: logger.With(zap.String("storage", "gorm")),
	}
}

func (g *GormStorage) Create(ctx context.Context, sale *Sale) error {
	if sale.ID() == uuid.Nil {
		return ErrEmptyID
	}
	rec := toRecord(sale.Snapshot())

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		g.logger.Warn("duplicate sale number", zap.String("sale_number", sale.SaleNumber()))
		return ErrDuplicateSaleNumber
	}
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

func (g *GormStorage) Update(ctx context.Context, sale *Sale) error {
	res := g.db.WithContext(ctx).
		Model(&saleRecord{}).
		Where("id = ? AND is_cancelled = ?", sale.ID(), false).
		Updates(map[string]interface{}{
			"is_cancelled": sale.IsCancelled(),
			"total_amount": sale.TotalAmount(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update sale: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := g.db.WithContext(ctx).
		Model(&saleRecord{}).
		Where("id = ?", sale.ID()).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check sale: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return &DomainError{Kind: KindAlreadyCancelled, Message: "sale is already cancelled"}
}

func (g *GormStorage) Read(ctx context.Context, id uuid.UUID) (*Sale, error) {
	var rec saleRecord
	err := g.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("id = ?", id).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sale: %w", err)
	}
	return RestoreSale(fromRecord(rec)), nil
}

func (g *GormStorage) GetAll(ctx context.Context) ([]*Sale, error) {
	var recs []saleRecord
	if err := g.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Order("sale_date ASC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	out := make([]*Sale, 0, len(recs))
	for _, rec := range recs {
		out = append(out, RestoreSale(fromRecord(rec)))
	}
	return out, nil
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func toRecord(snap SaleSnapshot) saleRecord {
	rec := saleRecord{
		ID:           snap.ID,
		SaleNumber:   snap.SaleNumber,
		SaleDate:     snap.Date,
		CustomerID:   snap.CustomerID,
		CustomerName: snap.CustomerName,
		BranchID:     snap.BranchID,
		BranchName:   snap.BranchName,
		TotalAmount:  snap.TotalAmount,
		IsCancelled:  snap.IsCancelled,
		Items:        make([]saleItemRecord, 0, len(snap.Items)),
	}
	for i, it := range snap.Items {
		rec.Items = append(rec.Items, saleItemRecord{
			ID:          uuid.New(),
			SaleID:      snap.ID,
			Position:    i,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			TotalPrice:  it.TotalPrice,
		})
	}
	return rec
}

func fromRecord(rec saleRecord) SaleSnapshot {
	snap := SaleSnapshot{
		ID:           rec.ID,
		SaleNumber:   rec.SaleNumber,
		Date:         rec.SaleDate,
		CustomerID:   rec.CustomerID,
		CustomerName: rec.CustomerName,
		BranchID:     rec.BranchID,
		BranchName:   rec.BranchName,
		TotalAmount:  rec.TotalAmount,
		IsCancelled:  rec.IsCancelled,
		Items:        make([]SaleItemSnapshot, 0, len(rec.Items)),
	}
	for _, it := range rec.Items {
		snap.Items = append(snap.Items, SaleItemSnapshot{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			TotalPrice:  it.TotalPrice,
		})
	}
	return snap
}
