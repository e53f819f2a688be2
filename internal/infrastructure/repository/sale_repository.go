package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
	"github.com/kevmuri/bookstore-api/internal/domain/enum"
	domainRepo "github.com/kevmuri/bookstore-api/internal/domain/repository"
	"gorm.io/gorm"
)

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	return conn(ctx, r.db).Create(sale).Error
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := conn(ctx, r.db).First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := conn(ctx, r.db).
		Preload("Items.Book").
		Preload("Payment").
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	query := conn(ctx, r.db).Model(&entity.Sale{})

	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}

	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Payment").
		Order("created_at DESC").
		Find(&sales).Error

	return sales, total, err
}

// DailyReport aggregates one calendar day of committed sales: transaction
// count, revenue, per-method breakdown and the five best-selling titles.
func (r *saleRepository) DailyReport(ctx context.Context, day time.Time) (*domainRepo.DailyReport, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	report := &domainRepo.DailyReport{Date: start.Format("2006-01-02")}

	var totals struct {
		Count int64
		Sum   int64
	}
	err := conn(ctx, r.db).Model(&entity.Sale{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS sum").
		Where("created_at >= ? AND created_at < ?", start, end).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	report.TotalTransactions = totals.Count
	report.TotalSales = float64(totals.Sum) / 100
	if totals.Count > 0 {
		report.AverageSale = report.TotalSales / float64(totals.Count)
	}

	var methodRows []struct {
		Method string
		Count  int64
		Sum    int64
	}
	err = conn(ctx, r.db).Model(&entity.Payment{}).
		Select("payments.method AS method, COUNT(*) AS count, COALESCE(SUM(payments.amount), 0) AS sum").
		Joins("JOIN sales ON sales.id = payments.sale_id").
		Where("sales.created_at >= ? AND sales.created_at < ?", start, end).
		Group("payments.method").
		Scan(&methodRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range methodRows {
		report.ByPaymentMethod = append(report.ByPaymentMethod, domainRepo.PaymentMethodTotal{
			Method: enum.PaymentMethod(row.Method),
			Count:  row.Count,
			Total:  float64(row.Sum) / 100,
		})
	}

	var bookRows []struct {
		BookID    uuid.UUID
		Title     string
		Author    string
		TotalSold int64
		Revenue   int64
	}
	err = conn(ctx, r.db).Model(&entity.SaleItem{}).
		Select("sale_items.book_id AS book_id, books.title AS title, books.author AS author, "+
			"SUM(sale_items.quantity) AS total_sold, COALESCE(SUM(sale_items.subtotal), 0) AS revenue").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Joins("JOIN books ON books.id = sale_items.book_id").
		Where("sales.created_at >= ? AND sales.created_at < ?", start, end).
		Group("sale_items.book_id, books.title, books.author").
		Order("total_sold DESC").
		Limit(5).
		Scan(&bookRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range bookRows {
		report.TopBooks = append(report.TopBooks, domainRepo.TopBook{
			BookID:    row.BookID,
			Title:     row.Title,
			Author:    row.Author,
			TotalSold: row.TotalSold,
			Revenue:   float64(row.Revenue) / 100,
		})
	}

	return report, nil
}

type saleItemRepository struct {
	db *gorm.DB
}

// NewSaleItemRepository creates a new sale item repository
func NewSaleItemRepository(db *gorm.DB) domainRepo.SaleItemRepository {
	return &saleItemRepository{db: db}
}

func (r *saleItemRepository) CreateBatch(ctx context.Context, items []entity.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&items).Error
}

func (r *saleItemRepository) GetBySaleID(ctx context.Context, saleID uuid.UUID) ([]entity.SaleItem, error) {
	var items []entity.SaleItem
	err := conn(ctx, r.db).
		Preload("Book").
		Where("sale_id = ?", saleID).
		Find(&items).Error
	return items, err
}

func (r *saleItemRepository) GetBySaleAndBook(ctx context.Context, saleID, bookID uuid.UUID) (*entity.SaleItem, error) {
	var item entity.SaleItem
	err := conn(ctx, r.db).
		First(&item, "sale_id = ? AND book_id = ?", saleID, bookID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}
