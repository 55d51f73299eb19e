package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/mkuznecov/warehouse/internal/models"
)

var (
	ErrNotFound     = errors.New("товар не найден")
	ErrDuplicateSKU = errors.New("артикул должен быть уникальным")
	ErrInvalidInput = errors.New("некорректные данные товара")
)

type Service struct {
	DB *gorm.DB
}

// ProductInput carries raw form values; numeric fields are parsed here so
// unparseable input surfaces as ErrInvalidInput.
type ProductInput struct {
	Name          string
	Description   string
	DetailedSpecs string
	SKU           string
	Quantity      string
	Price         string
	CategoryID    string
}

type parsedInput struct {
	name          string
	description   string
	detailedSpecs string
	sku           string
	quantity      int
	price         float64
	categoryID    *uint
}

func (in ProductInput) parse() (*parsedInput, error) {
	name := strings.TrimSpace(in.Name)
	sku := strings.TrimSpace(in.SKU)
	if name == "" || in.Description == "" || sku == "" {
		return nil, ErrInvalidInput
	}

	quantity, err := strconv.Atoi(in.Quantity)
	if err != nil || quantity < 0 {
		return nil, ErrInvalidInput
	}

	price, err := strconv.ParseFloat(in.Price, 64)
	if err != nil || price < 0 {
		return nil, ErrInvalidInput
	}

	var categoryID *uint
	if in.CategoryID != "" {
		id, err := strconv.ParseUint(in.CategoryID, 10, 32)
		if err != nil {
			return nil, ErrInvalidInput
		}
		v := uint(id)
		categoryID = &v
	}

	return &parsedInput{
		name:          name,
		description:   in.Description,
		detailedSpecs: in.DetailedSpecs,
		sku:           sku,
		quantity:      quantity,
		price:         price,
		categoryID:    categoryID,
	}, nil
}

// Search builds the filtered, sorted product listing. An unknown sort key
// silently falls back to the views_count default.
func (s *Service) Search(ctx context.Context, query string, categoryID uint, sort string) ([]models.Product, error) {
	q := s.DB.WithContext(ctx).Model(&models.Product{})

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("name LIKE ? OR description LIKE ? OR sku LIKE ?", like, like, like)
	}
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}

	switch sort {
	case "name":
		q = q.Order("name ASC")
	case "price_asc":
		q = q.Order("price ASC")
	case "price_desc":
		q = q.Order("price DESC")
	case "date":
		q = q.Order("created_at DESC")
	default:
		q = q.Order("views_count DESC")
	}

	var items []models.Product
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	var items []models.Category
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

// All returns every product with its category preloaded, for the admin page
// and the JSON API.
func (s *Service) All(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := s.DB.WithContext(ctx).Preload("Category").Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Product, error) {
	var prod models.Product
	if err := s.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &prod, nil
}

// Create validates the input, pre-checks SKU uniqueness and inserts the
// product. A duplicate-key failure from the storage layer is surfaced as the
// same ErrDuplicateSKU as the fast-path check.
func (s *Service) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	parsed, err := in.parse()
	if err != nil {
		return nil, err
	}

	var existing models.Product
	err = s.DB.WithContext(ctx).Where("sku = ?", parsed.sku).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateSKU
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	prod := models.Product{
		Name:          parsed.name,
		Description:   parsed.description,
		DetailedSpecs: parsed.detailedSpecs,
		SKU:           parsed.sku,
		Quantity:      parsed.quantity,
		Price:         parsed.price,
		CategoryID:    parsed.categoryID,
	}
	if err := s.DB.WithContext(ctx).Create(&prod).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &prod, nil
}

// Update overwrites all mutable fields. SKU uniqueness is re-checked against
// every other product so an edit cannot introduce a silent collision.
func (s *Service) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	var prod models.Product
	if err := s.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	parsed, err := in.parse()
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Product{}).
		Where("sku = ? AND id <> ?", parsed.sku, id).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateSKU
	}

	prod.Name = parsed.name
	prod.Description = parsed.description
	prod.DetailedSpecs = parsed.detailedSpecs
	prod.SKU = parsed.sku
	prod.Quantity = parsed.quantity
	prod.Price = parsed.price
	prod.CategoryID = parsed.categoryID

	if err := s.DB.WithContext(ctx).Save(&prod).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &prod, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordView bumps the view counter with a single atomic update so concurrent
// detail views do not lose increments.
func (s *Service) RecordView(ctx context.Context, id uint) (*models.Product, error) {
	var prod models.Product
	if err := s.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := s.DB.WithContext(ctx).Model(&prod).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1)).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	prod.ViewsCount++
	return &prod, nil
}

type Stats struct {
	TotalProducts int64   `json:"total_products"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalValue    float64 `json:"total_value"`
	TotalViews    int64   `json:"total_views"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	err := s.DB.WithContext(ctx).Model(&models.Product{}).
		Select("COUNT(*) AS total_products, COALESCE(SUM(quantity), 0) AS total_quantity, COALESCE(SUM(price * quantity), 0) AS total_value, COALESCE(SUM(views_count), 0) AS total_views").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &stats, nil
}
