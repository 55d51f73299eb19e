package seed

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mkuznecov/warehouse/internal/hash"
	"github.com/mkuznecov/warehouse/internal/models"
)

// Run loads the demo accounts, categories and products into an empty
// database. It is a no-op when users already exist.
func Run(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if count > 0 {
		return nil
	}

	adminHash, err := hash.HashPassword("admin123")
	if err != nil {
		return err
	}
	userHash, err := hash.HashPassword("user123")
	if err != nil {
		return err
	}

	users := []models.User{
		{Username: "admin", Email: "admin@warehouse.com", PasswordHash: adminHash, IsAdmin: true},
		{Username: "user", Email: "user@warehouse.com", PasswordHash: userHash},
	}
	if err := db.Create(&users).Error; err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	categories := []models.Category{
		{Name: "Электроника", Description: "Электронные устройства"},
		{Name: "Одежда", Description: "Одежда и аксессуары"},
		{Name: "Книги", Description: "Книги и учебники"},
		{Name: "Мебель", Description: "Мебель для дома и офиса"},
		{Name: "Продукты", Description: "Продукты питания"},
	}
	if err := db.Create(&categories).Error; err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	products := []models.Product{
		{
			Name:          "Ноутбук Lenovo IdeaPad",
			Description:   "15.6\" ноутбук для работы и учебы",
			DetailedSpecs: "Процессор: Intel Core i5\nПамять: 8 ГБ\nSSD: 512 ГБ",
			SKU:           "LAP001",
			Quantity:      10,
			Price:         54999.99,
			CategoryID:    &categories[0].ID,
		},
		{
			Name:          "Смартфон Samsung",
			Description:   "Смартфон с отличной камерой",
			DetailedSpecs: "Экран: 6.1\"\nПамять: 128 ГБ\nКамера: 50 Мп",
			SKU:           "PHN001",
			Quantity:      15,
			Price:         39999.99,
			CategoryID:    &categories[0].ID,
		},
		{
			Name:          "Футболка мужская",
			Description:   "Хлопковая футболка черного цвета",
			DetailedSpecs: "Материал: 100% хлопок\nРазмеры: S-XXL",
			SKU:           "TSH001",
			Quantity:      50,
			Price:         1499.99,
			CategoryID:    &categories[1].ID,
		},
		{
			Name:          "Книга \"Python для начинающих\"",
			Description:   "Учебник по программированию",
			DetailedSpecs: "Страниц: 400\nГод: 2023",
			SKU:           "BOK001",
			Quantity:      25,
			Price:         1299.99,
			CategoryID:    &categories[2].ID,
		},
	}
	if err := db.Create(&products).Error; err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	return nil
}
