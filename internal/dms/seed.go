package dms

import (
	"context"
	"fmt"
	"time"

	"dms-service/internal/models"
	"dms-service/internal/repository"

	"go.uber.org/zap"
)

type catalogEntry struct {
	name, brand, description, unit string
	price                          float64
	stock, minStock                int
}

var starterCatalog = []catalogEntry{
	{"Premium Wheat Flour", "Golden Harvest", "Fine quality wheat flour for all purpose use", "kg", 85, 500, 100},
	{"Whole Wheat Atta", "Golden Harvest", "100% whole wheat flour for healthy cooking", "kg", 95, 400, 80},
	{"Multigrain Atta", "Golden Harvest", "Nutritious blend of wheat and grains", "kg", 120, 250, 50},
	{"Chakki Fresh Atta", "Village Mills", "Stone ground fresh wheat flour", "kg", 105, 350, 70},
	{"Sunflower Cooking Oil", "Pure Gold", "100% pure sunflower oil", "liter", 450, 200, 40},
	{"Canola Cooking Oil", "Pure Gold", "Heart healthy canola oil", "liter", 480, 180, 35},
	{"Olive Oil", "Mediterranean", "Extra virgin olive oil imported", "liter", 1200, 100, 20},
	{"Corn Oil", "Pure Gold", "Light and healthy corn oil", "liter", 420, 220, 45},
	{"Mustard Oil", "Kachi Ghani", "Cold pressed mustard oil", "liter", 380, 150, 30},
	{"Vegetable Oil Blend", "Pure Gold", "Premium blend of vegetable oils", "liter", 400, 300, 60},
}

// StarterCatalog returns the products inserted when the product collection is empty.
func StarterCatalog(now time.Time) []models.Product {
	products := make([]models.Product, 0, len(starterCatalog))
	for i, e := range starterCatalog {
		products = append(products, models.Product{
			ID:          fmt.Sprintf("%d", i+1),
			Name:        e.name,
			Category:    "Grocery",
			Brand:       e.brand,
			Description: e.description,
			Price:       e.price,
			Stock:       e.stock,
			MinStock:    e.minStock,
			Unit:        e.unit,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return products
}

// seed fills the user and product collections independently, each only when empty.
// Seed records are written without scheduling a push.
func seed(ctx context.Context, repos *repository.Set, now time.Time, logger *zap.Logger) error {
	if repos.Users.Count(ctx) == 0 {
		if err := repos.Users.Create(ctx, models.DefaultAdmin(now)); err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}
		logger.Info("Seeded default admin user")
	}

	if repos.Products.Count(ctx) == 0 {
		for _, p := range StarterCatalog(now) {
			if err := repos.Products.Create(ctx, p); err != nil {
				return fmt.Errorf("seed product %s: %w", p.ID, err)
			}
		}
		logger.Info("Seeded starter catalog", zap.Int("products", len(starterCatalog)))
	}
	return nil
}
