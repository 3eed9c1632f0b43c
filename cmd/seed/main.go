package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pinvent/internal/auth"
	"pinvent/internal/config"
	"pinvent/internal/db"
	"pinvent/internal/model"
	"pinvent/internal/repository"
)

//go:embed seed.json
var defaultSeed []byte

// SeedData is the layout of a seed file.
type SeedData struct {
	User struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user"`
	Products []SeedProduct `json:"products"`
}

// SeedProduct is a product entry of a seed file.
type SeedProduct struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Category    string `json:"category"`
	Quantity    int64  `json:"quantity"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

func main() {
	file := flag.String("file", "", "seed file (defaults to the bundled demo data)")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg := config.Load()

	data, err := loadSeed(*file)
	if err != nil {
		log.Fatalf("Failed to read seed data: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB, false); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	users := repository.NewUserRepository(gormDB, auth.NewBcryptHasher())
	products := repository.NewProductRepository(gormDB)

	owner, err := ensureUser(ctx, users, data)
	if err != nil {
		log.Fatalf("Failed to seed user: %v", err)
	}
	log.Printf("Seed user: %s (%s)", owner.Email, owner.ID)

	seeded, updated, err := seedProducts(ctx, products, owner.ID, data.Products)
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New products created: %d", seeded)
	log.Printf("  - Existing products updated: %d", updated)
}

func loadSeed(path string) (*SeedData, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed JSON: %w", err)
	}
	return &data, nil
}

// ensureUser returns the seed user, creating it on first run.
func ensureUser(ctx context.Context, users repository.UserRepository, data *SeedData) (*model.User, error) {
	existing, err := users.FindByEmail(ctx, data.User.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return users.Create(ctx, data.User.Name, data.User.Email, data.User.Password)
}

// seedProducts creates products for owner, updating the ones whose SKU already exists.
func seedProducts(ctx context.Context, repo repository.ProductRepository, owner uuid.UUID, items []SeedProduct) (seeded int, updated int, err error) {
	current, err := repo.ListByUser(ctx, owner)
	if err != nil {
		return 0, 0, fmt.Errorf("list products: %w", err)
	}
	bySKU := make(map[string]model.Product, len(current))
	for _, p := range current {
		if p.SKU != "" {
			bySKU[p.SKU] = p
		}
	}

	for _, item := range items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			log.Printf("Skipping product %s with invalid price: %s", item.SKU, item.Price)
			continue
		}

		if existing, ok := bySKU[item.SKU]; ok {
			existing.Name = item.Name
			existing.Category = item.Category
			existing.Quantity = item.Quantity
			existing.Price = price
			existing.Description = item.Description
			if err := repo.Update(ctx, &existing); err != nil {
				return seeded, updated, fmt.Errorf("update product %s: %w", item.SKU, err)
			}
			updated++
			continue
		}

		product := &model.Product{
			UserID:      owner,
			Name:        item.Name,
			SKU:         item.SKU,
			Category:    item.Category,
			Quantity:    item.Quantity,
			Price:       price,
			Description: item.Description,
		}
		if err := repo.Create(ctx, product); err != nil {
			return seeded, updated, fmt.Errorf("create product %s: %w", item.SKU, err)
		}
		seeded++
	}
	return seeded, updated, nil
}
