package main

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/Ahmedchetoui/Delta-sub000/internal/config"
	"github.com/Ahmedchetoui/Delta-sub000/internal/http/middleware"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/catalog"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/orders"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/users"
	"github.com/Ahmedchetoui/Delta-sub000/internal/shared/slug"
)

// Şemayı kurar ve idempotent demo verisi ekler (admin hesabı + küçük katalog).
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&catalog.Product{},
		&catalog.Variant{},
		&orders.Order{},
		&orders.OrderItem{},
		&orders.OrderEvent{},
		&users.User{},
		&middleware.Session{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}
	log.Println("✓ schema migrated")

	seedAdmin(db)
	seedCatalog(db)
}

func seedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&users.User{}).Where("email = ?", "admin@deltafashion.tn").Count(&count)
	if count > 0 {
		log.Println("✓ admin user already present")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-changeme"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	now := time.Now()
	u := users.User{
		ID:           uuid.NewString(),
		Email:        "admin@deltafashion.tn",
		Name:         "Delta Admin",
		PasswordHash: string(hash),
		Role:         users.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&u).Error; err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	log.Println("✓ admin user seeded (admin@deltafashion.tn)")
}

func seedCatalog(db *gorm.DB) {
	var count int64
	db.Model(&catalog.Product{}).Count(&count)
	if count > 0 {
		log.Println("✓ catalog already seeded")
		return
	}

	now := time.Now()
	tee := catalog.Product{
		ID:             uuid.NewString(),
		Name:           "Basic Tişört",
		Slug:           slug.FromName("Basic Tişört"),
		Description:    "Pamuklu basic tişört.",
		Status:         catalog.StatusActive,
		BasePriceCents: 4900,
		Currency:       "TND",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, size := range []string{"S", "M", "L", "XL"} {
		for _, color := range []string{"Siyah", "Beyaz"} {
			tee.Variants = append(tee.Variants, catalog.Variant{
				ID:        uuid.NewString(),
				Size:      size,
				Color:     color,
				SKU:       "TEE-" + size + "-" + color,
				Stock:     25,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
	}

	belt := catalog.Product{
		ID:             uuid.NewString(),
		Name:           "Deri Kemer",
		Slug:           slug.FromName("Deri Kemer"),
		Description:    "Hakiki deri kemer, tek beden.",
		Status:         catalog.StatusActive,
		BasePriceCents: 3500,
		Currency:       "TND",
		Stock:          40,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := db.Create(&tee).Error; err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	if err := db.Create(&belt).Error; err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	log.Println("✓ demo catalog seeded")
}
