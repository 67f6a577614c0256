package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"seeding-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (optional attribute lookup cache)
	RedisURL string

	// Environment
	Environment string

	// Seed source
	SeedFile string

	// Job behavior
	StockSeedMode string // initialize-missing-only | reset-all
	BatchWorkers  int    // 1 = sequential
	GrantedBy     string // recorded on role-permission edges
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	batchWorkers, _ := strconv.Atoi(getEnv("BATCH_WORKERS", "1"))

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "marketplace_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", ""),

		Environment: getEnv("ENVIRONMENT", "development"),

		SeedFile: getEnv("SEED_FILE", "seed.json"),

		StockSeedMode: getEnv("STOCK_SEED_MODE", "initialize-missing-only"),
		BatchWorkers:  batchWorkers,
		GrantedBy:     getEnv("GRANTED_BY", "seeding-service"),
	}
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	// TranslateError turns driver duplicate-key errors into
	// gorm.ErrDuplicatedKey, which the insert-or-refetch paths depend on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate models to keep schema up to date. The composite unique
	// indexes declared on the models are the correctness backbone of every
	// get-or-create here, so a migration failure is fatal.
	log.Println("Running auto-migrations...")
	if err := db.AutoMigrate(
		&models.Attribute{},
		&models.AttributeValue{},
		&models.Product{},
		&models.ProductVariant{},
		&models.VariantAttributeValue{},
		&models.Warehouse{},
		&models.Unit{},
		&models.StockItem{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.SeedRun{},
	); err != nil {
		return nil, fmt.Errorf("failed to run auto-migrations: %w", err)
	}
	log.Println("Auto-migrations completed successfully")

	if err := verifySchema(db); err != nil {
		return nil, err
	}

	return db, nil
}

// verifySchema fails fast when the unique indexes backing the get-or-create
// paths are absent, instead of discovering that mid-run as duplicate rows.
func verifySchema(db *gorm.DB) error {
	checks := []struct {
		model interface{}
		index string
	}{
		{&models.Attribute{}, "idx_attributes_code"},
		{&models.AttributeValue{}, "idx_attribute_values_attr_name"},
		{&models.ProductVariant{}, "idx_variants_product_hash"},
		{&models.StockItem{}, "idx_stock_items_owner_warehouse"},
	}
	for _, c := range checks {
		if !db.Migrator().HasIndex(c.model, c.index) {
			return fmt.Errorf("persisted schema out of date: missing unique index %s", c.index)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
