// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agrichain/agrichain-backend/internal/config"
	"github.com/agrichain/agrichain-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	// gen_random_uuid() backs every primary key default
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Status{},
		&models.EventType{},
		&models.Batch{},
		&models.Event{},
		&models.EventAttachment{},
		&models.DeviceRawData{},
		&models.ProductChainLog{},
		&models.Order{},
		&models.OrderItem{},
		&models.WalletTransaction{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	// Reference taxonomies must exist before any ledger transaction runs
	if err := seedTaxonomies(db); err != nil {
		return fmt.Errorf("failed to seed taxonomies: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)",
		"CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)",

		// Batch indexes
		"CREATE INDEX IF NOT EXISTS idx_batches_code ON batches(batch_code)",
		"CREATE INDEX IF NOT EXISTS idx_batches_product ON batches(product_id)",
		"CREATE INDEX IF NOT EXISTS idx_batches_parent ON batches(parent_batch_id)",
		"CREATE INDEX IF NOT EXISTS idx_batches_owner_status ON batches(current_owner_id, current_status_id)",

		// Event indexes
		"CREATE INDEX IF NOT EXISTS idx_events_batch_recorded ON events(batch_id, recorded_at)",
		"CREATE INDEX IF NOT EXISTS idx_events_actor ON events(actor_user_id)",

		// Chain log indexes
		"CREATE INDEX IF NOT EXISTS idx_chain_logs_product ON product_chain_logs(product_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_chain_logs_batch ON product_chain_logs(batch_id)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_seller ON orders(seller_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",

		// Wallet ledger indexes
		"CREATE INDEX IF NOT EXISTS idx_wallet_tx_user ON wallet_transactions(user_id, created_at DESC)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).Warnf("Failed to create index: %s", index)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

func seedTaxonomies(db *gorm.DB) error {
	statuses := []string{
		models.StatusHarvested,
		models.StatusProcessing,
		models.StatusInWarehouse,
		models.StatusInTransit,
		models.StatusInShop,
		models.StatusSold,
	}
	for _, name := range statuses {
		var count int64
		db.Model(&models.Status{}).Where("name = ?", name).Count(&count)
		if count == 0 {
			if err := db.Create(&models.Status{Name: name}).Error; err != nil {
				return fmt.Errorf("failed to seed status %q: %w", name, err)
			}
		}
	}

	eventTypes := []string{
		models.EventHarvest,
		models.EventChemical,
		models.EventHarvestLog,
		models.EventFertilizerApplied,
		models.EventPesticideApplied,
		models.EventIrrigation,
		models.EventQualityCheck,
		models.EventSplit,
		models.EventSold,
		models.EventTransportStart,
		models.EventTransportEnd,
		models.EventSale,
	}
	for _, name := range eventTypes {
		var count int64
		db.Model(&models.EventType{}).Where("name = ?", name).Count(&count)
		if count == 0 {
			if err := db.Create(&models.EventType{Name: name}).Error; err != nil {
				return fmt.Errorf("failed to seed event type %q: %w", name, err)
			}
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	logrus.Info("Seeding demo users...")

	demoUsers := []struct {
		username string
		role     models.UserRole
	}{
		{"farmer_joe", models.RoleFarmer},
		{"distributor_dave", models.RoleDistributor},
		{"transporter_tom", models.RoleTransporter},
		{"shop_sarah", models.RoleShopkeeper},
		{"consumer_carl", models.RoleConsumer},
	}

	for _, du := range demoUsers {
		var count int64
		db.Model(&models.User{}).Where("username = ?", du.username).Count(&count)
		if count > 0 {
			continue
		}

		user := &models.User{
			Username:      du.username,
			Role:          du.role,
			WalletBalance: models.StartingWalletBalance(du.role),
		}
		if err := user.SetPassword("password123"); err != nil {
			return fmt.Errorf("failed to set password for %s: %w", du.username, err)
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create demo user %s: %w", du.username, err)
		}
		logrus.WithFields(logrus.Fields{"username": du.username, "role": du.role}).Info("Seeded demo user")
	}

	logrus.Info("Demo seeding completed")
	return nil
}
