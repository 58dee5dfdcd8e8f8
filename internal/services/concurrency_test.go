// internal/services/concurrency_test.go
package services

import (
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agrichain/agrichain-backend/internal/config"
	"github.com/agrichain/agrichain-backend/internal/models"
)

// These tests exercise row-lock serialization against a real database and
// are skipped unless TEST_DATABASE_URL points at a throwaway Postgres
// instance.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Status{},
		&models.EventType{},
		&models.Batch{},
		&models.Event{},
		&models.ProductChainLog{},
		&models.WalletTransaction{},
	))

	for _, name := range []string{
		models.StatusHarvested, models.StatusProcessing, models.StatusInWarehouse,
		models.StatusInTransit, models.StatusInShop, models.StatusSold,
	} {
		require.NoError(t, db.FirstOrCreate(&models.Status{}, models.Status{Name: name}).Error)
	}
	for _, name := range []string{models.EventHarvest, models.EventSplit, models.EventSold} {
		require.NoError(t, db.FirstOrCreate(&models.EventType{}, models.EventType{Name: name}).Error)
	}

	return db
}

func testUser(t *testing.T, db *gorm.DB, role models.UserRole, balance float64) *models.User {
	t.Helper()

	user := &models.User{
		Username:      "t_" + uuid.NewString(),
		PasswordHash:  "x",
		Role:          role,
		WalletBalance: balance,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestSplitBatchSerializesCompetingSplits(t *testing.T) {
	db := testDB(t)
	cfg := &config.Config{}
	wallet := &WalletService{db: db, cfg: cfg}
	ledger := &LedgerService{db: db, cfg: cfg}
	batches := NewBatchService(db, wallet, ledger)

	farmer := testUser(t, db, models.RoleFarmer, 0)
	owner := testUser(t, db, models.RoleDistributor, 0)

	product := &models.Product{FarmerID: farmer.ID, Title: "Tomatoes"}
	require.NoError(t, db.Create(product).Error)

	var harvested models.Status
	require.NoError(t, db.Where("name = ?", models.StatusHarvested).First(&harvested).Error)

	parent := &models.Batch{
		BatchCode:         "BAT-" + uuid.NewString(),
		ProductID:         product.ID,
		CurrentOwnerID:    owner.ID,
		CurrentStatusID:   harvested.ID,
		InitialQuantity:   100,
		RemainingQuantity: 100,
		QuantityUnit:      "kg",
	}
	require.NoError(t, db.Create(parent).Error)

	// Each split fits on its own but together they would overdraw the
	// parent. The row lock serializes them; the loser re-validates and
	// fails.
	req := &SplitBatchRequest{Splits: []SplitItem{{Quantity: 60}}}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = batches.SplitBatch(owner.ID, parent.ID, req)
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrQuantityExceeded)
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	var reloaded models.Batch
	require.NoError(t, db.First(&reloaded, "id = ?", parent.ID).Error)
	assert.InDelta(t, 40.0, reloaded.RemainingQuantity, 0.001)
	assert.GreaterOrEqual(t, reloaded.RemainingQuantity, 0.0)
}

func TestCreditTopUpAppliesOnce(t *testing.T) {
	db := testDB(t)
	wallet := &WalletService{db: db, cfg: &config.Config{}}

	user := testUser(t, db, models.RoleDistributor, 100)
	intentID := "pi_" + uuid.NewString()

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = db.Transaction(func(tx *gorm.DB) error {
				return wallet.creditTopUp(tx, user.ID, intentID, 50)
			})
		}(i)
	}
	wg.Wait()

	var rejected int
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrAlreadyCredited)
			rejected++
		}
	}
	assert.Equal(t, 1, rejected)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.InDelta(t, 150.0, reloaded.WalletBalance, 0.001)

	var entries int64
	require.NoError(t, db.Model(&models.WalletTransaction{}).
		Where("user_id = ? AND reference = ?", user.ID, intentID).
		Count(&entries).Error)
	assert.EqualValues(t, 1, entries)
}
