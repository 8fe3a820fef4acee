package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/as-ga/saleor/internal/domain/catalog"
	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupCatalogTestDB creates an in-memory SQLite database with the catalog tables
func setupCatalogTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE products (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			modified_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			slug TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			currency TEXT NOT NULL,
			base_price NUMERIC NOT NULL DEFAULT 0,
			discounted_price NUMERIC NOT NULL DEFAULT 0,
			search_vector TEXT NOT NULL DEFAULT '',
			search_index_dirty INTEGER NOT NULL DEFAULT 1
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE promotions (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			modified_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			name TEXT NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE promotion_rules (
			id TEXT PRIMARY KEY,
			promotion_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			reward_type TEXT NOT NULL,
			reward_value NUMERIC NOT NULL DEFAULT 0,
			product_ids TEXT,
			created_at DATETIME NOT NULL,
			modified_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	return db
}

func storedProduct(t *testing.T, db *gorm.DB, slug string, basePrice int64) *catalog.Product {
	product, err := catalog.NewProduct(slug, "Product "+slug, "USD", decimal.NewFromInt(basePrice))
	require.NoError(t, err)
	product.ClearDomainEvents()
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), product))
	return product
}

func TestGormProductRepository_SaveAndFind(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	product := storedProduct(t, db, "blue-shirt", 100)

	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "blue-shirt", found.Slug)
	assert.True(t, found.BasePrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, found.SearchIndexDirty)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_FindSearchIndexDirty(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	dirty := storedProduct(t, db, "dirty", 10)
	clean := storedProduct(t, db, "clean", 10)
	clean.SetSearchVector("indexed")
	require.NoError(t, repo.Save(ctx, clean))

	found, err := repo.FindSearchIndexDirty(ctx, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, dirty.ID, found[0].ID)

	// Limit is honored
	storedProduct(t, db, "dirty-two", 10)
	found, err = repo.FindSearchIndexDirty(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestGormProductRepository_FindByIDs(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	first := storedProduct(t, db, "one", 10)
	second := storedProduct(t, db, "two", 20)
	storedProduct(t, db, "three", 30)

	found, err := repo.FindByIDs(ctx, []uuid.UUID{first.ID, second.ID})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestGormPromotionRepository_SaveAndFindActive(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormPromotionRepository(db)
	ctx := context.Background()

	product := storedProduct(t, db, "target", 50)

	active, err := catalog.NewPromotion("Active", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = active.AddRule("ten off", catalog.RewardValueTypeFixed, decimal.NewFromInt(10), []uuid.UUID{product.ID})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, active))

	end := time.Now().Add(-time.Minute)
	expired, err := catalog.NewPromotion("Expired", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	expired.EndDate = &end
	_, err = expired.AddRule("old", catalog.RewardValueTypeFixed, decimal.NewFromInt(5), []uuid.UUID{product.ID})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, expired))

	unrelated, err := catalog.NewPromotion("Unrelated", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = unrelated.AddRule("other", catalog.RewardValueTypeFixed, decimal.NewFromInt(1), []uuid.UUID{uuid.New()})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, unrelated))

	found, err := repo.FindActiveForProduct(ctx, product.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Active", found[0].Name)
	require.Len(t, found[0].Rules, 1)
	assert.True(t, found[0].Rules[0].AppliesTo(product.ID))
}

func TestGormPromotionRepository_FindByID(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormPromotionRepository(db)
	ctx := context.Background()

	promotion, err := catalog.NewPromotion("With rules", time.Now())
	require.NoError(t, err)
	_, err = promotion.AddRule("r1", catalog.RewardValueTypePercentage, decimal.NewFromInt(5), []uuid.UUID{uuid.New()})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, promotion))

	found, err := repo.FindByID(ctx, promotion.ID)
	require.NoError(t, err)
	assert.Equal(t, "With rules", found.Name)
	require.Len(t, found.Rules, 1)
	assert.Equal(t, catalog.RewardValueTypePercentage, found.Rules[0].RewardType)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
