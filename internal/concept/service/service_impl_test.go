package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/citylights/billing/internal/concept/domain"
	conceptrepo "github.com/citylights/billing/internal/concept/repository"
	duesdomain "github.com/citylights/billing/internal/dues/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupConceptService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Concept{}, &duesdomain.MonthlyDue{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	service := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  conceptrepo.Provide(),
	})

	return service, db
}

func TestAddConceptDuplicateKey(t *testing.T) {
	service, _ := setupConceptService(t)
	ctx := context.Background()

	_, err := service.Add(ctx, domain.AddConceptRequest{Key: "Agua", Label: "Water", Amount: 35})
	require.NoError(t, err)

	// Keys are case-insensitive.
	_, err = service.Add(ctx, domain.AddConceptRequest{Key: "agua", Label: "Water again", Amount: 10})
	require.ErrorIs(t, err, domain.ErrDuplicateKey)
}

func TestConfigurationDefaultsWhenEmpty(t *testing.T) {
	service, _ := setupConceptService(t)

	config, err := service.Configuration(context.Background())
	require.NoError(t, err)
	require.Equal(t, 180.0, config.Total)
	require.Equal(t, 35.0, config.Concepts["agua"])
	require.Len(t, config.Concepts, 10)
}

func TestConfigurationSumsActiveConcepts(t *testing.T) {
	service, _ := setupConceptService(t)
	ctx := context.Background()

	_, err := service.Add(ctx, domain.AddConceptRequest{Key: "agua", Label: "Water", Amount: 35})
	require.NoError(t, err)
	_, err = service.Add(ctx, domain.AddConceptRequest{Key: "limpieza", Label: "Cleaning", Amount: 30})
	require.NoError(t, err)
	require.NoError(t, service.Deactivate(ctx, "limpieza"))

	config, err := service.Configuration(ctx)
	require.NoError(t, err)
	require.Equal(t, 35.0, config.Total)
	require.NotContains(t, config.Concepts, "limpieza")
}

func TestUpdateConfigurationUnknownConcept(t *testing.T) {
	service, _ := setupConceptService(t)
	ctx := context.Background()

	_, err := service.Add(ctx, domain.AddConceptRequest{Key: "agua", Label: "Water", Amount: 35})
	require.NoError(t, err)

	_, err = service.UpdateConfiguration(ctx, map[string]float64{"gas": 20})
	require.ErrorIs(t, err, domain.ErrUnknownConcept)
}

func TestUpdateConfigurationRepricesPendingOnly(t *testing.T) {
	service, db := setupConceptService(t)
	ctx := context.Background()

	_, err := service.Add(ctx, domain.AddConceptRequest{Key: "agua", Label: "Water", Amount: 35})
	require.NoError(t, err)

	pending := duesdomain.MonthlyDue{
		ID: 1, ResidentID: "res-1", Year: 2025, Month: 3,
		BaseAmount: 35, TotalAmount: 35, State: duesdomain.StatePending,
	}
	paid := duesdomain.MonthlyDue{
		ID: 2, ResidentID: "res-2", Year: 2025, Month: 3,
		BaseAmount: 35, TotalAmount: 35, State: duesdomain.StatePaid,
	}
	delinquent := duesdomain.MonthlyDue{
		ID: 3, ResidentID: "res-3", Year: 2025, Month: 2,
		BaseAmount: 35, SurchargeAmount: 3.5, TotalAmount: 38.5,
		State: duesdomain.StateDelinquent,
	}
	require.NoError(t, db.Create(&pending).Error)
	require.NoError(t, db.Create(&paid).Error)
	require.NoError(t, db.Create(&delinquent).Error)

	config, err := service.UpdateConfiguration(ctx, map[string]float64{"agua": 50})
	require.NoError(t, err)
	require.Equal(t, 50.0, config.Total)

	var got duesdomain.MonthlyDue
	require.NoError(t, db.First(&got, "id = ?", 1).Error)
	require.Equal(t, 50.0, got.BaseAmount)
	require.Equal(t, 50.0, got.TotalAmount)

	got = duesdomain.MonthlyDue{}
	require.NoError(t, db.First(&got, "id = ?", 2).Error)
	require.Equal(t, 35.0, got.TotalAmount)

	got = duesdomain.MonthlyDue{}
	require.NoError(t, db.First(&got, "id = ?", 3).Error)
	require.Equal(t, 38.5, got.TotalAmount)
}
