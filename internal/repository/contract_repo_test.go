package repository

import (
	"context"
	"testing"

	"backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func contractFixture(number string, net float64) *model.Contract {
	return &model.Contract{
		ContractNumber: number,
		ClientName:     "Maria Silva",
		Partner:        "WorkBank",
		Product:        "Consignado",
		Status:         "em análise",
		NetVolume:      decimal.NewFromFloat(net),
	}
}

func TestContractUpsertIsIdempotentByNumber(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.AutoMigrate(&model.Contract{}))
	repo := NewContractRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, contractFixture("CT-1001", 1000)))

	updated := contractFixture("CT-1001", 1200)
	updated.Status = "pago"
	require.NoError(t, repo.Upsert(ctx, updated))

	var contracts []model.Contract
	require.NoError(t, db.Find(&contracts).Error)
	require.Len(t, contracts, 1)
	require.Equal(t, "pago", contracts[0].Status)
	require.True(t, contracts[0].NetVolume.Equal(decimal.NewFromFloat(1200)))
}

func TestContractUpsertReadCheckWriteFallback(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.AutoMigrate(&model.Contract{}))
	repo := NewContractRepositoryWithCapabilities(db, UpsertCapabilities{})
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, contractFixture("CT-2002", 500)))
	require.NoError(t, repo.Upsert(ctx, contractFixture("CT-2002", 750)))

	var count int64
	require.NoError(t, db.Model(&model.Contract{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestContractFindFilteredByStatusAndDate(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.AutoMigrate(&model.Contract{}))
	repo := NewContractRepository(db)
	ctx := context.Background()

	paid := contractFixture("CT-3001", 1000)
	paid.Status = "pago"
	pending := contractFixture("CT-3002", 2000)

	require.NoError(t, repo.Upsert(ctx, paid))
	require.NoError(t, repo.Upsert(ctx, pending))

	contracts, err := repo.FindFiltered(ctx, RowFilter{Status: "pago"})
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	require.Equal(t, "CT-3001", contracts[0].ContractNumber)
}
