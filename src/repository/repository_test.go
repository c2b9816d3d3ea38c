package repository_test

import (
	"context"
	"testing"

	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/database/dbtest"
	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/model"
	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrUint(v uint) *uint { return &v }

func TestPairRepository_CreateThenListReturnsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPairRepository(dbtest.Open(t))

	for _, p := range []model.Pair{
		{Symbol: "ETHUSD", Momentum: model.MomentumShort, UpperRange: 4000, LowerRange: 3500},
		{Symbol: "SOLUSD", Momentum: model.MomentumLong, UpperRange: 10, LowerRange: 20},
		{Symbol: "BTCUSD", Momentum: model.MomentumLong, UpperRange: 50000, LowerRange: 48000},
	} {
		pair := p
		require.NoError(t, repo.Create(ctx, &pair))
		require.NotZero(t, pair.ID)

		pairs, err := repo.List(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, pairs)
		assert.Equal(t, pair.ID, pairs[0].ID)
		assert.Equal(t, pair.Symbol, pairs[0].Symbol)
		assert.Equal(t, pair.UpperRange, pairs[0].UpperRange)
		assert.Equal(t, pair.LowerRange, pairs[0].LowerRange)
	}
}

func TestPairRepository_RejectsUnknownMomentum(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPairRepository(dbtest.Open(t))

	err := repo.Create(ctx, &model.Pair{Symbol: "BTCUSD", Momentum: "FLAT", UpperRange: 1, LowerRange: 0})
	require.Error(t, err)

	pairs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestPairRepository_ListEmptyIsNotNil(t *testing.T) {
	pairs, err := repository.NewPairRepository(dbtest.Open(t)).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, pairs)
	assert.Len(t, pairs, 0)
}

func TestPositionRepository_CreateForcesOpen(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPositionRepository(dbtest.Open(t))

	pct, usdt := 9.0, 9.0
	position := &model.Position{
		PairID:           ptrUint(1),
		EntryPrice:       49000,
		Amount:           0.1,
		Type:             model.PositionTypeLong,
		Status:           model.PositionStatusClosed,
		ProfitPercentage: &pct,
		ProfitUSDT:       &usdt,
	}
	require.NoError(t, repo.Create(ctx, position))
	assert.Equal(t, model.PositionStatusOpen, position.Status)

	stored, err := repo.FindByID(ctx, position.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.PositionStatusOpen, stored.Status)
	assert.Nil(t, stored.ProfitPercentage)
	assert.Nil(t, stored.ProfitUSDT)
	assert.Nil(t, stored.ClosedAt)
}

func TestPositionRepository_RejectsUnknownType(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPositionRepository(dbtest.Open(t))

	err := repo.Create(ctx, &model.Position{EntryPrice: 1, Amount: 1, Type: "HEDGE"})
	require.Error(t, err)

	positions, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestPositionRepository_CloseRecordsProfit(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPositionRepository(dbtest.Open(t))

	position := &model.Position{EntryPrice: 49000, Amount: 0.1, Type: model.PositionTypeLong}
	require.NoError(t, repo.Create(ctx, position))

	affected, err := repo.Close(ctx, position.ID, 2.5, 12.25)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	stored, err := repo.FindByID(ctx, position.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.PositionStatusClosed, stored.Status)
	require.NotNil(t, stored.ClosedAt)
	require.NotNil(t, stored.ProfitPercentage)
	require.NotNil(t, stored.ProfitUSDT)
	assert.Equal(t, 2.5, *stored.ProfitPercentage)
	assert.Equal(t, 12.25, *stored.ProfitUSDT)
}

func TestPositionRepository_CloseIsMonotonic(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPositionRepository(dbtest.Open(t))

	position := &model.Position{EntryPrice: 100, Amount: 1, Type: model.PositionTypeShort}
	require.NoError(t, repo.Create(ctx, position))

	_, err := repo.Close(ctx, position.ID, 1, 1)
	require.NoError(t, err)
	first, err := repo.FindByID(ctx, position.ID)
	require.NoError(t, err)

	affected, err := repo.Close(ctx, position.ID, 50, 50)
	require.NoError(t, err)
	assert.Zero(t, affected)

	second, err := repo.FindByID(ctx, position.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, *second.ProfitPercentage)
	assert.True(t, first.ClosedAt.Equal(*second.ClosedAt))
}

func TestPositionRepository_CloseUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPositionRepository(dbtest.Open(t))

	position := &model.Position{EntryPrice: 100, Amount: 1, Type: model.PositionTypeLong}
	require.NoError(t, repo.Create(ctx, position))
	before, err := repo.List(ctx)
	require.NoError(t, err)

	affected, err := repo.Close(ctx, position.ID+100, 1, 1)
	require.NoError(t, err)
	assert.Zero(t, affected)

	after, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPositionRepository_CloseStrict(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPositionRepository(dbtest.Open(t))

	err := repo.CloseStrict(ctx, 42, 1, 1)
	assert.ErrorIs(t, err, repository.ErrPositionNotFound)

	position := &model.Position{EntryPrice: 100, Amount: 1, Type: model.PositionTypeLong}
	require.NoError(t, repo.Create(ctx, position))

	require.NoError(t, repo.CloseStrict(ctx, position.ID, 1, 1))
	assert.ErrorIs(t, repo.CloseStrict(ctx, position.ID, 1, 1), repository.ErrPositionAlreadyClosed)
}

func TestPositionRepository_ListToleratesMissingPair(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	pairs := repository.NewPairRepository(db)
	positions := repository.NewPositionRepository(db)

	pair := &model.Pair{Symbol: "BTCUSD", Momentum: model.MomentumLong, UpperRange: 50000, LowerRange: 48000}
	require.NoError(t, pairs.Create(ctx, pair))

	linked := &model.Position{PairID: &pair.ID, EntryPrice: 49000, Amount: 0.1, Type: model.PositionTypeLong}
	orphan := &model.Position{PairID: ptrUint(pair.ID + 500), EntryPrice: 10, Amount: 1, Type: model.PositionTypeShort}
	unlinked := &model.Position{EntryPrice: 5, Amount: 2, Type: model.PositionTypeShort}
	for _, p := range []*model.Position{linked, orphan, unlinked} {
		require.NoError(t, positions.Create(ctx, p))
	}

	rows, err := positions.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, unlinked.ID, rows[0].ID)
	assert.Nil(t, rows[0].Symbol)
	assert.Nil(t, rows[0].PairID)

	assert.Equal(t, orphan.ID, rows[1].ID)
	assert.Nil(t, rows[1].Symbol)
	require.NotNil(t, rows[1].PairID)
	assert.Equal(t, pair.ID+500, *rows[1].PairID)

	assert.Equal(t, linked.ID, rows[2].ID)
	require.NotNil(t, rows[2].Symbol)
	assert.Equal(t, "BTCUSD", *rows[2].Symbol)
}

func TestRepositories_ReadsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	pairs := repository.NewPairRepository(db)
	positions := repository.NewPositionRepository(db)

	pair := &model.Pair{Symbol: "BTCUSD", Momentum: model.MomentumLong, UpperRange: 2, LowerRange: 1}
	require.NoError(t, pairs.Create(ctx, pair))
	require.NoError(t, positions.Create(ctx, &model.Position{PairID: &pair.ID, EntryPrice: 1, Amount: 1, Type: model.PositionTypeLong}))

	firstPairs, err := pairs.List(ctx)
	require.NoError(t, err)
	secondPairs, err := pairs.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, firstPairs, secondPairs)

	firstPositions, err := positions.List(ctx)
	require.NoError(t, err)
	secondPositions, err := positions.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, firstPositions, secondPositions)
}
