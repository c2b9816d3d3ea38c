package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}

func TestPairRepositoryList_OrdersNewestFirst(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := NewPairRepository(mockDB)

	createdAt := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "symbol", "momentum", "upper_range", "lower_range", "created_at"}).
		AddRow(2, "ETHUSD", "SHORT", 4000.0, 3500.0, createdAt.Add(time.Hour)).
		AddRow(1, "BTCUSD", "LONG", 50000.0, 48000.0, createdAt)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "pairs" ORDER BY created_at DESC, id DESC`)).
		WillReturnRows(rows)

	pairs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	require.Equal(t, "ETHUSD", pairs[0].Symbol)
	require.Equal(t, "BTCUSD", pairs[1].Symbol)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPairRepositoryList_StorageError(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := NewPairRepository(mockDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "pairs"`)).
		WillReturnError(errors.New("connection reset"))

	pairs, err := repo.List(context.Background())
	require.EqualError(t, err, "connection reset")
	require.Nil(t, pairs)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPairRepositoryCreate(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := NewPairRepository(mockDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "pairs" (`)).
		WithArgs("BTCUSD", "LONG", 50000.0, 48000.0, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	pair := &model.Pair{Symbol: "BTCUSD", Momentum: "LONG", UpperRange: 50000, LowerRange: 48000}
	require.NoError(t, repo.Create(context.Background(), pair))
	require.Equal(t, uint(1), pair.ID)
	require.False(t, pair.CreatedAt.IsZero())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPositionRepositoryList_UsesLeftJoin(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := NewPositionRepository(mockDB)

	rows := sqlmock.NewRows([]string{"id", "pair_id", "entry_price", "amount", "type", "status", "profit_percentage", "profit_usdt", "created_at", "closed_at", "symbol"}).
		AddRow(2, 99, 10.0, 1.0, "SHORT", "OPEN", nil, nil, time.Now(), nil, nil).
		AddRow(1, 1, 49000.0, 0.1, "LONG", "OPEN", nil, nil, time.Now(), nil, "BTCUSD")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT positions.*, pairs.symbol FROM "positions" LEFT JOIN pairs ON positions.pair_id = pairs.id ORDER BY positions.created_at DESC, positions.id DESC`)).
		WillReturnRows(rows)

	positions, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 2)
	require.Nil(t, positions[0].Symbol)
	require.NotNil(t, positions[1].Symbol)
	require.Equal(t, "BTCUSD", *positions[1].Symbol)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPositionRepositoryClose_OnlyTouchesOpenRows(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := NewPositionRepository(mockDB)
	closedAt := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return closedAt }

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "positions" SET "closed_at"=$1,"profit_percentage"=$2,"profit_usdt"=$3,"status"=$4 WHERE id = $5 AND status = $6`)).
		WithArgs(closedAt, 2.5, 12.25, "CLOSED", uint(7), "OPEN").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	affected, err := repo.Close(context.Background(), 7, 2.5, 12.25)
	require.NoError(t, err)
	require.Zero(t, affected)

	require.NoError(t, mock.ExpectationsWereMet())
}
