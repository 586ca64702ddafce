package record

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGormOverMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return gdb, mock
}

func beginMockTx(t *testing.T) (*sql.Tx, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	mock.ExpectBegin()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return tx, mock
}

// Statements issued through WithTx must run on the caller's transaction
// connection, never on the pool the repository was built with.
func TestRepository_WithTxRoutesStatementsThroughTransaction(t *testing.T) {
	base, baseMock := newGormOverMock(t)
	tx, txMock := beginMockTx(t)

	qtx := NewRepository(base).WithTx(tx)

	rec := &AttendanceRecord{
		ID:        uuid.New(),
		CourseID:  uuid.New(),
		StudentID: uuid.New(),
		Date:      time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
	}
	txMock.ExpectQuery(`INSERT INTO "attendance_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(rec.ID.String()))
	assert.NoError(t, qtx.CreateRecord(context.Background(), rec))

	txMock.ExpectQuery(`SELECT .* FROM "attendance_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err := qtx.FindByKey(context.Background(), rec.CourseID.String(), rec.StudentID.String(), rec.Date)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.NoError(t, txMock.ExpectationsWereMet())
	assert.NoError(t, baseMock.ExpectationsWereMet())
}

func TestRepository_WithTxBindsTransactionConnection(t *testing.T) {
	base, _ := newGormOverMock(t)
	tx, _ := beginMockTx(t)

	qtx := NewRepository(base).WithTx(tx).(*repository)
	assert.Same(t, tx, qtx.db.ConnPool)
}
