package leave

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestRepository_WithTxBindsTransactionConnection(t *testing.T) {
	base, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer base.Close()
	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn: base,
	}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}

	txDB, txMock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer txDB.Close()
	txMock.ExpectBegin()
	tx, err := txDB.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	qtx := NewRepository(gdb).WithTx(tx)
	assert.Same(t, tx, qtx.(*repository).db.ConnPool)
}
