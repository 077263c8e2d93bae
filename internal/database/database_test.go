package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	x := sqlx.NewDb(db, "mysql")

	mock.ExpectExec("CREATE TABLE a (id INT)").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE b (id INT)").WillReturnError(errors.New("boom"))

	err = Migrate(context.Background(), x, []string{"CREATE TABLE a (id INT)", "CREATE TABLE b (id INT)", "never"})
	if err == nil {
		t.Fatal("Migrate succeeded past a failing statement")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestOpenRejectsBadDSN(t *testing.T) {
	if _, err := Open(context.Background(), "not a dsn"); err == nil {
		t.Error("Open accepted a malformed DSN")
	}
}
