// internal/audit/audit_test.go
//
// Unit-tests for the audit store using sqlmock.
//
// Run: go test ./internal/audit -v

package audit

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/baraliresort/reserve/internal/register"
	"github.com/baraliresort/reserve/internal/requestinfo"
	"github.com/baraliresort/reserve/internal/ua"
)

const insertPositional = `INSERT INTO registration_attempt (email, outcome, browser, device, country, created_at) VALUES (?, ?, ?, ?, ?, ?)`

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "mysql")), mock
}

func TestObserveWithRequestInfo(t *testing.T) {
	s, mock := newMock(t)
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(insertPositional)).
		WithArgs("jo@x.com", "duplicate", "Chrome 124/Desktop", "Desktop", "TH", at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	ctx := requestinfo.WithInfo(context.Background(), &requestinfo.RequestInfo{
		UA:        ua.Info{Browser: "Chrome", Version: "124", Device: "Desktop"},
		Geo:       requestinfo.Geo{CountryISO: "TH"},
		Timestamp: at,
	})
	s.Observe(ctx, register.Attempt{
		Email:   "jo@x.com",
		Outcome: register.Outcome{State: register.StateRejected, Reason: register.ReasonDuplicate},
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestObserveSwallowsInsertErrors(t *testing.T) {
	s, mock := newMock(t)
	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	mock.ExpectExec(regexp.QuoteMeta(insertPositional)).
		WithArgs("jo@x.com", "completed", "", "", "", fixed).
		WillReturnError(errors.New("table is full"))

	s.Observe(context.Background(), register.Attempt{
		Email:   "jo@x.com",
		Outcome: register.Outcome{State: register.StateCompleted},
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestRecent(t *testing.T) {
	s, mock := newMock(t)
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(recentSQL)).
		WithArgs("jo@x.com", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "outcome", "browser", "device", "country", "created_at"}).
			AddRow(2, "jo@x.com", "completed", "Chrome/Desktop", "Desktop", "TH", at).
			AddRow(1, "jo@x.com", "validation", "Chrome/Desktop", "Desktop", "TH", at.Add(-time.Minute)))

	got, err := s.Recent(context.Background(), "jo@x.com", 5)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(got) != 2 || got[0].Outcome != "completed" || got[1].ID != 1 {
		t.Fatalf("unexpected rows: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
