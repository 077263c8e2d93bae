// internal/audit/audit.go
//
// Barali – Registration attempt log.
//
// Context
//   Every finished registration attempt lands in `registration_attempt`:
//   the email, the outcome label, and what the request looked like (browser,
//   device, country).  Passwords never reach this package.  The table feeds
//   abuse review; the site never reads it back on a request path.
//
//   The table definition is Schema; the register component hands it to the
//   boot-time migration runner.
//
// Notes
//   •  Insert failures are logged and dropped.  An audit outage must never
//      change what the user sees.
//
//------------------------------------------------------------------------------

package audit

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/baraliresort/reserve/internal/logger"
	"github.com/baraliresort/reserve/internal/register"
	"github.com/baraliresort/reserve/internal/requestinfo"
)

// Schema creates the attempt table.
const Schema = `CREATE TABLE IF NOT EXISTS registration_attempt (
  id         BIGINT AUTO_INCREMENT PRIMARY KEY,
  email      VARCHAR(255) NOT NULL,
  outcome    VARCHAR(32)  NOT NULL,
  browser    VARCHAR(128) NOT NULL DEFAULT '',
  device     VARCHAR(32)  NOT NULL DEFAULT '',
  country    CHAR(2)      NOT NULL DEFAULT '',
  created_at DATETIME     NOT NULL,
  KEY (email), KEY (created_at)
)`

// Entry is one row.
type Entry struct {
	ID        int64     `db:"id"`
	Email     string    `db:"email"`
	Outcome   string    `db:"outcome"`
	Browser   string    `db:"browser"`
	Device    string    `db:"device"`
	Country   string    `db:"country"`
	CreatedAt time.Time `db:"created_at"`
}

const insertSQL = `INSERT INTO registration_attempt (email, outcome, browser, device, country, created_at) VALUES (:email, :outcome, :browser, :device, :country, :created_at)`

const recentSQL = `SELECT id, email, outcome, browser, device, country, created_at FROM registration_attempt WHERE email = ? ORDER BY created_at DESC LIMIT ?`

// Store writes and reads attempts.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// New wraps an open pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Record inserts e.  CreatedAt defaults to now.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	_, err := s.db.NamedExecContext(ctx, insertSQL, e)
	return err
}

// Recent returns up to limit attempts for email, newest first.
func (s *Store) Recent(ctx context.Context, email string, limit int) ([]Entry, error) {
	var out []Entry
	err := s.db.SelectContext(ctx, &out, recentSQL, email, limit)
	return out, err
}

// Observe implements register.Observer.  Request details come from the
// RequestInfo that Enrich stored in ctx, when present.
func (s *Store) Observe(ctx context.Context, a register.Attempt) {
	e := Entry{Email: a.Email, Outcome: a.Outcome.Label()}
	if info := requestinfo.FromContext(ctx); info != nil {
		e.Browser = info.UA.Summary()
		e.Device = info.UA.Device
		e.Country = info.Geo.CountryISO
		e.CreatedAt = info.Timestamp
	}
	if err := s.Record(ctx, e); err != nil {
		logger.FromContext(ctx).Warnw("audit insert failed", "email", a.Email, "err", err)
	}
}
