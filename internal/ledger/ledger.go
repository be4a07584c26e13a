package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/deskflow/slotbooker/internal/scheduling"
)

const schema = `
CREATE TABLE IF NOT EXISTS bookings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tenant TEXT NOT NULL,
	event_id TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bookings_tenant_start ON bookings (tenant, start_time);
CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_event ON bookings (tenant, event_id);
`

// Store is a SQLite backed booking ledger. It records every booking the
// engine commits and answers quota queries from its own rows, independent
// of what the external calendar reports.
type Store struct {
	db *sql.DB
}

var _ scheduling.BookingLedger = (*Store)(nil)

// Open opens or creates the ledger database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent bookings.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure ledger database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply ledger schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a committed booking for the tenant. Recording the same
// event twice is a no-op so a retried caller cannot inflate quota counts.
func (s *Store) Record(ctx context.Context, tenant string, slot scheduling.Slot, eventID string) error {
	query := `
		INSERT INTO bookings (tenant, event_id, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (tenant, event_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		tenant,
		eventID,
		slot.Start.UTC().Format(time.RFC3339),
		slot.End.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record booking: %w", err)
	}
	return nil
}

// Bookings returns the tenant's recorded bookings starting in [from, to).
func (s *Store) Bookings(ctx context.Context, tenant string, from, to time.Time) ([]scheduling.Slot, error) {
	query := `
		SELECT start_time, end_time FROM bookings
		WHERE tenant = ? AND start_time >= ? AND start_time < ?
		ORDER BY start_time
	`
	rows, err := s.db.QueryContext(ctx, query,
		tenant,
		from.UTC().Format(time.RFC3339),
		to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var slots []scheduling.Slot
	for rows.Next() {
		var startRaw, endRaw string
		if err := rows.Scan(&startRaw, &endRaw); err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		start, err := time.Parse(time.RFC3339, startRaw)
		if err != nil {
			return nil, fmt.Errorf("corrupt start time in ledger: %w", err)
		}
		end, err := time.Parse(time.RFC3339, endRaw)
		if err != nil {
			return nil, fmt.Errorf("corrupt end time in ledger: %w", err)
		}
		slots = append(slots, scheduling.Slot{Start: start, End: end})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	return slots, nil
}
