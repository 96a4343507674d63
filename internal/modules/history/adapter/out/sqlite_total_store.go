package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dailymile/internal/modules/history/domain"
	historyout "dailymile/internal/modules/history/port/out"
	"dailymile/internal/platform/clock"

	_ "modernc.org/sqlite"
)

type SQLiteTotalStore struct {
	db    *sql.DB
	clock clock.Clock
}

func NewSQLiteTotalStore(dbPath string, clk clock.Clock) (historyout.TotalStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if clk == nil {
		clk = clock.SystemClock{}
	}
	store := &SQLiteTotalStore{db: db, clock: clk}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteTotalStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS daily_totals (
  day TEXT PRIMARY KEY,
  miles REAL NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS activity_contributions (
  activity_key TEXT PRIMARY KEY,
  day TEXT NOT NULL,
  miles REAL NOT NULL,
  recorded_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create daily_totals table: %w", err)
	}
	return nil
}

const addTotalStmt = `
INSERT INTO daily_totals (day, miles, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(day) DO UPDATE SET
  miles=daily_totals.miles + excluded.miles,
  updated_at=excluded.updated_at
RETURNING miles;
`

// Add accumulates miles onto the day's total in one statement and returns
// the new total.
func (s *SQLiteTotalStore) Add(ctx context.Context, day string, miles float64) (domain.DailyTotal, error) {
	total := domain.DailyTotal{DateKey: day}
	row := s.db.QueryRowContext(ctx, addTotalStmt, day, miles, s.clock.Now().Format(time.RFC3339))
	if err := row.Scan(&total.TotalDistanceMiles); err != nil {
		return domain.DailyTotal{}, fmt.Errorf("add daily total: %w", err)
	}
	return total, nil
}

// AddActivity counts an activity's miles once per key. A key that was already
// recorded leaves totals untouched, reports added=false and returns the total
// of the day the key was first counted on.
func (s *SQLiteTotalStore) AddActivity(ctx context.Context, day, key string, miles float64) (domain.DailyTotal, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.DailyTotal{}, false, fmt.Errorf("begin activity contribution: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.clock.Now().Format(time.RFC3339)
	res, err := tx.ExecContext(ctx, `
INSERT INTO activity_contributions (activity_key, day, miles, recorded_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(activity_key) DO NOTHING;
`, key, day, miles, now)
	if err != nil {
		return domain.DailyTotal{}, false, fmt.Errorf("record activity contribution: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return domain.DailyTotal{}, false, fmt.Errorf("record activity contribution: %w", err)
	}

	total := domain.DailyTotal{DateKey: day}
	if inserted == 0 {
		err = tx.QueryRowContext(ctx, `
SELECT c.day, COALESCE(t.miles, 0)
FROM activity_contributions c
LEFT JOIN daily_totals t ON t.day = c.day
WHERE c.activity_key = ?;
`, key).Scan(&total.DateKey, &total.TotalDistanceMiles)
		if err != nil {
			return domain.DailyTotal{}, false, fmt.Errorf("read counted activity: %w", err)
		}
	} else if err := tx.QueryRowContext(ctx, addTotalStmt, day, miles, now).Scan(&total.TotalDistanceMiles); err != nil {
		return domain.DailyTotal{}, false, fmt.Errorf("add daily total: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.DailyTotal{}, false, fmt.Errorf("commit activity contribution: %w", err)
	}
	return total, inserted > 0, nil
}

func (s *SQLiteTotalStore) Total(ctx context.Context, day string) (domain.DailyTotal, error) {
	total := domain.DailyTotal{DateKey: day}
	err := s.db.QueryRowContext(ctx, `SELECT miles FROM daily_totals WHERE day = ?`, day).Scan(&total.TotalDistanceMiles)
	if errors.Is(err, sql.ErrNoRows) {
		return total, nil
	}
	if err != nil {
		return domain.DailyTotal{}, fmt.Errorf("read daily total: %w", err)
	}
	return total, nil
}

func (s *SQLiteTotalStore) Page(ctx context.Context, query domain.PageQuery) ([]domain.DailyTotal, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = domain.DefaultPageSize
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT day, miles
FROM daily_totals
WHERE day <= ?
ORDER BY day DESC
LIMIT ?;
`, query.Through, limit)
	if err != nil {
		return nil, fmt.Errorf("page daily totals: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DailyTotal, 0, limit)
	for rows.Next() {
		total := domain.DailyTotal{}
		if err := rows.Scan(&total.DateKey, &total.TotalDistanceMiles); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		out = append(out, total)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily totals: %w", err)
	}
	return out, nil
}
