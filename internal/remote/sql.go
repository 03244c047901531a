package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vovakirdan/flagquest/internal/progress"
)

// SQLStore keeps records in a relational database.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	ownsDB  bool
	now     func() time.Time
}

// OpenSQL connects with the dialect's driver and migrates.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("remote: cannot open %s: %w", dialect.DriverName(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("remote: cannot connect to %s: %w", dialect.DriverName(), err)
	}
	s, err := NewSQLStore(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// NewSQLStore wraps an existing connection and migrates. The caller keeps
// ownership of db.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	if err := dialect.ConfigureConnection(db); err != nil {
		return nil, fmt.Errorf("remote: cannot configure connection: %w", err)
	}
	s := &SQLStore{db: db, dialect: dialect, now: time.Now}
	for _, stmt := range dialect.Schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("remote: migration failed: %w", err)
		}
	}
	return s, nil
}

func (s *SQLStore) q(query string) string {
	return s.dialect.RewriteQuery(query)
}

func (s *SQLStore) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// Ensure implements Store.
func (s *SQLStore) Ensure(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, s.q(s.dialect.InsertIgnoreRecord()), userID, s.stamp()); err != nil {
		return fmt.Errorf("remote: cannot ensure record for %s: %w", userID, err)
	}
	return nil
}

// Read implements Store.
func (s *SQLStore) Read(ctx context.Context, userID string) (Record, error) {
	var (
		rec      = Record{UserID: userID}
		rawProg  string
		lastSpin string
	)
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT coins, progress, preferred_language, last_spin_at FROM user_records WHERE user_id = ?`),
		userID,
	).Scan(&rec.Coins, &rawProg, &rec.PreferredLanguage, &lastSpin)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("remote: cannot read record for %s: %w", userID, err)
	}

	rec.Progress = map[string]progress.Record{}
	if rawProg != "" {
		if err := json.Unmarshal([]byte(rawProg), &rec.Progress); err != nil {
			return Record{}, fmt.Errorf("remote: corrupt progress for %s: %w", userID, err)
		}
	}
	if lastSpin != "" {
		if t, err := time.Parse(time.RFC3339Nano, lastSpin); err == nil {
			rec.LastSpinAt = t
		}
	}
	return rec, nil
}

// Patch implements Store.
func (s *SQLStore) Patch(ctx context.Context, userID string, p Patch) error {
	var (
		sets []string
		args []any
	)
	if p.Coins != nil {
		sets = append(sets, "coins = ?")
		args = append(args, max(*p.Coins, 0))
	}
	if p.PreferredLanguage != nil {
		sets = append(sets, "preferred_language = ?")
		args = append(args, *p.PreferredLanguage)
	}
	if p.LastSpinAt != nil {
		sets = append(sets, "last_spin_at = ?")
		args = append(args, p.LastSpinAt.UTC().Format(time.RFC3339Nano))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, s.stamp(), userID)

	query := "UPDATE user_records SET " + strings.Join(sets, ", ") + " WHERE user_id = ?"
	return s.update(ctx, userID, query, args...)
}

// ReplaceProgress implements Store.
func (s *SQLStore) ReplaceProgress(ctx context.Context, userID string, prog map[string]progress.Record) error {
	if prog == nil {
		prog = map[string]progress.Record{}
	}
	data, err := json.Marshal(prog)
	if err != nil {
		return fmt.Errorf("remote: cannot encode progress: %w", err)
	}
	return s.update(ctx, userID,
		"UPDATE user_records SET progress = ?, updated_at = ? WHERE user_id = ?",
		string(data), s.stamp(), userID,
	)
}

// update runs an UPDATE inside a transaction that first checks the record
// exists. RowsAffected alone is unreliable on MySQL for unchanged rows.
func (s *SQLStore) update(ctx context.Context, userID, query string, args ...any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("remote: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, s.q("SELECT 1 FROM user_records WHERE user_id = ?"), userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("remote: cannot read record for %s: %w", userID, err)
	}
	if _, err := tx.ExecContext(ctx, s.q(query), args...); err != nil {
		return fmt.Errorf("remote: cannot update record for %s: %w", userID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("remote: cannot commit update: %w", err)
	}
	return nil
}

// SubmitResult implements Store.
func (s *SQLStore) SubmitResult(ctx context.Context, userID string, levelID, score int) error {
	_, err := s.db.ExecContext(ctx, s.q(s.dialect.UpsertResult()), userID, levelID, max(score, 0), s.stamp())
	if err != nil {
		return fmt.Errorf("remote: cannot submit result: %w", err)
	}
	return nil
}

// TopResults implements Store.
func (s *SQLStore) TopResults(ctx context.Context, levelID, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT user_id, level_id, best_score, plays_count, updated_at
		 FROM timed_results
		 WHERE level_id = ?
		 ORDER BY best_score DESC, user_id ASC
		 LIMIT ?`),
		levelID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("remote: cannot query results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var updated string
		if err := rows.Scan(&r.UserID, &r.LevelID, &r.BestScore, &r.PlaysCount, &updated); err != nil {
			return nil, fmt.Errorf("remote: cannot scan row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
			r.UpdatedAt = t
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("remote: row iteration error: %w", err)
	}
	return results, nil
}

// Close implements Store. A wrapped connection is left open.
func (s *SQLStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

var _ Store = (*SQLStore)(nil)
