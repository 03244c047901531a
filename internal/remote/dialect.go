package remote

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect captures the SQL differences between supported databases.
type Dialect interface {
	// DriverName returns the driver name for sql.Open.
	DriverName() string

	// RewriteQuery converts placeholder syntax if needed (? to $1 for postgres).
	RewriteQuery(query string) string

	// Schema returns the statements that create the tables.
	Schema() []string

	// InsertIgnoreRecord inserts an empty record unless one exists.
	InsertIgnoreRecord() string

	// UpsertResult inserts a result row or raises best_score and plays_count.
	UpsertResult() string

	// ConfigureConnection applies pool settings.
	ConfigureConnection(db *sql.DB) error
}

// DialectFor returns the dialect for a backend name.
func DialectFor(backend string) (Dialect, error) {
	switch backend {
	case "sqlite", "sqlite3":
		return SQLiteDialect{}, nil
	case "postgres", "postgresql":
		return PostgresDialect{}, nil
	case "mysql":
		return MySQLDialect{}, nil
	default:
		return nil, fmt.Errorf("remote: unsupported SQL backend %q", backend)
	}
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// Portable column types: timestamps are RFC 3339 text so all three drivers
// scan them the same way.
const (
	createRecords = `CREATE TABLE IF NOT EXISTS user_records (
		user_id VARCHAR(191) PRIMARY KEY,
		coins INTEGER NOT NULL DEFAULT 0,
		progress TEXT NOT NULL,
		preferred_language VARCHAR(32) NOT NULL DEFAULT '',
		last_spin_at VARCHAR(40) NOT NULL DEFAULT '',
		updated_at VARCHAR(40) NOT NULL DEFAULT ''
	)`
	createResults = `CREATE TABLE IF NOT EXISTS timed_results (
		user_id VARCHAR(191) NOT NULL,
		level_id INTEGER NOT NULL,
		best_score INTEGER NOT NULL DEFAULT 0,
		plays_count INTEGER NOT NULL DEFAULT 0,
		updated_at VARCHAR(40) NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, level_id)
	)`
	createResultsIndex = `CREATE INDEX IF NOT EXISTS idx_timed_results_board ON timed_results(level_id, best_score DESC)`

	insertIgnoreConflict = `INSERT INTO user_records (user_id, coins, progress, updated_at)
		VALUES (?, 0, '{}', ?)
		ON CONFLICT(user_id) DO NOTHING`

	upsertResultConflict = `INSERT INTO timed_results (user_id, level_id, best_score, plays_count, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(user_id, level_id) DO UPDATE SET
			best_score = CASE WHEN excluded.best_score > timed_results.best_score
				THEN excluded.best_score ELSE timed_results.best_score END,
			plays_count = timed_results.plays_count + 1,
			updated_at = excluded.updated_at`
)

// SQLiteDialect implements Dialect for SQLite.
type SQLiteDialect struct{}

func (SQLiteDialect) DriverName() string               { return "sqlite" }
func (SQLiteDialect) RewriteQuery(query string) string { return query }
func (SQLiteDialect) InsertIgnoreRecord() string       { return insertIgnoreConflict }
func (SQLiteDialect) UpsertResult() string             { return upsertResultConflict }

func (SQLiteDialect) Schema() []string {
	return []string{createRecords, createResults, createResultsIndex}
}

func (SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	// Single writer avoids SQLITE_BUSY under concurrent sessions.
	db.SetMaxOpenConns(1)
	return nil
}

// PostgresDialect implements Dialect for PostgreSQL.
type PostgresDialect struct{}

func (PostgresDialect) DriverName() string { return "postgres" }

func (PostgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

func (PostgresDialect) InsertIgnoreRecord() string { return insertIgnoreConflict }
func (PostgresDialect) UpsertResult() string       { return upsertResultConflict }

func (PostgresDialect) Schema() []string {
	return []string{createRecords, createResults, createResultsIndex}
}

func (PostgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

// MySQLDialect implements Dialect for MySQL.
type MySQLDialect struct{}

func (MySQLDialect) DriverName() string               { return "mysql" }
func (MySQLDialect) RewriteQuery(query string) string { return query }

func (MySQLDialect) InsertIgnoreRecord() string {
	return `INSERT IGNORE INTO user_records (user_id, coins, progress, updated_at) VALUES (?, 0, '{}', ?)`
}

func (MySQLDialect) UpsertResult() string {
	return "INSERT INTO timed_results (user_id, level_id, best_score, plays_count, updated_at) " +
		"VALUES (?, ?, ?, 1, ?) " +
		"ON DUPLICATE KEY UPDATE best_score = GREATEST(best_score, VALUES(best_score)), " +
		"plays_count = plays_count + 1, updated_at = VALUES(updated_at)"
}

func (MySQLDialect) Schema() []string {
	// MySQL has no CREATE INDEX IF NOT EXISTS; the index is declared inline.
	return []string{
		createRecords,
		`CREATE TABLE IF NOT EXISTS timed_results (
			user_id VARCHAR(191) NOT NULL,
			level_id INTEGER NOT NULL,
			best_score INTEGER NOT NULL DEFAULT 0,
			plays_count INTEGER NOT NULL DEFAULT 0,
			updated_at VARCHAR(40) NOT NULL DEFAULT '',
			PRIMARY KEY (user_id, level_id),
			INDEX idx_timed_results_board (level_id, best_score)
		)`,
	}
}

func (MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}
