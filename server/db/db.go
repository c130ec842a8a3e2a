package db

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"runtime"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DB holds separate read and write connection pools. SQLite allows many
// concurrent readers but only one writer, so the write pool is capped at
// a single connection and opened with _txlock=immediate.
//
// reference: https://kerkour.com/sqlite-for-servers
type DB struct {
	ReadDB  *sql.DB
	WriteDB *sql.DB
	logger  *slog.Logger
}

func NewDB(dbPath string, logger *slog.Logger) (*DB, error) {
	readDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	readDB.SetMaxOpenConns(max(4, runtime.NumCPU()))
	setSQLitePragmas(readDB)

	u, err := url.Parse(dbPath)
	if err != nil {
		return nil, fmt.Errorf("error parsing connection string: %v", err)
	}

	q := u.Query()
	q.Add("_txlock", "immediate")
	u.RawQuery = q.Encode()

	writeDB, err := sql.Open("sqlite3", u.String())
	if err != nil {
		readDB.Close()
		return nil, err
	}
	writeDB.SetMaxOpenConns(1)
	setSQLitePragmas(writeDB)

	return &DB{
		ReadDB:  readDB,
		WriteDB: writeDB,
		logger:  logger,
	}, nil
}

// QueryContext executes a SELECT statement using the read pool
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	db.logger.Debug("querying", "query", query, "args", args)
	return db.ReadDB.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a single-row SELECT using the read pool
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	db.logger.Debug("querying row", "query", query, "args", args)
	return db.ReadDB.QueryRowContext(ctx, query, args...)
}

// ExecContext executes a non-SELECT statement using the write pool
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	db.logger.Debug("executing", "query", query, "args", args)
	tx, err := db.WriteDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return res, nil
}

// Close closes both read and write pools
func (db *DB) Close() error {
	err1 := db.ReadDB.Close()
	err2 := db.WriteDB.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func must(_ any, err error) {
	if err != nil {
		panic(err)
	}
}

func setSQLitePragmas(conn *sql.DB) {
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = true;",
		"PRAGMA temp_store = memory;",
	}
	for _, pragma := range pragmas {
		must(conn.Exec(pragma))
	}
}

// RunSQLFile executes the SQL statements in the given file on the write
// connection. Statements are split on trailing semicolons.
func (db *DB) RunSQLFile(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var queries []string
	var currentQuery strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}

		currentQuery.WriteString(line)
		currentQuery.WriteString(" ")

		if strings.HasSuffix(strings.TrimSpace(line), ";") {
			queries = append(queries, currentQuery.String())
			currentQuery.Reset()
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	for _, query := range queries {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			return err
		}
	}

	return nil
}
