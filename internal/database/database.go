package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

const tableName = "scopa_results"

const columns = "id, game_id, created_at, player_id, player_name, seat, scope, captured, denari, sette_bello, primiera, total"

// Service stores finished rounds.
type Service struct {
	db     *sql.DB
	m      *sync.Mutex
	driver string
	logger *zap.Logger
}

// New opens the database and creates the results table if needed.
func New(driver, dsn string, logger *zap.Logger) (*Service, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	// Every connection to an in-memory sqlite database is a separate database.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	sqlStmt := `
	create table if not exists ` + tableName + ` (
		id text not null primary key,
		game_id text not null,
		created_at text not null,
		player_id text not null,
		player_name text not null,
		seat integer not null,
		scope integer not null,
		captured integer not null,
		denari integer not null,
		sette_bello integer not null,
		primiera integer not null,
		total integer not null
	);
	`
	if _, err := db.Exec(sqlStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("create %s table: %w", tableName, err)
	}

	logger.Info("Database ready", zap.String("driver", driver), zap.String("table", tableName))
	return &Service{
		db:     db,
		m:      &sync.Mutex{},
		driver: driver,
		logger: logger,
	}, nil
}

func (s *Service) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
func (s *Service) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Insert stores the results of one round in a single transaction.
func (s *Service) Insert(ctx context.Context, results []RoundResult) error {
	s.m.Lock()
	defer s.m.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert results: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind("INSERT INTO "+tableName+
		" ("+columns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"))
	if err != nil {
		return fmt.Errorf("insert results: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx,
			r.ID,
			r.GameID,
			r.CreatedAt,
			r.PlayerID,
			r.PlayerName,
			r.Seat,
			r.Scope,
			r.Captured,
			r.Denari,
			r.SetteBello,
			r.Primiera,
			r.Total); err != nil {
			return fmt.Errorf("insert result %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert results: %w", err)
	}
	s.logger.Debug("Stored round results", zap.Int("rows", len(results)))
	return nil
}

// GetAll returns every stored result, oldest round first.
func (s *Service) GetAll(ctx context.Context) ([]RoundResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	return s.query(ctx, "SELECT "+columns+" FROM "+tableName+" ORDER BY created_at, game_id, seat")
}

// GetByPlayer returns the results of the named player. It returns
// sql.ErrNoRows when the player has none.
func (s *Service) GetByPlayer(ctx context.Context, playerName string) ([]RoundResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	results, err := s.query(ctx, "SELECT "+columns+" FROM "+tableName+
		" WHERE player_name = ? ORDER BY created_at, game_id, seat", playerName)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, sql.ErrNoRows // No results found
	}
	return results, nil
}

func (s *Service) query(ctx context.Context, query string, args ...any) ([]RoundResult, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []RoundResult
	for rows.Next() {
		var result RoundResult
		if err := rows.Scan(
			&result.ID,
			&result.GameID,
			&result.CreatedAt,
			&result.PlayerID,
			&result.PlayerName,
			&result.Seat,
			&result.Scope,
			&result.Captured,
			&result.Denari,
			&result.SetteBello,
			&result.Primiera,
			&result.Total); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	return results, nil
}
