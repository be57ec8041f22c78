// Package store persists named WorldModel snapshots in sqlite, the
// Go-native analogue of the teacher's internal/db package: schema
// migrations embedded with go:embed and applied with golang-migrate on
// open, plus a handful of typed CRUD methods over the one table this
// domain needs.
package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"

	"github.com/m-marini/wheelly/internal/datafile"
	"github.com/m-marini/wheelly/internal/marker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a sqlite database holding WorldModel snapshots.
type Store struct {
	db *sql.DB
}

// Open opens (and, if needed, creates) the sqlite database at path and
// migrates it to the latest schema version.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: apply %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrateUp() error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("store: sub-filesystem for embedded migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("store: iofs source driver: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("store: sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("store: migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("store: migrate up: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SnapshotMeta describes a stored snapshot without its payload.
type SnapshotMeta struct {
	ID              int64
	Name            string
	TakenUnixMillis int64
}

// SaveWorldModel encodes m with internal/datafile and inserts it as a new
// snapshot under name, returning the new snapshot id.
func (s *Store) SaveWorldModel(name string, takenUnixMillis int64, m marker.WorldModel) (int64, error) {
	w := datafile.NewWriter()
	datafile.EncodeWorldModel(w, m)

	res, err := s.db.Exec(
		`INSERT INTO world_model_snapshot (name, taken_unix_millis, blob) VALUES (?, ?, ?)`,
		name, takenUnixMillis, w.Bytes(),
	)
	if err != nil {
		return 0, fmt.Errorf("store: insert snapshot %q: %w", name, err)
	}
	return res.LastInsertId()
}

// LoadLatestWorldModel returns the most recently saved snapshot under
// name, or ok=false if none exists.
func (s *Store) LoadLatestWorldModel(name string) (m marker.WorldModel, ok bool, err error) {
	row := s.db.QueryRow(
		`SELECT blob FROM world_model_snapshot WHERE name = ? ORDER BY snapshot_id DESC LIMIT 1`,
		name,
	)
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return marker.WorldModel{}, false, nil
		}
		return marker.WorldModel{}, false, fmt.Errorf("store: load snapshot %q: %w", name, err)
	}

	r := datafile.NewReader(blob)
	m, err = datafile.DecodeWorldModel(r)
	if err != nil {
		return marker.WorldModel{}, false, fmt.Errorf("store: decode snapshot %q: %w", name, err)
	}
	return m, true, nil
}

// AttachAdminRoutes mounts a tailsql live SQL debugger and a snapshot
// count endpoint under mux's /debug/ prefix, the Go-native analogue of
// the teacher's DB.AttachAdminRoutes.
func (s *Store) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{RoutePrefix: "/debug/tailsql/"})
	if err != nil {
		panic(fmt.Sprintf("store: create tailsql server: %v", err))
	}
	tsql.SetDB("sqlite://world_model.db", s.db, &tailsql.DBOptions{Label: "World Model Store"})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("snapshot-stats", "Snapshot counts per name (JSON)", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rows, err := s.db.Query(`SELECT name, COUNT(*) FROM world_model_snapshot GROUP BY name`)
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to query snapshot stats: %v", err), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		counts := map[string]int{}
		for rows.Next() {
			var name string
			var n int
			if err := rows.Scan(&name, &n); err != nil {
				http.Error(w, fmt.Sprintf("failed to scan snapshot stats: %v", err), http.StatusInternalServerError)
				return
			}
			counts[name] = n
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(counts); err != nil {
			http.Error(w, fmt.Sprintf("failed to encode snapshot stats: %v", err), http.StatusInternalServerError)
		}
	}))
}

// ListSnapshots returns up to limit most recent snapshot entries for name,
// newest first.
func (s *Store) ListSnapshots(name string, limit int) ([]SnapshotMeta, error) {
	rows, err := s.db.Query(
		`SELECT snapshot_id, name, taken_unix_millis FROM world_model_snapshot WHERE name = ? ORDER BY snapshot_id DESC LIMIT ?`,
		name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list snapshots %q: %w", name, err)
	}
	defer rows.Close()

	var out []SnapshotMeta
	for rows.Next() {
		var meta SnapshotMeta
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.TakenUnixMillis); err != nil {
			return nil, fmt.Errorf("store: scan snapshot row: %w", err)
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}
