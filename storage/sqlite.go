package storage

import (
	"context"
	"database/sql"
	"github.com/google/uuid"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"scf/geometry"
	"scf/matching"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS stores (
		id        INTEGER PRIMARY KEY,
		longitude REAL NOT NULL,
		latitude  REAL NOT NULL,
		name      TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS constellations (
		uuid       TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		size       REAL NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS constellation_stores (
		uuid     TEXT NOT NULL REFERENCES constellations(uuid) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		store_id INTEGER NOT NULL,
		PRIMARY KEY (uuid, position)
	);
	CREATE TABLE IF NOT EXISTS stores_checked (
		store_id     INTEGER PRIMARY KEY,
		checker_name TEXT NOT NULL,
		checked_at   TEXT NOT NULL
	);
`

// Store persists stores, found constellations and the anchors which have already been swept. It implements the
// PointSource, Sink and AnchorTracker interfaces of the finder.
type Store struct {
	db *sql.DB
}

const timeLayout = "2006-01-02T15:04:05.000000000Z"

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open database %s", path)
	}

	// Pragmas are set per connection and concurrent writers would only wait for each other anyway.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	err = s.init()
	if err != nil {
		db.Close()
		return nil, err
	}

	sigolo.Debugf("Opened database %s", path)
	return s, nil
}

func (s *Store) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return errors.Wrapf(err, "Unable to execute '%s'", p)
		}
	}

	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(err, "Unable to create database schema")
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveStores inserts or replaces the given stores.
func (s *Store) SaveStores(ctx context.Context, stores []geometry.Point) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "Unable to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO stores (id, longitude, latitude, name) VALUES (?, ?, ?, ?)")
	if err != nil {
		return errors.Wrap(err, "Unable to prepare store insertion")
	}
	defer stmt.Close()

	for _, store := range stores {
		if _, err := stmt.ExecContext(ctx, store.ID, store.Lon, store.Lat, store.Name); err != nil {
			return errors.Wrapf(err, "Unable to insert store %d", store.ID)
		}
	}

	return errors.Wrap(tx.Commit(), "Unable to commit stores")
}

// Stores returns all stores ordered by their ID.
func (s *Store) Stores(ctx context.Context) ([]geometry.Point, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, longitude, latitude, name FROM stores ORDER BY id")
	if err != nil {
		return nil, errors.Wrap(err, "Unable to query stores")
	}
	defer rows.Close()

	var stores []geometry.Point
	for rows.Next() {
		var store geometry.Point
		if err := rows.Scan(&store.ID, &store.Lon, &store.Lat, &store.Name); err != nil {
			return nil, errors.Wrap(err, "Unable to read store")
		}
		stores = append(stores, store)
	}

	return stores, errors.Wrap(rows.Err(), "Unable to read stores")
}

// NextAnchor returns a random store which hasn't been marked as processed, or nil when all stores are processed.
// Concurrent callers may get the same store, which is fine since MarkProcessed ignores duplicates.
func (s *Store) NextAnchor(ctx context.Context) (*geometry.Point, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, longitude, latitude, name
		FROM stores
		WHERE id NOT IN (SELECT store_id FROM stores_checked)
		ORDER BY RANDOM()
		LIMIT 1`)

	var store geometry.Point
	err := row.Scan(&store.ID, &store.Lon, &store.Lat, &store.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "Unable to query next anchor")
	}
	return &store, nil
}

func (s *Store) MarkProcessed(ctx context.Context, anchor geometry.Point, checkerName string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO stores_checked (store_id, checker_name, checked_at) VALUES (?, ?, ?)",
		anchor.ID, checkerName, time.Now().UTC().Format(timeLayout))
	return errors.Wrapf(err, "Unable to mark store %d as processed", anchor.ID)
}

func (s *Store) ProcessedCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stores_checked").Scan(&count)
	return count, errors.Wrap(err, "Unable to count processed stores")
}

// WriteConstellation stores the constellation and the IDs of its stores within one transaction.
func (s *Store) WriteConstellation(ctx context.Context, constellation *matching.Constellation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "Unable to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO constellations (uuid, name, size, created_at) VALUES (?, ?, ?, ?)",
		constellation.ID.String(), constellation.TemplateName, constellation.Size, constellation.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return errors.Wrapf(err, "Unable to insert constellation %s", constellation.ID)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO constellation_stores (uuid, position, store_id) VALUES (?, ?, ?)")
	if err != nil {
		return errors.Wrap(err, "Unable to prepare constellation store insertion")
	}
	defer stmt.Close()

	for i, store := range constellation.Stores {
		if _, err := stmt.ExecContext(ctx, constellation.ID.String(), i, store.ID); err != nil {
			return errors.Wrapf(err, "Unable to insert store %d of constellation %s", store.ID, constellation.ID)
		}
	}

	return errors.Wrap(tx.Commit(), "Unable to commit constellation")
}

// Constellations returns all found constellations, oldest first.
func (s *Store) Constellations(ctx context.Context) ([]*matching.Constellation, error) {
	return s.queryConstellations(ctx, "")
}

// Constellation returns the constellation with the given ID or nil if there's no such constellation.
func (s *Store) Constellation(ctx context.Context, id uuid.UUID) (*matching.Constellation, error) {
	constellations, err := s.queryConstellations(ctx, id.String())
	if err != nil || len(constellations) == 0 {
		return nil, err
	}
	return constellations[0], nil
}

func (s *Store) queryConstellations(ctx context.Context, id string) ([]*matching.Constellation, error) {
	query := `
		SELECT c.uuid, c.name, c.size, c.created_at, s.id, s.longitude, s.latitude, s.name
		FROM constellations c
		JOIN constellation_stores cs ON cs.uuid = c.uuid
		JOIN stores s ON s.id = cs.store_id
		WHERE ? = '' OR c.uuid = ?
		ORDER BY c.created_at, c.uuid, cs.position`

	rows, err := s.db.QueryContext(ctx, query, id, id)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to query constellations")
	}
	defer rows.Close()

	var result []*matching.Constellation
	var current *matching.Constellation
	for rows.Next() {
		var idString string
		var name string
		var size float64
		var createdAt string
		var store geometry.Point

		err = rows.Scan(&idString, &name, &size, &createdAt, &store.ID, &store.Lon, &store.Lat, &store.Name)
		if err != nil {
			return nil, errors.Wrap(err, "Unable to read constellation")
		}

		if current == nil || current.ID.String() != idString {
			constellationId, err := uuid.Parse(idString)
			if err != nil {
				return nil, errors.Wrapf(err, "Invalid constellation ID '%s'", idString)
			}
			createdAtTime, err := time.Parse(timeLayout, createdAt)
			if err != nil {
				return nil, errors.Wrapf(err, "Invalid creation time of constellation %s", idString)
			}
			current = &matching.Constellation{
				ID:           constellationId,
				TemplateName: name,
				Size:         size,
				CreatedAt:    createdAtTime,
			}
			result = append(result, current)
		}
		current.Stores = append(current.Stores, store)
	}

	return result, errors.Wrap(rows.Err(), "Unable to read constellations")
}
