// Package localstore persists the local slice of the game catalog in
// SQLite and serves the substring-predicate queries issued by the search
// pipeline. Two drivers are available behind build tags: a pure Go driver
// by default and the cgo driver under the sqlite_cgo tag.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/leroysdeath/vgsearch/pkg/types"
)

var (
	// ErrNotFound is returned when a requested game doesn't exist
	ErrNotFound = errors.New("not found")
)

// Store defines the local catalog interface consumed by the searcher.
type Store interface {
	// SearchGames matches terms as substrings against name OR summary,
	// OR-combined into a single query.
	SearchGames(ctx context.Context, terms []string, limit int) ([]*types.GameEntity, error)

	GetGame(ctx context.Context, id int64) (*types.GameEntity, error)
	UpsertGame(ctx context.Context, game *types.GameEntity) error
	BulkUpsert(ctx context.Context, games []*types.GameEntity) (int, error)
	CountGames(ctx context.Context) (int, error)

	Close() error
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// New creates a SQLite store at dbPath and applies pending migrations.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const gameColumns = `id, name, slug, summary, category, developer, publisher,
	rating, rating_count, follows, hypes`

// SearchGames executes the OR-combined substring predicate. Terms are
// matched case-insensitively against the accent-folded name and the
// summary in one round trip.
func (s *SQLiteStore) SearchGames(ctx context.Context, terms []string, limit int) ([]*types.GameEntity, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	conditions := make([]string, 0, len(terms))
	args := make([]interface{}, 0, len(terms)*2+1)
	for _, term := range terms {
		pattern := "%" + types.FoldDiacritics(strings.ToLower(strings.TrimSpace(term))) + "%"
		conditions = append(conditions, "(search_name LIKE ? OR LOWER(COALESCE(summary, '')) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	args = append(args, limit)

	query := fmt.Sprintf("SELECT %s FROM games WHERE %s LIMIT ?",
		gameColumns, strings.Join(conditions, " OR "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var games []*types.GameEntity
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}

	if err := s.attachReleases(ctx, games); err != nil {
		return nil, err
	}
	return games, nil
}

// GetGame retrieves one game by id.
func (s *SQLiteStore) GetGame(ctx context.Context, id int64) (*types.GameEntity, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM games WHERE id = ?", gameColumns), id)

	game, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachReleases(ctx, []*types.GameEntity{game}); err != nil {
		return nil, err
	}
	return game, nil
}

// UpsertGame inserts or replaces one game and its release records.
func (s *SQLiteStore) UpsertGame(ctx context.Context, game *types.GameEntity) error {
	if err := game.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertGameTx(ctx, tx, game); err != nil {
		return err
	}
	return tx.Commit()
}

// BulkUpsert writes a batch of games in one transaction and returns the
// number written. Invalid entities are skipped, not fatal: the seeding
// path mirrors search's partial-failure tolerance.
func (s *SQLiteStore) BulkUpsert(ctx context.Context, games []*types.GameEntity) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	written := 0
	for _, game := range games {
		if game == nil || game.Validate() != nil {
			continue
		}
		if err := upsertGameTx(ctx, tx, game); err != nil {
			return 0, err
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return written, nil
}

// CountGames returns the number of games in the store.
func (s *SQLiteStore) CountGames(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM games").Scan(&n)
	return n, err
}

func upsertGameTx(ctx context.Context, tx *sql.Tx, game *types.GameEntity) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO games (id, name, search_name, slug, summary, category, developer, publisher,
			rating, rating_count, follows, hypes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			search_name = excluded.search_name,
			slug = excluded.slug,
			summary = excluded.summary,
			category = excluded.category,
			developer = excluded.developer,
			publisher = excluded.publisher,
			rating = excluded.rating,
			rating_count = excluded.rating_count,
			follows = excluded.follows,
			hypes = excluded.hypes,
			updated_at = CURRENT_TIMESTAMP`,
		game.ID, game.Name, game.NormalizedName(), game.Slug, game.Summary, int(game.Category),
		game.Developer, game.Publisher,
		game.Rating, game.RatingCount, game.Follows, game.Hypes)
	if err != nil {
		return fmt.Errorf("upsert game %d: %w", game.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM releases WHERE game_id = ?", game.ID); err != nil {
		return fmt.Errorf("clear releases for game %d: %w", game.ID, err)
	}
	for _, r := range game.Releases {
		var releasedAt interface{}
		if r.Date != nil {
			releasedAt = r.Date.UTC()
		}
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO releases (game_id, platform_id, status, released_at) VALUES (?, ?, ?, ?)",
			game.ID, r.PlatformID, int(r.Status), releasedAt)
		if err != nil {
			return fmt.Errorf("insert release for game %d: %w", game.ID, err)
		}
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(row scanner) (*types.GameEntity, error) {
	var (
		game     types.GameEntity
		slug     sql.NullString
		summary  sql.NullString
		category int
		dev      sql.NullString
		pub      sql.NullString
		rating   sql.NullFloat64
		count    sql.NullInt64
		follows  sql.NullInt64
		hypes    sql.NullInt64
	)

	err := row.Scan(&game.ID, &game.Name, &slug, &summary, &category,
		&dev, &pub, &rating, &count, &follows, &hypes)
	if err != nil {
		return nil, err
	}

	game.Slug = slug.String
	game.Summary = summary.String
	game.Category = types.Category(category)
	if game.Category < types.CategoryUnknown || game.Category > types.CategoryPortUpdate {
		game.Category = types.CategoryUnknown
	}
	game.Developer = dev.String
	game.Publisher = pub.String
	if rating.Valid {
		v := rating.Float64
		game.Rating = &v
	}
	if count.Valid {
		v := int(count.Int64)
		game.RatingCount = &v
	}
	if follows.Valid {
		v := int(follows.Int64)
		game.Follows = &v
	}
	if hypes.Valid {
		v := int(hypes.Int64)
		game.Hypes = &v
	}
	return &game, nil
}

func (s *SQLiteStore) attachReleases(ctx context.Context, games []*types.GameEntity) error {
	if len(games) == 0 {
		return nil
	}

	byID := make(map[int64]*types.GameEntity, len(games))
	placeholders := make([]string, 0, len(games))
	args := make([]interface{}, 0, len(games))
	for _, g := range games {
		byID[g.ID] = g
		placeholders = append(placeholders, "?")
		args = append(args, g.ID)
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT game_id, platform_id, status, released_at FROM releases WHERE game_id IN (%s)",
			strings.Join(placeholders, ",")), args...)
	if err != nil {
		return fmt.Errorf("load releases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			gameID     int64
			platformID int
			status     int
			releasedAt sql.NullTime
		)
		if err := rows.Scan(&gameID, &platformID, &status, &releasedAt); err != nil {
			return err
		}
		game, ok := byID[gameID]
		if !ok {
			continue
		}
		record := types.ReleaseRecord{
			PlatformID: platformID,
			Status:     types.ReleaseStatus(status),
		}
		if record.Status < types.StatusUnknown || record.Status > types.StatusDelayed {
			record.Status = types.StatusUnknown
		}
		if releasedAt.Valid {
			d := releasedAt.Time
			record.Date = &d
		}
		game.Releases = append(game.Releases, record)
	}
	return rows.Err()
}
