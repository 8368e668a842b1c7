// Package postgres provides a PostgreSQL simplerelease.Repository backed
// by pgx. See migrations/releases.sql for the expected schema.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-release/pkg/simplerelease"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplerelease.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

const releaseColumns = `
	id, owner_id, release_name, release_version, primary_artist,
	featuring_artist, roles, contributors, genre, subgenre, type_of_release,
	cover_art_key, audio_key, status, reject_reason, created_at, updated_at`

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("release already exists")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return simplerelease.ErrReleaseNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) CreateRelease(ctx context.Context, release *simplerelease.Release) error {
	query := `
		INSERT INTO releases (
			id, owner_id, release_name, release_version, primary_artist,
			featuring_artist, roles, contributors, genre, subgenre,
			type_of_release, cover_art_key, audio_key, status, reject_reason,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.db.Exec(ctx, query,
		release.ID, release.OwnerID, release.ReleaseName, release.ReleaseVersion,
		release.PrimaryArtist, release.FeaturingArtist, release.Roles,
		release.Contributors, release.Genre, release.Subgenre,
		release.TypeOfRelease, release.CoverArtKey, release.AudioKey,
		release.Status, release.RejectReason, release.CreatedAt, release.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("create release", err)
	}

	return nil
}

func (r *Repository) GetRelease(ctx context.Context, id uuid.UUID) (*simplerelease.Release, error) {
	query := `SELECT` + releaseColumns + ` FROM releases WHERE id = $1`

	release, err := scanRelease(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplerelease.ErrReleaseNotFound
		}
		return nil, r.handlePostgresError("get release", err)
	}

	return release, nil
}

func (r *Repository) UpdateRelease(ctx context.Context, release *simplerelease.Release) error {
	query := `
		UPDATE releases SET
			release_name = $2, release_version = $3, primary_artist = $4,
			featuring_artist = $5, roles = $6, contributors = $7, genre = $8,
			subgenre = $9, type_of_release = $10, cover_art_key = $11,
			audio_key = $12, status = $13, reject_reason = $14, updated_at = $15
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		release.ID, release.ReleaseName, release.ReleaseVersion,
		release.PrimaryArtist, release.FeaturingArtist, release.Roles,
		release.Contributors, release.Genre, release.Subgenre,
		release.TypeOfRelease, release.CoverArtKey, release.AudioKey,
		release.Status, release.RejectReason, release.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("update release", err)
	}
	if tag.RowsAffected() == 0 {
		return simplerelease.ErrReleaseNotFound
	}

	return nil
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]*simplerelease.Release, error) {
	query := `SELECT` + releaseColumns + `
		FROM releases WHERE owner_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, r.handlePostgresError("list releases", err)
	}
	defer rows.Close()

	return collectReleases(rows)
}

func (r *Repository) SearchReleases(ctx context.Context, scope simplerelease.SearchScope, filter simplerelease.SearchFilter) ([]*simplerelease.Release, error) {
	where, args := buildSearchWhere(scope, filter)

	query := `SELECT` + releaseColumns + ` FROM releases`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("search releases", err)
	}
	defer rows.Close()

	return collectReleases(rows)
}

func (r *Repository) CountReleases(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM releases`).Scan(&count); err != nil {
		return 0, r.handlePostgresError("count releases", err)
	}
	return count, nil
}

func (r *Repository) ListReleasesPaged(ctx context.Context, offset, limit int) ([]*simplerelease.Release, error) {
	query := `SELECT` + releaseColumns + `
		FROM releases
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, r.handlePostgresError("list releases paged", err)
	}
	defer rows.Close()

	return collectReleases(rows)
}

// buildSearchWhere folds each present filter predicate into a conjunctive
// WHERE clause: ILIKE substring matches for string fields, inclusive
// bounds for the created-at range. Absent predicates add nothing.
func buildSearchWhere(scope simplerelease.SearchScope, filter simplerelease.SearchFilter) ([]string, []interface{}) {
	var where []string
	var args []interface{}

	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	addSubstring := func(column, value string) {
		if value != "" {
			add(column+` ILIKE '%%' || $%d || '%%'`, value)
		}
	}

	if !scope.AdminAll {
		add(`owner_id = $%d`, scope.OwnerID)
	}

	addSubstring("release_name", filter.ReleaseName)
	addSubstring("primary_artist", filter.PrimaryArtist)
	addSubstring("featuring_artist", filter.FeaturingArtist)
	addSubstring("genre", filter.Genre)
	addSubstring("subgenre", filter.Subgenre)
	addSubstring("type_of_release", filter.TypeOfRelease)
	addSubstring("contributors", filter.Contributors)

	if filter.CreatedAfter != nil {
		add(`created_at >= $%d`, *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		add(`created_at <= $%d`, *filter.CreatedBefore)
	}

	return where, args
}

func scanRelease(row pgx.Row) (*simplerelease.Release, error) {
	var release simplerelease.Release
	err := row.Scan(
		&release.ID, &release.OwnerID, &release.ReleaseName,
		&release.ReleaseVersion, &release.PrimaryArtist,
		&release.FeaturingArtist, &release.Roles, &release.Contributors,
		&release.Genre, &release.Subgenre, &release.TypeOfRelease,
		&release.CoverArtKey, &release.AudioKey, &release.Status,
		&release.RejectReason, &release.CreatedAt, &release.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &release, nil
}

func collectReleases(rows pgx.Rows) ([]*simplerelease.Release, error) {
	var releases []*simplerelease.Release
	for rows.Next() {
		release, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		releases = append(releases, release)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return releases, nil
}
