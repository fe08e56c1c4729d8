// Package repository provides persistence implementations for users,
// listings, seller messages and sessions.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/google/uuid"
)

const listingColumns = `id, club_name, brand, club_type, condition, price, description, image_url,
		user_id, user_email, user_name, created_at, updated_at`

// PostgresListingRepository stores listings in a PostgreSQL table.
type PostgresListingRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresListingRepository creates a PostgresListingRepository using the
// provided *sql.DB.
func NewPostgresListingRepository(db *sql.DB) *PostgresListingRepository {
	return &PostgresListingRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (models.Listing, error) {
	var l models.Listing
	err := row.Scan(
		&l.ID, &l.ClubName, &l.Brand, &l.ClubType, &l.Condition, &l.Price, &l.Description, &l.ImageURL,
		&l.Owner.UserID, &l.Owner.Email, &l.Owner.DisplayName, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

// Insert stores a new listing. The ID is generated here and the timestamps
// are assigned by the database clock.
func (r *PostgresListingRepository) Insert(ctx context.Context, l *models.Listing) error {
	l.ID = uuid.NewString()
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO listings (id, club_name, brand, club_type, condition, price, description, image_url,
			user_id, user_email, user_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, l.ID, l.ClubName, l.Brand, l.ClubType, l.Condition, l.Price, l.Description, l.ImageURL,
		l.Owner.UserID, l.Owner.Email, l.Owner.DisplayName,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("InsertListing: %w", err)
	}
	return nil
}

func (r *PostgresListingRepository) query(ctx context.Context, op, where string, args ...any) ([]models.Listing, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+listingColumns+` FROM listings `+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	listings := make([]models.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return listings, nil
}

// FindAll returns every listing, newest first.
func (r *PostgresListingRepository) FindAll(ctx context.Context) ([]models.Listing, error) {
	return r.query(ctx, "FindAllListings", "")
}

// FindByType returns listings of exactly clubType, newest first.
func (r *PostgresListingRepository) FindByType(ctx context.Context, clubType models.ClubType) ([]models.Listing, error) {
	return r.query(ctx, "FindListingsByType", "WHERE club_type = $1", clubType)
}

// FindByOwner returns the listings created by userID, newest first.
func (r *PostgresListingRepository) FindByOwner(ctx context.Context, userID string) ([]models.Listing, error) {
	return r.query(ctx, "FindListingsByOwner", "WHERE user_id = $1", userID)
}

// FindByID returns a single listing. A missing row is reported as
// models.ErrNotFound.
func (r *PostgresListingRepository) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("FindListingByID: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("FindListingByID: %w", err)
	}
	return &l, nil
}

// Update overwrites the mutable columns of an existing listing and refreshes
// updated_at. Owner columns are never written.
func (r *PostgresListingRepository) Update(ctx context.Context, l *models.Listing) error {
	err := r.DB.QueryRowContext(ctx, `
		UPDATE listings
		   SET club_name = $2, brand = $3, club_type = $4, condition = $5, price = $6,
		       description = $7, image_url = $8, updated_at = clock_timestamp()
		 WHERE id = $1
		RETURNING updated_at
	`, l.ID, l.ClubName, l.Brand, l.ClubType, l.Condition, l.Price, l.Description, l.ImageURL,
	).Scan(&l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("UpdateListing: %w", models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("UpdateListing: %w", err)
	}
	return nil
}

// Delete permanently removes a listing.
func (r *PostgresListingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteListing: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("DeleteListing: %w", models.ErrNotFound)
	}
	return nil
}
