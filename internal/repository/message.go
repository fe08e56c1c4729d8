package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/google/uuid"
)

// PostgresMessageRepository stores seller contact messages.
type PostgresMessageRepository struct {
	DB *sql.DB
}

// NewPostgresMessageRepository creates a PostgresMessageRepository.
func NewPostgresMessageRepository(db *sql.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{DB: db}
}

// Insert stores m, assigning its ID and sent time.
func (r *PostgresMessageRepository) Insert(ctx context.Context, m *models.Message) error {
	m.ID = uuid.NewString()
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO messages (id, listing_id, sender_user_id, sender_email, sender_name, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING sent_at
	`, m.ID, m.ListingID, m.Sender.UserID, m.Sender.Email, m.Sender.DisplayName, m.Text).Scan(&m.SentAt)
	if err != nil {
		return fmt.Errorf("InsertMessage: %w", err)
	}
	return nil
}
