package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"eventflow/internal/models"
)

// StaffRepository handles staff account data operations
type StaffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *sql.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// GetByUsername retrieves a staff account by username
func (r *StaffRepository) GetByUsername(username string) (*models.Staff, error) {
	query := `SELECT id, username, password_hash, created_at FROM staff WHERE username = $1`

	staff := &models.Staff{}
	err := r.db.QueryRow(query, username).Scan(
		&staff.ID,
		&staff.Username,
		&staff.PasswordHash,
		&staff.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to get staff account: %w", err)
	}

	return staff, nil
}

// GetByID retrieves a staff account by id
func (r *StaffRepository) GetByID(id string) (*models.Staff, error) {
	query := `SELECT id, username, password_hash, created_at FROM staff WHERE id = $1`

	staff := &models.Staff{}
	err := r.db.QueryRow(query, id).Scan(
		&staff.ID,
		&staff.Username,
		&staff.PasswordHash,
		&staff.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to get staff account: %w", err)
	}

	return staff, nil
}

// Create inserts a new staff account
func (r *StaffRepository) Create(staff *models.Staff) error {
	if err := staff.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = time.Now()
	}

	query := `INSERT INTO staff (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(query, staff.ID, staff.Username, staff.PasswordHash, staff.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate key") {
			return models.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create staff account: %w", err)
	}

	return nil
}
