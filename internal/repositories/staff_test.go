package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventflow/internal/models"
)

func TestStaffRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewStaffRepository(db.DB)

	staff := &models.Staff{
		ID:           "S1",
		Username:     "door-team",
		PasswordHash: "argon2id-hash",
	}
	require.NoError(t, repo.Create(staff))
	assert.False(t, staff.CreatedAt.IsZero(), "created_at is stamped on insert")

	byName, err := repo.GetByUsername("door-team")
	require.NoError(t, err)
	assert.Equal(t, "S1", byName.ID)
	assert.Equal(t, "argon2id-hash", byName.PasswordHash)

	byID, err := repo.GetByID("S1")
	require.NoError(t, err)
	assert.Equal(t, "door-team", byID.Username)
}

func TestStaffRepository_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewStaffRepository(db.DB)

	_, err := repo.GetByUsername("nobody")
	assert.ErrorIs(t, err, models.ErrStaffNotFound)

	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, models.ErrStaffNotFound)
}

func TestStaffRepository_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewStaffRepository(db.DB)

	require.NoError(t, repo.Create(&models.Staff{ID: "S1", Username: "door-team", PasswordHash: "h1"}))

	err := repo.Create(&models.Staff{ID: "S2", Username: "door-team", PasswordHash: "h2"})
	assert.ErrorIs(t, err, models.ErrDuplicateEntry)
}

func TestStaffRepository_CreateValidation(t *testing.T) {
	db := newTestDB(t)
	repo := NewStaffRepository(db.DB)

	err := repo.Create(&models.Staff{ID: "S1", Username: "  ", PasswordHash: "h"})
	assert.Error(t, err)
}
