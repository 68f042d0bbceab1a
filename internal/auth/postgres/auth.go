package postgres

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/auth"
)

type userRow struct {
	ID           int64  `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	IsActive     bool   `db:"is_active"`
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) auth.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetUserByEmail(email string) (*auth.User, error) {
	var row userRow
	query := `SELECT id, email, password_hash, is_active FROM users WHERE email = $1`
	if err := r.db.Get(&row, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, internal.ErrRecordNotFound
		}
		return nil, err
	}
	return row.toUser(), nil
}

func (r *UserRepository) GetUserByID(userID int64) (*auth.User, error) {
	var row userRow
	query := `SELECT id, email, password_hash, is_active FROM users WHERE id = $1`
	if err := r.db.Get(&row, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, internal.ErrRecordNotFound
		}
		return nil, err
	}
	return row.toUser(), nil
}

func (row *userRow) toUser() *auth.User {
	return &auth.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
	}
}
