package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/overseaspath/crm-backend/internal/entity"
)

// UserRepository reads the identity slice this core consumes. User
// lifecycle management belongs to the auth collaborator.
type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (*entity.User, error) {
	var u entity.User
	var role string

	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, email, role FROM users WHERE id = $1`,
		id).Scan(&u.ID, &u.Name, &u.Email, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}

	u.Role = entity.Role(role)
	return &u, nil
}
