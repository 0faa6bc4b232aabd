package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/pkg/apperror"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert регистрирует пользователя при первом обращении и обновляет
// имя/username при последующих. Роль при этом не трогается.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, role, username, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name
		RETURNING role, created_at
	`, user.ID, models.RoleUser, user.Username, user.FirstName, user.LastName).
		Scan(&user.Role, &user.CreatedAt)
}

// SetRole назначает или снимает роль админа. Пользователь создаётся,
// если его ещё нет (так делает и исходный set_admin).
func (r *UserRepository) SetRole(ctx context.Context, id int64, role string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, role) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET role = EXCLUDED.role
	`, id, role)
	return err
}

// EnsureAdmins гарантирует, что перечисленные ID существуют и имеют роль админа.
func (r *UserRepository) EnsureAdmins(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if err := r.SetRole(ctx, id, models.RoleAdmin); err != nil {
			return err
		}
	}
	return nil
}

func (r *UserRepository) ListAdminIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM users WHERE role = $1 ORDER BY id`, models.RoleAdmin)
	return ids, err
}

func (r *UserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY role, id`)
	return users, err
}
