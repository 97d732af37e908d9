package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/myattire/backend/usersvc"
	libgorm "gorm.io/gorm"
)

// Bound on any single database round trip.
const repositoryTimeout = 5 * time.Second

type userRepository struct {
	db *libgorm.DB
}

func NewUserRepository(db *libgorm.DB) usersvc.UserRepository {
	return &userRepository{db}
}

func (r *userRepository) Insert(ctx context.Context, u *usersvc.User) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (usersvc.User, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	var user usersvc.User
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if errors.Is(result.Error, libgorm.ErrRecordNotFound) {
		return usersvc.User{}, usersvc.ErrUserNotFound
	}

	return user, result.Error
}

// FindAll omits senha_hash from the projection so the hash never leaves
// the store.
func (r *userRepository) FindAll(ctx context.Context) ([]usersvc.User, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	var users []usersvc.User
	result := r.db.WithContext(ctx).
		Select("id", "nome", "email", "perfil", "setor", "ativo", "data_criacao").
		Find(&users)

	return users, result.Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, email, senhaHash string) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	result := r.db.WithContext(ctx).
		Model(&usersvc.User{}).
		Where("email = ?", email).
		Update("senha_hash", senhaHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usersvc.ErrUserNotFound
	}

	return nil
}
