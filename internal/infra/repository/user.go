package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coloby/coloby/internal/domain"
	"github.com/coloby/coloby/internal/infra/database/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate provisions the identity collaborator's row on first sight.
func (r *UserRepository) GetOrCreate(ctx context.Context, user domain.User) (domain.User, error) {
	row := models.User{
		Username: user.Username,
		Email:    user.Email,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return domain.User{}, err
	}
	if row.ID == 0 {
		err = r.db.WithContext(ctx).
			Where("username = ?", user.Username).
			Take(&row).Error
		if err != nil {
			return domain.User{}, err
		}
	}
	return userToDomain(row), nil
}

func (r *UserRepository) Get(ctx context.Context, userID uint) (domain.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, err
	}
	return userToDomain(row), nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, err
	}
	return userToDomain(row), nil
}

func userToDomain(m models.User) domain.User {
	return domain.User{
		ID:       m.ID,
		Username: m.Username,
		Email:    m.Email,
	}
}
