package repository

import (
	"errors"
	"fmt"

	"github.com/sigapp/backend/internal/dto"
	"github.com/sigapp/backend/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(id string) (model.User, error)
	Create(user model.User) (model.User, error)
	Save(user model.User) (model.User, error)
	Friends(id string) ([]model.User, error)
	AreFriends(id, otherID string) (bool, error)
	UpdatePushToken(id string, token *string) error
	UpdatePermissions(id string, foreground, background, notifications bool) error
}

type user struct {
	db *gorm.DB
}

func newUserRepository(db *gorm.DB) UserRepository {
	return &user{
		db: db,
	}
}

func (u *user) GetByID(id string) (model.User, error) {
	var found model.User
	result := u.db.First(&found, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return model.User{}, fmt.Errorf("%w: user %s", dto.ErrNotFound, id)
		}
		return model.User{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}
	return found, nil
}

func (u *user) Create(user model.User) (model.User, error) {
	result := u.db.Create(&user)
	if result.Error != nil {
		return model.User{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}
	return user, nil
}

func (u *user) Save(user model.User) (model.User, error) {
	result := u.db.Save(&user)
	if result.Error != nil {
		return model.User{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}
	return user, nil
}

func (u *user) Friends(id string) ([]model.User, error) {
	var friends []model.User
	err := u.db.Model(&model.User{ID: id}).Association("Friends").Find(&friends)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
	}
	return friends, nil
}

func (u *user) AreFriends(id, otherID string) (bool, error) {
	count := u.db.Model(&model.User{ID: id}).Where("id = ?", otherID).Association("Friends").Count()
	return count > 0, nil
}

func (u *user) UpdatePushToken(id string, token *string) error {
	result := u.db.Model(&model.User{ID: id}).Update("push_token", token)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}
	return nil
}

func (u *user) UpdatePermissions(id string, foreground, background, notifications bool) error {
	result := u.db.Model(&model.User{ID: id}).Updates(map[string]interface{}{
		"foreground_location_granted": foreground,
		"background_location_granted": background,
		"notifications_granted":       notifications,
	})
	if result.Error != nil {
		return fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}
	return nil
}
