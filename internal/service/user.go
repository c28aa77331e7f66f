package service

import (
	"github.com/sigapp/backend/internal/repository"
)

// UserService carries the device-reported state the presence pipeline reads:
// push delivery tokens and permission grants.
type UserService interface {
	RegisterPushToken(userID string, token *string) error
	ReportPermissions(userID string, foreground, background, notifications bool) error
}

type userService struct {
	userRepository repository.UserRepository
}

func newUserService(userRepository repository.UserRepository) UserService {
	return &userService{userRepository: userRepository}
}

func (s *userService) RegisterPushToken(userID string, token *string) error {
	return s.userRepository.UpdatePushToken(userID, token)
}

func (s *userService) ReportPermissions(userID string, foreground, background, notifications bool) error {
	return s.userRepository.UpdatePermissions(userID, foreground, background, notifications)
}
