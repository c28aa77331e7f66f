package service

import (
	"context"

	"github.com/sigapp/backend/internal/repository"
	"github.com/sirupsen/logrus"
)

type ExecutionContext string

const (
	ContextForeground ExecutionContext = "foreground"
	ContextBackground ExecutionContext = "background"
)

// PermissionSource reports device permission grants. Grants are queried,
// never forced; a read failure counts as denied.
type PermissionSource interface {
	LocationGranted(ctx context.Context, userID string, execContext ExecutionContext) bool
	NotificationsGranted(ctx context.Context, userID string) bool
}

type permissionSource struct {
	userRepository repository.UserRepository
}

func NewPermissionSource(userRepository repository.UserRepository) PermissionSource {
	return &permissionSource{userRepository: userRepository}
}

func (p *permissionSource) LocationGranted(ctx context.Context, userID string, execContext ExecutionContext) bool {
	user, err := p.userRepository.GetByID(userID)
	if err != nil {
		logrus.Errorf("Failed to read permission grants for user %s: %v", userID, err)
		return false
	}

	if execContext == ContextBackground {
		return user.BackgroundLocationGranted
	}
	return user.ForegroundLocationGranted
}

func (p *permissionSource) NotificationsGranted(ctx context.Context, userID string) bool {
	user, err := p.userRepository.GetByID(userID)
	if err != nil {
		logrus.Errorf("Failed to read permission grants for user %s: %v", userID, err)
		return false
	}
	return user.NotificationsGranted
}
