package service

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/sigapp/backend/internal/client"
	"github.com/sigapp/backend/internal/repository"
	"github.com/sirupsen/logrus"
)

const notificationTitle = "sig"

// NotificationFanout tells a filtered subset of a user's friends that the
// user just became available. Strictly best-effort: it never returns an
// error and never blocks the availability flip that triggered it.
type NotificationFanout interface {
	Notify(ctx context.Context, userID string, available bool, displayName string, selectedFriendIDs []string)
}

type notificationFanout struct {
	userRepository repository.UserRepository
	pushClient     client.PushClient
	permissions    PermissionSource
}

func NewNotificationFanout(userRepository repository.UserRepository, pushClient client.PushClient, permissions PermissionSource) NotificationFanout {
	return &notificationFanout{
		userRepository: userRepository,
		pushClient:     pushClient,
		permissions:    permissions,
	}
}

// Notify targets all friends when selectedFriendIDs is nil, nobody when it is
// an empty (non-nil) slice, and the intersection with the friend list
// otherwise. Friends without a push token, or whose devices report the
// notifications permission denied, are skipped.
func (f *notificationFanout) Notify(ctx context.Context, userID string, available bool, displayName string, selectedFriendIDs []string) {
	if !available {
		return
	}
	if selectedFriendIDs != nil && len(selectedFriendIDs) == 0 {
		return
	}

	friends, err := f.userRepository.Friends(userID)
	if err != nil {
		logrus.Errorf("Fanout for user %s skipped, friend lookup failed: %v", userID, err)
		return
	}

	var selected map[string]bool
	if selectedFriendIDs != nil {
		selected = make(map[string]bool, len(selectedFriendIDs))
		for _, id := range selectedFriendIDs {
			selected[id] = true
		}
	}

	var messages []*messaging.Message
	for _, friend := range friends {
		if selected != nil && !selected[friend.ID] {
			continue
		}
		if friend.PushToken == nil || *friend.PushToken == "" {
			continue
		}
		if !f.permissions.NotificationsGranted(ctx, friend.ID) {
			continue
		}

		messages = append(messages, &messaging.Message{
			Token: *friend.PushToken,
			Notification: &messaging.Notification{
				Title: notificationTitle,
				Body:  fmt.Sprintf("%s is available now", displayName),
			},
			Data: map[string]string{
				"type":        "availability_change",
				"userId":      userID,
				"displayName": displayName,
				"available":   "true",
			},
		})
	}

	if len(messages) == 0 {
		return
	}

	failureCount, err := f.pushClient.SendBatch(ctx, messages)
	if err != nil {
		logrus.Errorf("Fanout push for user %s failed: %v", userID, err)
		return
	}
	if failureCount > 0 {
		logrus.Warnf("Fanout push for user %s: %d of %d deliveries failed", userID, failureCount, len(messages))
	}
	logrus.Infof("Notified %d friends that user %s is available", len(messages)-failureCount, userID)
}
