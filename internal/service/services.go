package service

import (
	authV4 "firebase.google.com/go/v4/auth"
	"github.com/sigapp/backend/internal/client"
	"github.com/sigapp/backend/internal/repository"
)

type Services interface {
	User() UserService
	Auth() AuthService
	Presence() PresenceService
}

type services struct {
	userService     UserService
	authService     AuthService
	presenceService PresenceService
}

func NewServices(repositories repository.Repositories, clients client.Clients) Services {
	cache := NewGeocodeCache()
	resolver := NewPlaceResolver(clients.PlacesClient(), cache)
	writer := NewPresenceWriter(repositories.Presence(), resolver, clients.BroadcastClient())
	permissions := NewPermissionSource(repositories.User())
	fanout := NewNotificationFanout(repositories.User(), clients.PushClient(), permissions)

	presenceService := NewPresenceService(
		repositories.User(),
		repositories.Presence(),
		writer,
		fanout,
		permissions,
		clients.BroadcastClient(),
	)

	return &services{
		userService:     newUserService(repositories.User()),
		authService:     newAuthService(repositories.User(), clients.AuthClient(), authV4.IsIDTokenExpired),
		presenceService: presenceService,
	}
}

func (s services) User() UserService {
	return s.userService
}

func (s services) Auth() AuthService {
	return s.authService
}

func (s services) Presence() PresenceService {
	return s.presenceService
}
