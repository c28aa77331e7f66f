package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sigapp/backend/internal/service"
)

type Controllers interface {
	Presence() PresenceController
	Device() DeviceController

	Route(e *echo.Echo)
}

type controllers struct {
	presenceController PresenceController
	deviceController   DeviceController
	authMiddleware     echo.MiddlewareFunc
}

func NewControllers(services service.Services) Controllers {
	return &controllers{
		presenceController: newPresenceController(services.Presence()),
		deviceController:   newDeviceController(services.User()),
		authMiddleware:     AuthMiddleware(services.Auth()),
	}
}

func (c controllers) Presence() PresenceController {
	return c.presenceController
}

func (c controllers) Device() DeviceController {
	return c.deviceController
}

func (c controllers) Route(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"service": "sig-backend"})
	})

	v1 := e.Group("/v1", c.authMiddleware)
	v1.PUT("/presence/availability", c.presenceController.SetAvailability)
	v1.POST("/locations", c.presenceController.ReportLocation)
	v1.GET("/friends/presence", c.presenceController.FriendsPresence)
	v1.GET("/friends/:id/presence", c.presenceController.FriendPresence)
	v1.GET("/presence/stream", c.presenceController.StreamPresence)
	v1.POST("/devices/push-token", c.deviceController.RegisterPushToken)
	v1.POST("/devices/permissions", c.deviceController.ReportPermissions)
}
