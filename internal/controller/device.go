package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sigapp/backend/internal/service"
	"github.com/sirupsen/logrus"
)

type DeviceController interface {
	RegisterPushToken(c echo.Context) error
	ReportPermissions(c echo.Context) error
}

type deviceController struct {
	userService service.UserService
}

func newDeviceController(userService service.UserService) DeviceController {
	return &deviceController{
		userService: userService,
	}
}

type registerPushTokenRequest struct {
	Token *string `json:"token"`
}

func (d *deviceController) RegisterPushToken(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}

	var request registerPushTokenRequest
	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := d.userService.RegisterPushToken(user.ID, request.Token); err != nil {
		logrus.Errorf("Failed to register push token for user %s: %v", user.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to register token")
	}

	return c.NoContent(http.StatusNoContent)
}

type reportPermissionsRequest struct {
	ForegroundLocation bool `json:"foregroundLocation"`
	BackgroundLocation bool `json:"backgroundLocation"`
	Notifications      bool `json:"notifications"`
}

func (d *deviceController) ReportPermissions(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}

	var request reportPermissionsRequest
	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	err := d.userService.ReportPermissions(user.ID, request.ForegroundLocation, request.BackgroundLocation, request.Notifications)
	if err != nil {
		logrus.Errorf("Failed to store permission grants for user %s: %v", user.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store permissions")
	}

	return c.NoContent(http.StatusNoContent)
}
