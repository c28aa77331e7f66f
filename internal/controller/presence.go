package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sigapp/backend/internal/client"
	"github.com/sigapp/backend/internal/dto"
	"github.com/sigapp/backend/internal/service"
	"github.com/sirupsen/logrus"
)

type PresenceController interface {
	SetAvailability(c echo.Context) error
	ReportLocation(c echo.Context) error
	FriendsPresence(c echo.Context) error
	FriendPresence(c echo.Context) error
	StreamPresence(c echo.Context) error
}

type presenceController struct {
	presenceService service.PresenceService
}

func newPresenceController(presenceService service.PresenceService) PresenceController {
	return &presenceController{
		presenceService: presenceService,
	}
}

type setAvailabilityRequest struct {
	Available bool `json:"available"`
	// FriendIDs selects who gets the turn-on notification: absent means all
	// friends, an empty list means nobody.
	FriendIDs []string `json:"friendIds"`
}

func (p *presenceController) SetAvailability(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}

	var request setAvailabilityRequest
	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	err := p.presenceService.SetAvailability(c.Request().Context(), user.ID, request.Available, request.FriendIDs)
	if err != nil {
		logrus.Errorf("Failed to set availability for user %s: %v", user.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to set availability")
	}

	return c.JSON(http.StatusOK, map[string]bool{"available": request.Available})
}

type reportLocationRequest struct {
	Context   string    `json:"context"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	SampledAt time.Time `json:"sampledAt"`
}

func (p *presenceController) ReportLocation(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}

	var request reportLocationRequest
	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	execContext := service.ContextForeground
	if request.Context == string(service.ContextBackground) {
		execContext = service.ContextBackground
	}

	p.presenceService.ReportSample(user.ID, execContext, client.LocationSample{
		Coordinates: client.Coordinates{
			Latitude:  request.Latitude,
			Longitude: request.Longitude,
		},
		SampledAt: request.SampledAt,
	})

	return c.NoContent(http.StatusAccepted)
}

func (p *presenceController) FriendsPresence(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}

	presences, err := p.presenceService.FriendsPresence(c.Request().Context(), user.ID)
	if err != nil {
		logrus.Errorf("Failed to list friend presence for user %s: %v", user.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list friends")
	}

	return c.JSON(http.StatusOK, presences)
}

func (p *presenceController) FriendPresence(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}

	presence, err := p.presenceService.FriendPresenceByID(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, dto.ErrNotAuthorized):
			return echo.NewHTTPError(http.StatusForbidden, "not a friend")
		case errors.Is(err, dto.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "friend not found")
		}
		logrus.Errorf("Failed to read friend presence for user %s: %v", user.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read friend presence")
	}

	return c.JSON(http.StatusOK, presence)
}

// StreamPresence delivers presence updates over server-sent events until the
// client disconnects.
func (p *presenceController) StreamPresence(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}

	subscriberID := fmt.Sprintf("%s_%d", user.ID, time.Now().UTC().UnixNano())
	updates, err := p.presenceService.SubscribeUpdates(subscriberID)
	if err != nil {
		logrus.Errorf("Failed to subscribe user %s to presence updates: %v", user.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to subscribe")
	}
	defer p.presenceService.UnsubscribeUpdates(subscriberID)

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "text/event-stream")
	response.Header().Set("Cache-Control", "no-cache")
	response.Header().Set("Connection", "keep-alive")
	response.WriteHeader(http.StatusOK)
	response.Flush()

	for {
		select {
		case update, open := <-updates:
			if !open {
				return nil
			}
			if _, err := fmt.Fprintf(response, "data: %s\n\n", update); err != nil {
				return nil
			}
			response.Flush()
		case <-c.Request().Context().Done():
			return nil
		}
	}
}
