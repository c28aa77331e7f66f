package main

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sigapp/backend/internal/client"
	"github.com/sigapp/backend/internal/controller"
	"github.com/sigapp/backend/internal/dto"
	"github.com/sigapp/backend/internal/repository"
	"github.com/sigapp/backend/internal/service"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := dto.LoadConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logrus.Fatal(err)
	}

	clients := client.NewClients(cfg)
	defer clients.BroadcastClient().Close()

	repositories := repository.NewRepositories(db, clients.FirestoreClient())
	services := service.NewServices(repositories, clients)
	controllers := controller.NewControllers(services)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	controllers.Route(e)

	logrus.Infof("sig backend listening on %s", cfg.ListenAddress)
	if err := e.Start(cfg.ListenAddress); err != nil {
		logrus.Fatal(err)
	}
}
