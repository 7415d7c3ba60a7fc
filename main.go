package main

import (
	"time"

	"inventory-app/config"
	"inventory-app/controllers/idgen"
	"inventory-app/middleware"
	"inventory-app/migration"
	"inventory-app/repositories"
	"inventory-app/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	config.LoadConfig()

	logrus.SetFormatter(&logrus.JSONFormatter{})

	db, err := config.ConnectDB()
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	if err := migration.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("failed to auto migrate")
	}

	idgen.Init()

	app := fiber.New()
	config.SetupCORS(app)
	app.Use(middleware.RequestLogger)

	routes.SetupRoutes(app, db)

	// Background dispatcher: hand PENDING deliveries to online shippers.
	if config.AutoAssignInterval > 0 {
		deliveryRepo := repositories.NewDeliveryRepository(db)
		go func() {
			ticker := time.NewTicker(time.Duration(config.AutoAssignInterval) * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				assigned, err := deliveryRepo.AutoAssignPending()
				if err != nil {
					logrus.WithError(err).Error("auto-assign sweep failed")
					continue
				}
				if assigned > 0 {
					logrus.WithField("assigned", assigned).Info("auto-assign sweep")
				}
			}
		}()
	}

	port := config.APP_PORT
	logrus.WithField("port", port).Info("server starting")

	if err := app.Listen(":" + port); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
