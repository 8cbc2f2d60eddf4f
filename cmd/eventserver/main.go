package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"promo-eventserver/internal/httpapi"
	"promo-eventserver/pkg/config"
	"promo-eventserver/pkg/db"
	"promo-eventserver/pkg/gen"
	"promo-eventserver/pkg/health"
	"promo-eventserver/pkg/logger"
	"promo-eventserver/pkg/server"
	"promo-eventserver/services/event"
	"promo-eventserver/services/inventory"
	"promo-eventserver/services/item"
	"promo-eventserver/services/point"
	"promo-eventserver/services/reward"
	"promo-eventserver/services/rewardlog"
	"promo-eventserver/services/userdata"
	"promo-eventserver/services/userevent"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		gen.Module,
		item.Module,
		event.Module,
		userdata.Module,
		point.Module,
		inventory.Module,
		reward.Module,
		rewardlog.Module,
		userevent.Module,
		health.Module,
		httpapi.Module,
		server.Module,
		fx.Invoke(migrate),
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&event.Event{},
		&userdata.UserDataSet{},
		&point.Account{},
		&point.History{},
		&inventory.InventoryItem{},
		&rewardlog.RewardLog{},
		&userevent.UserEvent{},
		&userevent.UserEventReward{},
	)
}
