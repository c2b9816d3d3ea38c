package app

import (
	"context"
	"fmt"
	"net"

	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/database"
	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/feed"
	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/repository"
	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/server"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Config gathers the settings of every component started by Run.
type Config struct {
	Database database.Config
	Server   *server.Config
	Feed     feed.Config
}

func GetConfig() Config {
	return Config{
		Database: database.GetConfig(),
		Server:   server.GetConfig(),
		Feed:     feed.GetConfig(),
	}
}

// OpenStorage connects to the database and makes sure the schema exists.
func OpenStorage(config database.Config) (*gorm.DB, error) {
	db, err := database.Open(config)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}

// Run opens storage, binds :PORT and serves the API and the feed listener
// until ctx is done. The storage handle is closed on the way out.
func Run(ctx context.Context, config Config) error {
	db, err := OpenStorage(config.Database)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", ":"+config.Server.Port)
	if err != nil {
		closeStorage(db)
		return fmt.Errorf("failed to bind listener: %w", err)
	}
	return serve(ctx, config, db, ln)
}

// RunWithListener is Run on an already bound listener.
func RunWithListener(ctx context.Context, config Config, ln net.Listener) error {
	db, err := OpenStorage(config.Database)
	if err != nil {
		_ = ln.Close()
		return err
	}
	return serve(ctx, config, db, ln)
}

func closeStorage(db *gorm.DB) {
	if err := database.Close(db); err != nil {
		logrus.WithError(err).Error("failed to close database")
		return
	}
	logrus.Info("[database] connection closed")
}

func serve(ctx context.Context, config Config, db *gorm.DB, ln net.Listener) error {
	defer closeStorage(db)

	router := server.NewRouter(server.Dependencies{
		Pairs:       repository.NewPairRepository(db),
		Positions:   repository.NewPositionRepository(db),
		StrictClose: config.Server.StrictClose,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	feedDone := make(chan struct{})
	if config.Feed.Enabled {
		go func() {
			defer close(feedDone)
			if err := feed.NewListener(config.Feed).Run(ctx, feed.LogUpdate); err != nil {
				logrus.WithError(err).Error("feed listener failed to start")
			}
		}()
	} else {
		logrus.Info("feed listener disabled")
		close(feedDone)
	}

	err := server.Serve(ctx, ln, config.Server.ShutdownTimeout, router)
	cancel()
	<-feedDone
	return err
}
