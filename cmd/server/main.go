package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbeisheim/webchess-backend/internal/config"
	"github.com/benbeisheim/webchess-backend/internal/controller"
	"github.com/benbeisheim/webchess-backend/internal/service"
	"github.com/benbeisheim/webchess-backend/internal/store"
	"github.com/gofiber/fiber/v2/log"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(cfg.Level())

	// Sessions live in badger when a data directory is configured.
	var st store.Store
	if cfg.DataDir != "" {
		st, err = store.NewBadgerStore(cfg.DataDir, cfg.SessionTTL)
		if err != nil {
			log.Fatal(err)
		}
		log.Infof("storing sessions in %s", cfg.DataDir)
	} else {
		st = store.NewMemoryStore(cfg.SessionTTL)
		log.Info("storing sessions in memory")
	}
	defer st.Close()

	// Initialize services
	gameManager := service.NewGameManager(st, 30*time.Minute)
	defer gameManager.Close()
	gameService := service.NewGameService(gameManager)

	app := controller.NewApp(cfg, gameService)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infof("listening on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Errorf("server stopped: %v", err)
	}
}
