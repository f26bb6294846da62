package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/urfave/cli/v2"

	"medreminder-backend/config"
	"medreminder-backend/internal/api"
	"medreminder-backend/internal/db"
	"medreminder-backend/internal/reminder"
	"medreminder-backend/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	logger := log.New(os.Stdout, "medreminder ", log.LstdFlags)

	app := &cli.App{
		Name:    "medremindd",
		Usage:   "Medication reminder backend",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "./config/config.yaml",
				EnvVars: []string{"CONFIG_PATH"},
				Usage:   "Path to the YAML configuration file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the API server and reminder scheduler",
				Action: func(c *cli.Context) error {
					return serve(c.String("config"), logger)
				},
			},
			{
				Name:  "vapid-keys",
				Usage: "Generate a VAPID key pair for web push",
				Action: func(c *cli.Context) error {
					return generateVAPIDKeys()
				},
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

func generateVAPIDKeys() error {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return fmt.Errorf("failed to generate VAPID keys: %w", err)
	}
	fmt.Printf("vapid_public_key: %s\nvapid_private_key: %s\n", publicKey, privateKey)
	return nil
}

func serve(configPath string, logger *log.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Reminder.Enabled && (cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "") {
		return errors.New("VAPID keys must be configured when reminders are enabled; run `medremindd vapid-keys` and add them to your config file")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	reminderSvc := reminder.NewService(cfg, appStore)
	go reminderSvc.Run(ctx)

	router := api.NewRouter(appStore, cfg, &webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server Shutdown: %w", err)
	}

	logger.Println("Server gracefully stopped")
	return nil
}
