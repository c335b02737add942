package main

import (
	"context"
	"fmt"
	"os"

	"parking-service/internal/auth"
	"parking-service/internal/client"
	"parking-service/internal/config"
	"parking-service/internal/db"
	httphandler "parking-service/internal/http"
	"parking-service/internal/http/middleware"
	"parking-service/internal/invoice"
	"parking-service/internal/logger"
	"parking-service/internal/model"
	"parking-service/internal/repository"
	"parking-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	slotRepo := repository.NewSlotRepository(database)
	sessionRepo := repository.NewSessionRepository(database)

	slotCounts := map[model.SlotClass]int{
		model.SlotSmall:  cfg.Slots.Small,
		model.SlotMedium: cfg.Slots.Medium,
		model.SlotLarge:  cfg.Slots.Large,
		model.SlotXL:     cfg.Slots.XL,
	}
	if err := slotRepo.EnsureDefaults(context.Background(), slotCounts); err != nil {
		appLogger.Fatal().Err(err).Msg("failed to seed slot pool")
	}

	invoiceStore, err := invoice.NewFileStore(cfg.Billing.InvoiceDir)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to prepare invoice store")
	}

	billingEngine := service.NewBillingEngine(cfg.Billing)
	gateService := service.NewGateService(slotRepo, sessionRepo, billingEngine, invoiceStore, appLogger)

	lprClient := client.NewLPRClient(cfg)
	debouncer := service.NewDebouncer(cfg.Gate.DebounceWindow)
	frameService := service.NewFrameService(lprClient, gateService, debouncer, appLogger)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(gateService, frameService, slotRepo, sessionRepo, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	internalMiddleware := middleware.InternalToken(cfg.Gate.InternalToken)
	router := httphandler.NewRouter(handler, authMiddleware, internalMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting parking service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
