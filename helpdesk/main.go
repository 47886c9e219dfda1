package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"helpdesk/helpdesk/bootstrap"
	"helpdesk/helpdesk/config"
	"helpdesk/helpdesk/controllers"
	"helpdesk/helpdesk/routes"
	"helpdesk/helpdesk/utils/logging"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logging.InitLoggerIn(cfg.LogDir)
	defer logging.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	svc, err := bootstrap.Open(ctx, cfg)
	cancel()
	if err != nil {
		logging.ErrorLogger.Error("startup failed", zap.Error(err))
		logging.Sync()
		os.Exit(1)
	}
	defer svc.Close()

	handler := routes.NewRouter(cfg, routes.Controllers{
		Chat:   controllers.NewChatController(svc.Orchestrator),
		Health: controllers.NewHealthController(svc.DB, svc.Cache, svc.Generator.ProviderName(), cfg),
		Admin:  controllers.NewAdminController(svc.DB, svc.Orchestrator),
	}, routes.DefaultRequestTimeout)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.AppLogger.Info("Server listening", zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
