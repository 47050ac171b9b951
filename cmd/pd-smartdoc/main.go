package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pd-smartdoc/internal/config"
	httpapi "pd-smartdoc/internal/http"
	"pd-smartdoc/internal/repository"
	"pd-smartdoc/internal/service"
	"pd-smartdoc/internal/wizard"
	"pd-smartdoc/pkg/logger"

	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "pd-smartdoc")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	normStore := repository.NewNormStore(cfg.Data.Dir, log)
	procStore := repository.NewProcedureStore(cfg.Data.Dir, log)
	analysisStore := repository.NewAnalysisStore(cfg.Data.Dir, log)

	norms := service.NewNormService(normStore, log)
	procedures := service.NewProcedureService(procStore, log)
	analyses := service.NewAnalysisService(analysisStore, normStore, procStore, log)
	saiClient := service.NewSAIClient(cfg.SAI, log)
	if !saiClient.Configured() {
		log.Warn("SAI_API_KEY not set, AI generation endpoints will answer with an error")
	}
	manager := wizard.NewManager(saiClient, norms, procedures, analyses, log)

	router := httpapi.NewRouter(log)
	router.RegisterDocumentRoutes(
		httpapi.NewNormHandler(norms, log),
		httpapi.NewProcedureHandler(procedures, log),
		httpapi.NewAnalysisHandler(analyses, log),
	)
	router.RegisterExportRoutes(httpapi.NewExportHandler(analyses, log))
	router.RegisterAIToolsRoutes(httpapi.NewAIToolsHandler(saiClient, cfg.SAI, log))
	router.RegisterWizardRoutes(httpapi.NewWizardHandler(manager, log))
	router.RegisterSystemRoutes(
		httpapi.NewAuthHandler(cfg.Auth, log),
		httpapi.NewSystemHandler(version),
	)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}
