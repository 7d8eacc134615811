package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/lenscan/internal/application"
	appoverlay "github.com/bryanwahyu/lenscan/internal/application/overlay"
	"github.com/bryanwahyu/lenscan/internal/application/scanner"
	appshell "github.com/bryanwahyu/lenscan/internal/application/shell"
	"github.com/bryanwahyu/lenscan/internal/config"
	"github.com/bryanwahyu/lenscan/internal/domain/scan"
	aiclient "github.com/bryanwahyu/lenscan/internal/infra/ai/openai"
	"github.com/bryanwahyu/lenscan/internal/infra/capture"
	"github.com/bryanwahyu/lenscan/internal/infra/decode"
	"github.com/bryanwahyu/lenscan/internal/infra/httpserver"
	"github.com/bryanwahyu/lenscan/internal/infra/render"
	"github.com/bryanwahyu/lenscan/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if err := middleware.ValidateStreamURL(cfg.Capture.StreamURL); err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	// capture source + decode adapter
	source := capture.NewMJPEGSource(cfg.Capture.StreamURL, cfg.Capture.TorchURL)
	engine := decode.NewCommandEngine(cfg.Decode.Engine, cfg.Decode.Args...)
	adapter := &decode.Adapter{Engine: engine, Interval: cfg.FrameInterval()}

	// overlay canvas
	canvas := render.NewMemCanvas()
	renderer := appoverlay.NewRenderer(canvas)

	// result cache + enrichment
	history := scanner.NewHistory(cfg.Scanner.HistoryLimit)
	analyzer := aiclient.NewClient(cfg.AI.APIKey, cfg.AI.Model)
	coord := scanner.NewCoordinator(history, analyzer)

	// scan controller + presentation shell
	ctrl := &scanner.Controller{
		Decoder:     adapter,
		Source:      source,
		Overlay:     renderer,
		Clock:       application.SystemClock{},
		Debounce:    cfg.Debounce(),
		InitialMode: scan.Mode(cfg.Scanner.Mode),
	}
	sh := appshell.New(ctrl, coord, history)
	ctrl.OnResult = func(r *scan.Result) {
		middleware.IncrementScansSurfaced()
		sh.OpenDrawer(r)
	}

	// capture errors are fatal to the scan view: no automatic retry
	if err := ctrl.Start(ctx); err != nil {
		log.Fatalf("scan start error: %v", err)
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.Origins,
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(100, 10))
	mux.Use(middleware.APIKeyAuth(cfg.Server.APIKey))

	mux.Get("/healthz", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"stream": &middleware.StreamHealthChecker{URL: cfg.Capture.StreamURL},
	}))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Mount("/", httpserver.NewRouter(ctrl, sh, history, canvas))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Infof("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Infof("shutting down...")

	ctrl.Stop()

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}
