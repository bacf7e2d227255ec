package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"anonymchat/internal/reconcile"
	"anonymchat/pkg/api"
	"anonymchat/pkg/banner"
	"anonymchat/pkg/config"
	"anonymchat/pkg/httpx"
	"anonymchat/pkg/logger"
	"anonymchat/pkg/security"
	"anonymchat/pkg/session"
	"anonymchat/pkg/store"
	"anonymchat/pkg/telemetry"
	"anonymchat/pkg/uploads"
)

// build metadata - set via ldflags during release
var version = "dev"

func main() {
	_ = godotenv.Load(".env")
	addrVal, dataVal, cfgVal, setFlags := config.ParseCommandFlags()

	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])
	cfg, _, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Flags win over config/env when the user set them explicitly.
	addr := cfg.Addr()
	if setFlags["addr"] {
		addr = addrVal
	}
	dataDir := cfg.Storage.DataDir
	if setFlags["data"] || dataDir == "" {
		dataDir = dataVal
	}
	cfg.Storage.DataDir = dataDir
	if cfg.Storage.UploadsDir == "" {
		cfg.Storage.UploadsDir = dataDir + "/uploads"
	}

	logger.InitWithLevel(cfg.Logging.Level)
	if cfg.Logging.AuditDir != "" {
		if err := logger.AttachAuditFileSink(cfg.Logging.AuditDir); err != nil {
			log.Fatalf("failed to attach audit sink: %v", err)
		}
	}

	if err := store.Open(dataDir); err != nil {
		log.Fatalf("failed to open data dir %s: %v", dataDir, err)
	}
	if err := uploads.Init(cfg.Storage.UploadsDir); err != nil {
		log.Fatalf("failed to init uploads dir %s: %v", cfg.Storage.UploadsDir, err)
	}
	session.Configure(cfg.Session.NicknameMaxAge, cfg.Session.AdminMaxAge,
		cfg.Server.TLS.CertFile != "" && cfg.Server.TLS.KeyFile != "")

	if cfg.Admin.Username == "" || cfg.Admin.Password == "" {
		logger.Warn("admin_credentials_unset")
	}

	ctx, stop := context.WithCancel(context.Background())
	cancelReconcile, err := reconcile.Start(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to start reconcile scheduler: %v", err)
	}

	banner.Print(cfg, addr, version)

	mux := http.NewServeMux()
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploads.Dir()))))
	mux.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	mux.Handle("/openapi.yaml", http.FileServer(http.Dir("./docs")))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", api.NewRouter(cfg))

	secCfg := security.SecConfig{
		AllowedOrigins: cfg.Security.CORS.AllowedOrigins,
		RPS:            cfg.Security.RateLimit.RPS,
		Burst:          cfg.Security.RateLimit.Burst,
	}
	wrapped := security.RequestGate(secCfg)(telemetry.Middleware(mux))

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigc
		logger.Info("signal_received", "signal", s.String())
		cancelReconcile()
		stop()
		_ = store.Close()
		os.Exit(0)
	}()

	err = httpx.Serve(cfg.Server.Engine, addr, cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile, wrapped)
	if err != nil {
		log.Fatal(err)
	}
}
