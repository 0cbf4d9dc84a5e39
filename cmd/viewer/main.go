package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"StockWatch/internal/config"
	"StockWatch/internal/sheet"
	"StockWatch/internal/viewer"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockWatch viewer starting...")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("[FATAL] load timezone %q: %v", cfg.Timezone, err)
	}

	paths := sheet.Paths{Dir: cfg.Storage.Dir, Prefix: cfg.Storage.Prefix, Alias: cfg.Storage.Alias}
	srv := viewer.NewServer(paths.AliasPath(), loc, cfg.Viewer.MarketOpenHour, cfg.Viewer.MarketName)

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{Addr: cfg.Viewer.Addr, Handler: srv.Router()}
	go func() {
		log.Printf("[INFO] serving %s on http://%s", paths.AliasPath(), cfg.Viewer.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[ERROR] http shutdown: %v", err)
	}
	log.Println("[INFO] StockWatch viewer stopped")
}
