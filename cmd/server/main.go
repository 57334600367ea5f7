// Command server boots the trading-session engine: load config, start the
// session registry, and serve the websocket/HTTP surface until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foundrysim/tradefloor/internal/api"
	"github.com/foundrysim/tradefloor/internal/config"
	"github.com/foundrysim/tradefloor/internal/session"
	"github.com/foundrysim/tradefloor/internal/util"
)

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func main() {
	cfg := config.LoadFromEnv("")

	logger, err := util.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("config_loaded", "port", cfg.Port, "cors_origin", cfg.CORSOrigin)

	registry := session.NewRegistry(cfg.AdminPassword, nowMillis, logger)
	server := api.NewServer(registry, cfg.CORSOrigin, nowMillis, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	go func() {
		sugar.Infow("api_server_starting", "addr", addr)
		if err := server.Start(addr); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("shutting down")
}
