package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"rewardpool/config"
	"rewardpool/core"
	"rewardpool/core/events"
	"rewardpool/observability/logging"
	"rewardpool/rpc"
	"rewardpool/storage"
)

const envVar = "REWARDPOOL_ENV"

// slogEmitter publishes committed ledger events to the structured log.
type slogEmitter struct {
	logger *slog.Logger
}

func (e slogEmitter) Emit(evt *events.Event) {
	if evt == nil {
		return
	}
	attrs := make([]any, 0, len(evt.Attributes)*2)
	for k, v := range evt.Attributes {
		attrs = append(attrs, slog.String(k, v))
	}
	e.logger.With(attrs...).Info(evt.Type)
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv(envVar))

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger := logging.Setup(cfg.ServiceName, env)

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	ledger := core.NewLedger(db)
	ledger.SetEmitter(slogEmitter{logger: logger})

	server := rpc.NewServer(ledger, logger)
	if cfg.RPCTokenEnv != "" {
		server.SetAuthToken(os.Getenv(cfg.RPCTokenEnv))
	}
	server.SetNonceTTL(cfg.NonceTTL())

	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
