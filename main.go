package main

import (
	"chatroomgo/internal/config"
	"chatroomgo/internal/database/db_client"
	"chatroomgo/internal/http/http_server"
	"chatroomgo/internal/journal"
	"chatroomgo/internal/presence"
	"chatroomgo/internal/redis/announcer"
	"chatroomgo/internal/redis/presencemirror"
	"chatroomgo/internal/redis/redis_client"
	"chatroomgo/internal/ws"
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	var observers []presence.Observer

	// 3. Optional Redis presence mirror
	var startAnnouncer func(*presence.Coordinator)
	if cfg.RedisEnabled {
		redisClient, err := redis_client.NewRedisClient(ctx, cfg.RedisHost, cfg.RedisPort)
		if err != nil {
			Log.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()

		mirror := presencemirror.New(redisClient, cfg.RedisChannelPrefix)
		mirror.Run(ctx)
		observers = append(observers, mirror)

		startAnnouncer = func(coord *presence.Coordinator) {
			go announcer.Run(ctx, redisClient, cfg.RedisChannelPrefix, coord)
		}
		Log.Debug("Redis presence mirror enabled")
	}

	// 4. Optional Postgres presence journal
	if cfg.JournalEnabled {
		pgDb, err := db_client.Open(ctx, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
		if err != nil {
			Log.Fatal("pg-open", zap.Error(err))
		}
		defer pgDb.Close()

		if err := journal.EnsureSchema(ctx, pgDb); err != nil {
			Log.Fatal("journal-schema", zap.Error(err))
		}
		j := journal.New(pgDb)
		j.Run(ctx)
		observers = append(observers, j)
	}

	// 5. WebSockets hub + presence coordinator
	hub := ws.NewHub()
	coord := presence.NewCoordinator(hub, presence.Options{
		SystemName:  cfg.SystemName,
		WelcomeText: cfg.WelcomeText,
		TimeLayout:  cfg.ChatTimeLayout,
	}, observers...)

	// 6. Background: operator announcements
	if startAnnouncer != nil {
		startAnnouncer(coord)
	}

	// 7. Initialize the WS server
	wsSrv := ws.NewWsServer(hub, coord, ws.Options{
		SendBuffer: cfg.WsSendBuffer,
		ReadLimit:  cfg.WsReadLimit,
	})

	// 8. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, coord)
	go func() {
		<-ctx.Done()
		_ = httpServer.Dispose()
	}()
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
