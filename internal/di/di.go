package di

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"canvasroom/internal/application/gateway"
	"canvasroom/internal/application/hub"
	"canvasroom/internal/application/room"
	"canvasroom/internal/config"
	"canvasroom/internal/infrastructure/store"
	"canvasroom/internal/logger"
	"canvasroom/internal/presentation/server"
)

type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	RedisClient *redis.Client
	Store       store.Store
	Registry    *room.Registry
	Ledger      *room.Ledger
	History     *room.History
	Hub         *hub.Hub
	Gateway     *gateway.Gateway
	Server      *server.WsServer
}

func NewContainer(ctx context.Context) (*Container, error) {
	c := &Container{}
	cfg, err := config.LoadFromFile("config.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	c.Logger = logger.NewLogger(cfg.LoggerConfig.Level)

	redisClient := store.NewRedisConnection(&cfg.RedisCfg)
	if redisClient == nil {
		return nil, fmt.Errorf("failed to create Redis connection")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	c.RedisClient = redisClient
	c.Store = store.NewRedisStore(redisClient)
	c.Logger.Info("connected to Redis")

	locks := room.NewLockTable()
	c.Registry = room.NewRegistry(c.Store, locks, c.Logger, cfg.RoomTTL(), cfg.RoomCfg.MaxUsers)
	c.Ledger = room.NewLedger(c.Store, locks, c.Logger, cfg.RoomCfg.ChatLimit, cfg.RoomTTL())
	c.History = room.NewHistory(c.Store, locks, c.Logger, cfg.RoomCfg.RedoLimit)

	c.Hub = hub.NewHub(c.Logger)
	c.Gateway = gateway.New(ctx, c.Hub, c.Registry, c.Ledger, c.History, c.Logger)

	srvDsn := fmt.Sprintf("%s:%s", cfg.ServerCfg.Host, cfg.ServerCfg.Port)
	c.Server = server.NewWsServer(
		c.Hub,
		c.Gateway,
		srvDsn,
		cfg.ServerCfg.AllowedOrigins,
		cfg.ServerCfg.StaticDir,
		c.Store.Ping,
		c.Logger,
	)

	return c, nil
}

func (c *Container) Close() error {
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			c.Logger.Error("failed to close store", zap.Error(err))
		}
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
	return nil
}
