package main

import (
	"fmt"

	"github.com/geange/automata/internal/config"
	"github.com/geange/automata/internal/store"
	"github.com/geange/automata/internal/store/file"
	"github.com/geange/automata/internal/store/memory"
	"github.com/geange/automata/internal/store/redis"
)

func openStore(cfg config.StoreConfig) (store.Log, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return file.New(cfg.Path), nil
	case config.BackendRedis:
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		return redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...), nil
	case config.BackendMemory:
		return memory.New(), nil
	}
	return nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalidConfig, cfg.Backend)
}
