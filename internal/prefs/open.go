package prefs

import (
	"context"
	"fmt"

	"github.com/kiranshivaraju/keyconsole/internal/config"
)

// Open builds the Store selected by configuration and checks that it answers.
func Open(ctx context.Context, cfg config.PrefsConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case "bolt":
		s, err = OpenBoltStore(cfg.Path)
	case "redis":
		s, err = NewRedisStore(cfg.RedisURL, "")
	case "memory":
		s = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown prefs backend %q: must be one of bolt, redis, memory", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Ping(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("ping %s prefs store: %w", cfg.Backend, err)
	}
	return s, nil
}
