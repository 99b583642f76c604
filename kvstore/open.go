// ABOUTME: Open picks and connects the Store backend named in the configuration.
// ABOUTME: Logs the selected backend in the component=kvstore key=value style.
package kvstore

import (
	"context"
	"fmt"
	"log"

	"github.com/2389-research/plaintext/config"
)

// Open connects the configured backend.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendSqlite, "":
		s, err = OpenSqlite(cfg.SqlitePath)
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendRedis:
		s, err = OpenRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
	case config.BackendMinio:
		m := cfg.Minio
		s, err = OpenMinio(ctx, m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket, m.UseSSL)
	default:
		return nil, fmt.Errorf("%w: got %q", config.ErrUnknownStore, cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	log.Printf("component=kvstore action=open backend=%s", cfg.Backend)
	return s, nil
}
