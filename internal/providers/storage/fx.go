package storage

import (
	"context"
	"fmt"

	"github.com/smallbiznis/billdesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("storage",
	fx.Provide(
		NewStore,
		NewArtifactStore,
	),
)

func NewStore(cfg config.Config, log *zap.Logger) (Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn("artifact storage is in memory; PDFs are lost on restart")
		return NewMemoryStore(cfg.Storage.PublicBaseURL), nil
	case "s3", "supabase", "minio":
		return NewS3Store(context.Background(), cfg.Storage)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
