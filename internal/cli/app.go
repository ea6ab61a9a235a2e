// app.go wires configuration into the store, engine and exporter shared by
// the commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"time"

	"github.com/PXLTCH/startup-ai/internal/catalog"
	"github.com/PXLTCH/startup-ai/internal/config"
	"github.com/PXLTCH/startup-ai/internal/export"
	"github.com/PXLTCH/startup-ai/internal/interview"
	"github.com/PXLTCH/startup-ai/internal/log"
	"github.com/PXLTCH/startup-ai/internal/logo"
	"github.com/PXLTCH/startup-ai/internal/naming"
	"github.com/PXLTCH/startup-ai/internal/refiner"
	"github.com/PXLTCH/startup-ai/internal/session"
)

// app holds the collaborators one command invocation works with.
type app struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	store    *session.Store
	assets   *logo.Library
	logger   *log.Logger
	engine   *interview.Engine
	exporter *export.Exporter
}

// loadConfig reads the project config. A missing file means defaults.
func loadConfig(root string) (*config.Config, error) {
	cfg, err := config.ReadConfig(root)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp builds every collaborator. With requireModel the configured
// refiner must pass its preflight check; without it an unavailable model
// degrades to the echoing refiner and the exporter's fallback outline.
func openApp(ctx context.Context, root string, requireModel bool) (*app, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.LoadFile(config.Resolve(root, cfg.Catalog.Path))
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	logger, err := log.NewLogger(config.Dir(root))
	if err != nil {
		return nil, err
	}

	assets, err := logo.NewLibrary(config.Resolve(root, cfg.Assets.Dir))
	if err != nil {
		return nil, err
	}

	svc, err := refiner.New(cfg)
	var completer refiner.Completer
	switch {
	case err == nil:
		completer = svc
	case requireModel:
		return nil, err
	default:
		svc = refiner.NewService(refiner.Static{})
	}

	store, err := session.Open(ctx, cfg.Storage.Driver, config.Resolve(root, cfg.Storage.Path))
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	seed := uint64(time.Now().UnixNano())
	names := naming.NewGenerator(svc, rand.New(rand.NewPCG(seed, seed>>1)))

	return &app{
		cfg:      cfg,
		catalog:  cat,
		store:    store,
		assets:   assets,
		logger:   logger,
		engine:   interview.New(cat, store, svc, names, assets, interview.WithLogger(logger)),
		exporter: export.New(assets, completer, export.WithLogger(logger)),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
