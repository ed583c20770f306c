package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aira-hq/hubclient/internal/config"
	"github.com/aira-hq/hubclient/internal/logger"
	"github.com/aira-hq/hubclient/pkg/apiclient"
	"github.com/aira-hq/hubclient/pkg/hub"
	"github.com/aira-hq/hubclient/pkg/notifiers"
	"github.com/aira-hq/hubclient/pkg/tokenstore"
)

// App wires the token store, session notifiers and the hub API client.
type App struct {
	cfg    *config.Config
	log    logger.Logger
	store  tokenstore.Store
	fanout *notifiers.Fanout
	api    *apiclient.Client
	hub    *hub.Service
}

// New builds the runtime from cfg and installs the shared API client.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := tokenstore.NewStore(cfg.TokenStorageType, cfg.TokenPath, tokenstore.Options{TTL: cfg.TokenTTL})
	if err != nil {
		return nil, fmt.Errorf("init token storage: %w", err)
	}
	log.InfoObj("token storage initialized", "token_storage", map[string]any{
		"type":        cfg.TokenStorageType,
		"path":        cfg.TokenPath,
		"ttl_seconds": int(cfg.TokenTTL.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		log:    log,
		store:  store,
		fanout: fanout,
	}

	apiCfg := apiclient.Config{
		BaseURL:        cfg.BaseURL,
		IsNative:       cfg.IsNative,
		TokenStorage:   store,
		OnUnauthorized: a.handleUnauthorized,
		Timeout:        cfg.Timeout,
		Logger:         log,
		DevMode: func() bool {
			return apiclient.DetectDevMode() && !cfg.Production()
		},
	}
	if s, ok := log.(interface{ Sugar() *zap.SugaredLogger }); ok {
		apiCfg.RestyLogger = s.Sugar()
	}

	api, err := apiclient.Initialize(apiCfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	a.api = api
	a.hub = hub.NewService(api)
	return a, nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*notifiers.Fanout, error) {
	if cfg.NotifiersFile == "" {
		return notifiers.NewFanout(nil), nil
	}

	reg, err := notifiers.LoadRegistry(cfg.NotifiersFile)
	if err != nil {
		return nil, fmt.Errorf("load notifiers registry: %w", err)
	}
	enabled := reg.Enabled()
	built, err := notifiers.BuildAll(ctx, notifiers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, n := range enabled {
		summaries = append(summaries, map[string]string{"id": n.ID, "type": n.Type})
	}
	log.InfoObj("notifiers registry loaded", "notifiers_meta", map[string]any{
		"count":     len(summaries),
		"notifiers": summaries,
	})
	return notifiers.NewFanout(built), nil
}

// handleUnauthorized drops the stored token and tells the configured sinks
// that the session ended.
func (a *App) handleUnauthorized(ctx context.Context) error {
	var errs []error
	if err := a.store.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear token: %w", err))
	}

	evt := notifiers.NewEvent(notifiers.EventSessionUnauthorized, a.cfg.AppName, a.cfg.BaseURL)
	delivered, err := a.fanout.Notify(ctx, evt)
	if err != nil {
		errs = append(errs, fmt.Errorf("notify session end: %w", err))
	}
	a.log.WarnObj("session unauthorized", "session_event", map[string]any{
		"event_id":  evt.ID,
		"delivered": delivered,
		"notifiers": a.fanout.Size(),
	})
	return errors.Join(errs...)
}

// Hub returns the typed hub endpoints.
func (a *App) Hub() *hub.Service { return a.hub }

// API returns the underlying client for raw requests.
func (a *App) API() *apiclient.Client { return a.api }

// Login stores token for later requests.
func (a *App) Login(ctx context.Context, token string) error {
	if err := a.store.SetToken(ctx, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	a.log.InfoObj("token stored", "token_storage", a.cfg.TokenStorageType)
	return nil
}

// Logout forgets the stored token.
func (a *App) Logout(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

const hookDrainTimeout = 5 * time.Second

// Close waits for pending session hooks, then releases notifier connections
// and the token store.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.api != nil {
		ctx, cancel := context.WithTimeout(context.Background(), hookDrainTimeout)
		err := a.api.WaitHooks(ctx)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("wait for session hooks: %w", err))
		}
	}
	if err := a.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close notifiers: %w", err))
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close token storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
