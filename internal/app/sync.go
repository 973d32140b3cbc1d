package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-catalog-client/internal/config"
	"github.com/samvad-hq/samvad-catalog-client/internal/logger"
	"github.com/samvad-hq/samvad-catalog-client/pkg/catalog"
	"github.com/samvad-hq/samvad-catalog-client/pkg/publishers"
)

// CatalogFetcher is the read surface of catalog.Client used by the syncer.
type CatalogFetcher interface {
	GetProducts(ctx context.Context) (catalog.Payload, error)
	GetCategories(ctx context.Context) (catalog.Payload, error)
}

// EventPublisher publishes fetched collections downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Syncer fetches both catalog collections and publishes each one as an event.
type Syncer struct {
	client   CatalogFetcher
	pub      EventPublisher
	interval time.Duration
	log      logger.Logger
}

// NewSyncer builds a Syncer. An interval <= 0 makes Run perform a single pass.
func NewSyncer(client CatalogFetcher, pub EventPublisher, interval time.Duration, log logger.Logger) *Syncer {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Syncer{client: client, pub: pub, interval: interval, log: log}
}

// BuildFanout loads the publishers file and instantiates every enabled publisher.
func BuildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})

	return publishers.NewFanout(pubClients), nil
}

// Run syncs once, then on every interval tick until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context) error {
	if s == nil || s.client == nil || s.pub == nil {
		return fmt.Errorf("syncer is not initialized")
	}

	if s.interval <= 0 {
		return s.RunOnce(ctx)
	}

	s.log.InfoObj("sync loop starting", "sync_state", map[string]any{
		"interval": s.interval.String(),
	})

	if err := s.RunOnce(ctx); err != nil {
		s.log.ErrorObj("initial sync failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.InfoObj("sync loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.log.ErrorObj("scheduled sync failed", "error", err)
			}
		}
	}
}

// RunOnce fetches each collection and publishes it. A failed fetch does not
// stop the other collection; all failures are joined in the returned error.
func (s *Syncer) RunOnce(ctx context.Context) error {
	jobs := []struct {
		res   catalog.Resource
		fetch func(context.Context) (catalog.Payload, error)
	}{
		{res: catalog.Products, fetch: s.client.GetProducts},
		{res: catalog.Categories, fetch: s.client.GetCategories},
	}

	var errs []error
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		payload, err := job.fetch(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("fetch %s: %w", job.res.Name, err))
			continue
		}

		delivered, err := s.pub.Publish(ctx, publishers.NewEvent(job.res.Name, job.res.Path, payload))
		if err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", job.res.Name, err))
		}
		s.log.InfoObj("catalog resource synced", "sync_result", map[string]any{
			"resource":  job.res.Name,
			"delivered": delivered,
		})
	}
	return errors.Join(errs...)
}
