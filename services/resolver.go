package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/CodePeacock/scraper/cache"
	"github.com/CodePeacock/scraper/fetcher"
	"github.com/CodePeacock/scraper/models"
	"github.com/CodePeacock/scraper/scraper"
	"github.com/CodePeacock/scraper/utils"
)

// Resolver is the fetch-and-cache unit: it turns a (source, locality) pair
// into a FetchOutcome, going to the network only on a cache miss.
type Resolver struct {
	registry *scraper.Registry
	fetcher  fetcher.Fetcher
	cache    *cache.Cache
	retry    *utils.RetryConfig
	logger   *utils.Logger
}

// NewResolver creates a Resolver. maxAttempts <= 1 disables retries;
// only transport errors are retried.
func NewResolver(reg *scraper.Registry, f fetcher.Fetcher, c *cache.Cache, logger *utils.Logger, maxAttempts int) *Resolver {
	return &Resolver{
		registry: reg,
		fetcher:  f,
		cache:    c,
		logger:   logger,
		retry: &utils.RetryConfig{
			MaxAttempts: maxAttempts,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
			Retryable: func(err error) bool {
				return errors.Is(err, models.ErrTransport)
			},
		},
	}
}

// Resolve never returns a Go error: transport, parse and lookup failures all
// come back as a Failed outcome. Failures are not cached.
func (r *Resolver) Resolve(ctx context.Context, sourceID, locality string) models.FetchOutcome {
	src, ok := r.registry.Lookup(sourceID)
	if !ok {
		return r.fail(sourceID, fmt.Errorf("unknown source: %w", models.ErrConfig))
	}

	key := cache.Key{SourceID: src.ID, Locality: utils.Slug(locality)}
	if listings, hit := r.cache.Get(key); hit {
		r.logger.Debug("[resolver] %s/%s served from cache (%d listings)", src.ID, key.Locality, len(listings))
		return models.Ok(src.ID, listings, true)
	}

	url := src.URL(locality)
	r.logger.Info("[resolver] Fetching %s from %s", src.ID, url)

	var body []byte
	err := r.retry.Do(ctx, "fetch-"+src.ID, func() error {
		b, err := r.fetcher.Fetch(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return r.fail(src.ID, err)
	}

	listings, err := extract(src, body)
	if err != nil {
		return r.fail(src.ID, err)
	}

	r.cache.Set(key, listings)
	r.logger.Info("[resolver] %s extracted %d listings", src.ID, len(listings))
	return models.Ok(src.ID, listings, false)
}

func (r *Resolver) fail(sourceID string, err error) models.FetchOutcome {
	err = fmt.Errorf("%s: %w", sourceID, err)
	r.logger.Error("[resolver] %v", err)
	return models.Failed(sourceID, err)
}

// extract parses body and runs the source's adapter. A panicking adapter is
// reported as ErrParse instead of taking the run down.
func extract(src scraper.Source, body []byte) (listings []models.Listing, err error) {
	defer func() {
		if p := recover(); p != nil {
			listings = nil
			err = fmt.Errorf("%s adapter failed on page markup: %v: %w", src.Adapter.Name(), p, models.ErrParse)
		}
	}()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page: %v: %w", err, models.ErrParse)
	}

	listings = src.Adapter.Extract(doc)
	if listings == nil {
		listings = []models.Listing{}
	}
	return listings, nil
}
