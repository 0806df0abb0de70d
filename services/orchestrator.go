package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CodePeacock/scraper/models"
	"github.com/CodePeacock/scraper/scraper"
	"github.com/CodePeacock/scraper/storage"
	"github.com/CodePeacock/scraper/utils"
)

// Orchestrator runs one scrape: it resolves every requested source in
// parallel, combines their listings in registration order and hands the
// result to the output sink.
type Orchestrator struct {
	registry  *scraper.Registry
	resolver  *Resolver
	sink      storage.ListingWriter
	mirrors   []storage.ListingWriter
	outputDir string
	logger    *utils.Logger
	now       func() time.Time
}

// NewOrchestrator creates an Orchestrator writing to sink. Mirrors receive a
// copy of every run; their failures are logged and never fail the run.
func NewOrchestrator(
	reg *scraper.Registry,
	resolver *Resolver,
	sink storage.ListingWriter,
	outputDir string,
	logger *utils.Logger,
	mirrors ...storage.ListingWriter,
) *Orchestrator {
	return &Orchestrator{
		registry:  reg,
		resolver:  resolver,
		sink:      sink,
		mirrors:   mirrors,
		outputDir: outputDir,
		logger:    logger,
		now:       time.Now,
	}
}

// Run scrapes locality from the selected sources.
//
// Config errors (empty locality, unknown or empty selection) are returned
// before anything is fetched, with a nil report. A failing source only shows
// up as a Failed outcome in the report. If the output write fails the error
// wraps ErrSink and the report, listings included, is still returned so the
// caller can retry with WriteReport.
func (o *Orchestrator) Run(ctx context.Context, locality string, selectors []string) (*models.RunReport, error) {
	locality = utils.NormaliseText(locality)
	if locality == "" {
		return nil, fmt.Errorf("locality must not be empty: %w", models.ErrConfig)
	}
	ids, err := o.registry.Expand(selectors)
	if err != nil {
		return nil, err
	}

	started := o.now()
	report := &models.RunReport{
		RunID:     uuid.NewString(),
		Locality:  locality,
		Sources:   ids,
		StartedAt: started,
	}
	o.logger.Info("[orchestrator] Run %s: %q from %s", report.RunID, locality, strings.Join(ids, ", "))

	report.Outcomes = o.resolveAll(ctx, locality, ids)
	report.Listings = combine(report.Outcomes)

	for _, out := range report.Outcomes {
		if out.OK() {
			o.logger.Info("[orchestrator] %s: %d listings (cached=%t)", out.Source, out.Count, out.FromCache)
		} else {
			o.logger.Error("[orchestrator] %s failed: %v", out.Source, out.Err)
		}
	}
	if report.AllFailed() {
		o.logger.Warn("[orchestrator] Every source failed for %q; writing an empty file", locality)
	}

	report.OutputPath = filepath.Join(o.outputDir, OutputName(locality, ids, started))
	err = o.WriteReport(ctx, report)
	o.mirror(ctx, report)

	report.Duration = o.now().Sub(started)
	o.logger.Info("[orchestrator] Run %s finished: %d/%d sources ok, %d listings in %s",
		report.RunID, report.Succeeded(), len(ids), len(report.Listings), report.Duration)
	return report, err
}

// resolveAll fans out one resolution per source and waits for all of them.
// Each goroutine owns one slot of the result, so completion order is irrelevant.
func (o *Orchestrator) resolveAll(ctx context.Context, locality string, ids []string) []models.FetchOutcome {
	outcomes := make([]models.FetchOutcome, len(ids))
	pool := utils.NewWorkerPool(len(ids))
	for i, id := range ids {
		pool.Submit(func() {
			outcomes[i] = o.resolver.Resolve(ctx, id, locality)
		})
	}
	pool.Wait()
	return outcomes
}

func combine(outcomes []models.FetchOutcome) []models.Listing {
	total := 0
	for _, out := range outcomes {
		total += len(out.Listings)
	}
	combined := make([]models.Listing, 0, total)
	for _, out := range outcomes {
		combined = append(combined, out.Listings...)
	}
	return combined
}

// WriteReport writes report's listings through the primary sink. It is what
// Run calls, and what a caller re-invokes after an ErrSink failure.
func (o *Orchestrator) WriteReport(ctx context.Context, report *models.RunReport) error {
	if err := o.sink.Write(ctx, report); err != nil {
		o.logger.Error("[orchestrator] Writing %s failed: %v", report.OutputPath, err)
		return fmt.Errorf("write %s: %v: %w", report.OutputPath, err, models.ErrSink)
	}
	o.logger.Info("[orchestrator] Wrote %d listings to %s", len(report.Listings), report.OutputPath)
	return nil
}

func (o *Orchestrator) mirror(ctx context.Context, report *models.RunReport) {
	for _, m := range o.mirrors {
		if err := m.Write(ctx, report); err != nil {
			o.logger.Warn("[orchestrator] Mirror write failed for run %s: %v", report.RunID, err)
		}
	}
}

// OutputName returns the file name for a run, e.g.
// "new-delhi-magicbricks-makaan-17-Oct-2026.csv". Source ids are sorted so the
// name does not depend on selector order.
func OutputName(locality string, ids []string, at time.Time) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return fmt.Sprintf("%s-%s-%s.csv", utils.Slug(locality), strings.Join(sorted, "-"), at.Format("02-Jan-2006"))
}
