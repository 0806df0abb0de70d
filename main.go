package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/CodePeacock/scraper/api"
	"github.com/CodePeacock/scraper/cache"
	"github.com/CodePeacock/scraper/config"
	"github.com/CodePeacock/scraper/fetcher"
	"github.com/CodePeacock/scraper/scraper"
	"github.com/CodePeacock/scraper/services"
	"github.com/CodePeacock/scraper/storage"
	"github.com/CodePeacock/scraper/utils"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	city := flag.String("city", "", "city to scrape listings for")
	sites := flag.String("sites", "", "comma separated sources, or 'all'")
	serve := flag.Bool("serve", false, "run the HTTP API instead of a single scrape")
	flag.Parse()

	cfg := config.Load()
	logger, err := utils.OpenLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		logger = utils.NewLogger()
		logger.Warn("Run log disabled: %v", err)
	}
	defer logger.Close()

	logger.Info("=== Property Listings Scraper starting ===")
	logger.Info("Config | cache ttl: %s | timeout: %s | retries: %d | output: %s",
		cfg.CacheTTL, cfg.FetchTimeout, cfg.MaxRetries, cfg.OutputDir)

	templates, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		logger.Error("Failed to load source overrides: %v", err)
		return exitConfig
	}
	registry, err := scraper.Default(templates)
	if err != nil {
		logger.Error("Failed to build source registry: %v", err)
		return exitConfig
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listingCache := cache.New(cfg.CacheTTL)
	resolver := services.NewResolver(
		registry,
		fetcher.NewCollyFetcher(cfg.UserAgent, cfg.FetchTimeout),
		listingCache,
		logger.WithComponent("resolver"),
		cfg.MaxRetries,
	)
	mirrors := openMirrors(cfg, logger)
	defer func() {
		for _, m := range mirrors {
			_ = m.Close()
		}
	}()
	orch := services.NewOrchestrator(registry, resolver, storage.NewCSVWriter(), cfg.OutputDir,
		logger.WithComponent("orchestrator"), mirrors...)

	if *serve {
		go purgeLoop(ctx, listingCache, cfg.CacheTTL, logger)
		return serveHTTP(ctx, cfg.HTTPAddr, api.NewScrapeHandler(orch, logger.WithComponent("api")), logger)
	}

	in := bufio.NewReader(os.Stdin)
	if *city == "" {
		*city = prompt(in, os.Stdout, "Enter the city you want to scrape listings for: ")
	}
	if *sites == "" {
		*sites = prompt(in, os.Stdout, fmt.Sprintf("Enter %s, or 'all' to scrape every site: ",
			quoteList(registry.IDs())))
	}

	locality := utils.NormaliseText(*city)
	selectors := splitSites(*sites)
	if locality == "" {
		fmt.Println("Please enter a city name.")
		return exitConfig
	}
	if _, err := registry.Expand(selectors); err != nil {
		fmt.Printf("Invalid site selection: %v\n", err)
		return exitConfig
	}

	report, err := orch.Run(ctx, locality, selectors)
	if report == nil {
		logger.Error("Scrape aborted: %v", err)
		return exitConfig
	}

	svc := services.NewSummaryService(logger)
	summary := svc.Generate(report, err)
	svc.Print(os.Stdout, summary)

	if !summary.Success() {
		return exitFailed
	}
	return exitOK
}

// openMirrors connects the optional Postgres and NATS sinks. A mirror that
// cannot be reached is skipped; the CSV output does not depend on it.
func openMirrors(cfg *config.Config, logger *utils.Logger) []storage.ListingWriter {
	var mirrors []storage.ListingWriter
	if cfg.PostgresEnabled {
		pg, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Warn("PostgreSQL mirror disabled: %v", err)
		} else {
			logger.Info("Mirroring listings to PostgreSQL (table: listings)")
			mirrors = append(mirrors, pg)
		}
	}
	if cfg.NATSURL != "" {
		pub, err := storage.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			logger.Warn("NATS mirror disabled: %v", err)
		} else {
			logger.Info("Publishing runs to NATS subject %s.<city>", storage.SubjectPrefix)
			mirrors = append(mirrors, pub)
		}
	}
	return mirrors
}

func serveHTTP(ctx context.Context, addr string, h *api.ScrapeHandler, logger *utils.Logger) int {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		logger.Error("Server stopped: %v", err)
		return exitFailed
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown: %v", err)
			return exitFailed
		}
		logger.Info("Server shut down")
		return exitOK
	}
}

// purgeLoop drops expired cache entries so a long-running server does not
// keep every locality it was ever asked about.
func purgeLoop(ctx context.Context, c *cache.Cache, every time.Duration, logger *utils.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Purge(); n > 0 {
				logger.Debug("[cache] Purged %d expired entries, %d live", n, c.Len())
			}
		}
	}
}

func prompt(in *bufio.Reader, out io.Writer, question string) string {
	fmt.Fprint(out, question)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(line)
}

func splitSites(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func quoteList(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = "'" + id + "'"
	}
	return strings.Join(quoted, ", ")
}
