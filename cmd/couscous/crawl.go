package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/couscous-crawler/couscous/internal/config"
	"github.com/couscous-crawler/couscous/internal/crawler"
	"github.com/couscous-crawler/couscous/internal/database"
	"github.com/couscous-crawler/couscous/internal/imagescan"
	"github.com/couscous-crawler/couscous/internal/log"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a website for email addresses, phone numbers, and face images",
		Long: `Crawl starts from the given URL and explores pages breadth-first,
extracting email addresses and French phone numbers as it goes.

The frontier, the visited set, and every discovered artifact are stored in
a SQLite database. Interrupt the crawl with Ctrl+C at any time; re-running
with --resume picks up the remaining work without repeating completed pages.

Examples:
  # Crawl a site, staying on its domain
  couscous crawl --stay-on-domain https://example.com

  # Limit crawl depth and use more workers
  couscous crawl -d 3 -w 20 https://example.com

  # Resume an interrupted crawl
  couscous crawl --resume https://example.com

  # Also download images and keep the ones with faces
  couscous crawl --extract-images --detector-cmd "python3,face_detect.py,model.pt" https://example.com

Configuration file (.couscous) example:
  user_agents:
    - "Mozilla/5.0 (X11; Linux x86_64) ..."
  images:
    min_width: 256
    min_height: 256
    detector_command: ["python3", "face_detect.py", "model.pt"]`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultDepth,
		"Maximum crawl depth (0 = unlimited)")
	cmd.Flags().BoolP("stay-on-domain", "s", false,
		"Only follow links on the seed URL's domain and its subdomains")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent crawl workers")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().Float64("rate", 0,
		"Global request rate limit in requests per second (0 = no cap)")
	cmd.Flags().BoolP("insecure", "k", false,
		"Skip TLS certificate verification")

	// Persistence flags
	cmd.Flags().String("db", config.DefaultDatabasePath,
		"SQLite database file for crawl state and results")
	cmd.Flags().BoolP("resume", "r", false,
		"Resume an interrupted crawl from the existing database")

	// Image pipeline flags
	cmd.Flags().Bool("extract-images", false,
		"Download images and run face detection on them")
	cmd.Flags().String("faces-dir", config.DefaultFacesDir,
		"Output directory for images that pass face detection")
	cmd.Flags().Int("min-image-width", config.DefaultMinImageWidth,
		"Minimum image width in pixels for face detection")
	cmd.Flags().Int("min-image-height", config.DefaultMinImageHeight,
		"Minimum image height in pixels for face detection")
	cmd.Flags().StringSlice("detector-cmd", nil,
		"Face detector command and arguments (image path is appended)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .couscous in current or home directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing in-flight pages...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.SeedURL = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.Depth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.StayOnDomain, err = cmd.Flags().GetBool("stay-on-domain")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.RateLimit, err = cmd.Flags().GetFloat64("rate")
	if err != nil {
		return nil, err
	}

	cfg.Insecure, err = cmd.Flags().GetBool("insecure")
	if err != nil {
		return nil, err
	}

	cfg.DatabasePath, err = cmd.Flags().GetString("db")
	if err != nil {
		return nil, err
	}

	cfg.Resume, err = cmd.Flags().GetBool("resume")
	if err != nil {
		return nil, err
	}

	cfg.ExtractImages, err = cmd.Flags().GetBool("extract-images")
	if err != nil {
		return nil, err
	}

	cfg.FacesDir, err = cmd.Flags().GetString("faces-dir")
	if err != nil {
		return nil, err
	}

	cfg.MinImageWidth, err = cmd.Flags().GetInt("min-image-width")
	if err != nil {
		return nil, err
	}

	cfg.MinImageHeight, err = cmd.Flags().GetInt("min-image-height")
	if err != nil {
		return nil, err
	}

	cfg.DetectorCommand, err = cmd.Flags().GetStringSlice("detector-cmd")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load file defaults. An explicitly specified config file must exist;
	// an implicit lookup that finds nothing is fine.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(cf)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	return cfg, nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// A resumed crawl must find an existing database; a fresh crawl may
	// create one.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = !cfg.Resume

	db, err := database.Open(cfg.DatabasePath, opts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	fetcher := crawler.NewStealthFetcher(cfg.Timeout,
		crawler.WithUserAgents(cfg.UserAgents),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithInsecureTLS(cfg.Insecure),
	)

	crawlerOpts := []crawler.Option{
		crawler.WithFetcher(fetcher),
		crawler.WithLogger(logger),
	}

	if cfg.ExtractImages {
		sink, err := buildImageSink(cfg, fetcher, db, logger)
		if err != nil {
			return err
		}
		crawlerOpts = append(crawlerOpts, crawler.WithImageSink(sink))
	}

	c := crawler.New(db, cfg, crawlerOpts...)

	pending, err := c.Init(ctx)
	if err != nil {
		return err
	}

	logger.Info("starting crawl",
		"seed", cfg.SeedURL,
		"workers", cfg.Workers,
		"depth", cfg.Depth,
		"stayOnDomain", cfg.StayOnDomain,
		"resume", cfg.Resume,
		"pending", pending,
	)

	var stopProgress func()
	if !cfg.Verbose {
		stopProgress = startProgress(ctx, c)
	}

	start := time.Now()
	runErr := c.Run(ctx)
	if stopProgress != nil {
		stopProgress()
	}
	if runErr != nil {
		return runErr
	}

	return printSummary(ctx, db, c, time.Since(start))
}

// buildImageSink wires the image pipeline from the configuration. The
// pipeline shares the page fetcher's HTTP client so it inherits timeout
// and TLS settings.
func buildImageSink(cfg *config.Config, fetcher *crawler.StealthFetcher, db *database.CrawlDB, logger *slog.Logger) (crawler.ImageSink, error) {
	if len(cfg.DetectorCommand) == 0 {
		return nil, errors.New("image extraction requires a face detector (set --detector-cmd or detector_command in the config file)")
	}

	detector, err := imagescan.NewCommandDetector(cfg.DetectorCommand)
	if err != nil {
		return nil, err
	}

	return imagescan.NewProcessor(
		fetcher.Client(),
		cfg.FacesDir,
		cfg.MinImageWidth,
		cfg.MinImageHeight,
		detector,
		db,
		logger,
	), nil
}

// startProgress renders a live progress spinner with the crawler's counters
// and returns a function that stops it.
func startProgress(ctx context.Context, c *crawler.Crawler) func() {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("crawling"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
	)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()

		var lastPages int64
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap := c.Snapshot()
				bar.Describe(fmt.Sprintf("crawling (pages: %d, emails: %d, phones: %d)",
					snap.PagesCrawled, snap.EmailsFound, snap.PhonesFound))
				_ = bar.Add(int(snap.PagesCrawled - lastPages))
				lastPages = snap.PagesCrawled
			}
		}
	}()

	return func() {
		close(done)
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
}

// printSummary prints the final crawl totals from the database.
func printSummary(ctx context.Context, db *database.CrawlDB, c *crawler.Crawler, elapsed time.Duration) error {
	// A cancelled parent context must not prevent the summary queries.
	ctx = context.WithoutCancel(ctx)

	stats, err := db.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect final stats: %w", err)
	}

	snap := c.Snapshot()

	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("Crawl finished")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("  Pages crawled:  %d (this run)\n", snap.PagesCrawled)
	fmt.Printf("  Unique emails:  %d\n", stats.UniqueEmails)
	fmt.Printf("  Unique phones:  %d\n", stats.UniquePhones)
	fmt.Printf("  Saved images:   %d\n", stats.Images)
	fmt.Printf("  Elapsed:        %s\n", elapsed.Round(time.Second))

	if stats.PendingURLs > 0 {
		fmt.Printf("\n  %d URLs still pending. Continue with --resume.\n", stats.PendingURLs)
	}

	return nil
}
