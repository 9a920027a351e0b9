package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fpvcatalog/partscrawler/internal/catalog"
	"github.com/fpvcatalog/partscrawler/internal/classify"
	"github.com/fpvcatalog/partscrawler/internal/logger"
	"github.com/fpvcatalog/partscrawler/internal/output"
	"github.com/fpvcatalog/partscrawler/internal/shutdown"
	"github.com/fpvcatalog/partscrawler/internal/store"
	"github.com/fpvcatalog/partscrawler/internal/vendor"
	"github.com/fpvcatalog/partscrawler/pkg/scraper"
)

var (
	version = "1.0.0"

	// Global flags
	vendorsFile string
	logLevel    string
	verbose     bool

	// Crawl flags
	maxPages    int
	outputFile  string
	journalFile string
	streamOut   bool
	prettyOut   bool
	headless    bool
	batchSize   int
	batchDelay  time.Duration
	globalRate  float64
	noCache     bool

	// Classify flags
	description  string
	categoryHint string
	vendorName   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "partscrawler",
		Short: "Drone parts catalog scraper",
		Long: `partscrawler crawls FPV drone part shops, extracts product data, and
classifies every product into one of six categories: motor, frame,
stack, camera, prop, battery.`,
		Version: version,
	}

	crawlCmd := &cobra.Command{
		Use:   "crawl [vendor]",
		Short: "Crawl a vendor's catalog",
		Long:  "Crawl one configured vendor, classify its products, and write the results as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE:  runCrawl,
	}

	classifyCmd := &cobra.Command{
		Use:   "classify [name]",
		Short: "Classify a single product without crawling",
		Args:  cobra.ExactArgs(1),
		RunE:  runClassify,
	}

	vendorsCmd := &cobra.Command{
		Use:   "vendors",
		Short: "List configured vendors",
		RunE:  runVendors,
	}

	rootCmd.PersistentFlags().StringVarP(&vendorsFile, "vendors-file", "c", "", "Vendor profiles YAML file (default: built-in profiles)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Shorthand for --log-level debug")

	crawlCmd.Flags().IntVarP(&maxPages, "max-pages", "n", 0, "Page budget override (0 = profile default)")
	crawlCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	crawlCmd.Flags().StringVar(&journalFile, "journal", "", "bbolt journal file for persisted products")
	crawlCmd.Flags().BoolVar(&streamOut, "stream", false, "Stream one JSON line per product as it is scraped")
	crawlCmd.Flags().BoolVar(&prettyOut, "pretty", false, "Indent the final report JSON")
	crawlCmd.Flags().BoolVar(&headless, "headless", true, "Run the browser headless")
	crawlCmd.Flags().IntVar(&batchSize, "batch-size", 0, "Concurrent product fetches per batch")
	crawlCmd.Flags().DurationVar(&batchDelay, "batch-delay", 0, "Pause between product batches")
	crawlCmd.Flags().Float64VarP(&globalRate, "rate-limit", "r", 0, "Global requests per second")
	crawlCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the classification result cache")

	classifyCmd.Flags().StringVarP(&description, "description", "d", "", "Product description")
	classifyCmd.Flags().StringVar(&categoryHint, "hint", "", "Category hint (motor, frame, stack, camera, prop, battery)")
	classifyCmd.Flags().StringVar(&vendorName, "vendor", "", "Vendor the product came from")

	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(vendorsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() (*logger.Logger, error) {
	level := logLevel
	if verbose {
		level = "debug"
	}
	parsed, err := logger.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := logger.DefaultConfig()
	cfg.Level = parsed
	return logger.New(cfg), nil
}

func loadRegistry() (*vendor.Registry, error) {
	if vendorsFile == "" {
		return vendor.NewRegistry(vendor.Defaults()...)
	}
	return vendor.LoadFile(vendorsFile)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	target := args[0]

	log, err := newLogger()
	if err != nil {
		return err
	}

	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	config := scraper.DefaultConfig()
	config.Browser.Headless = headless
	config.DisableCache = noCache
	if cmd.Flags().Changed("batch-size") {
		config.BatchSize = batchSize
	}
	if cmd.Flags().Changed("batch-delay") {
		config.BatchDelay = batchDelay
	}
	if cmd.Flags().Changed("rate-limit") {
		config.GlobalRate = globalRate
	}

	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	sinks := []scraper.Sink{
		output.NewJSONWriter(out, output.Config{Pretty: prettyOut, Stream: streamOut}),
	}
	if journalFile != "" {
		journal, err := store.Open(journalFile)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		sinks = append(sinks, journal)
	}

	opts := []scraper.Option{
		scraper.WithConfig(config),
		scraper.WithLogger(log),
		scraper.WithRegistry(registry),
	}
	for _, sink := range sinks {
		opts = append(opts, scraper.WithSink(sink))
	}

	s, err := scraper.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create scraper: %w", err)
	}

	handler := shutdown.New(30 * time.Second)
	handler.Register("scraper", func(ctx context.Context) error { return s.Close() })
	handler.Listen()
	defer handler.Shutdown()

	report, err := s.CrawlVendor(handler.Context(), target, maxPages)
	if err != nil && !handler.IsShuttingDown() {
		return fmt.Errorf("crawl failed: %w", err)
	}

	if report != nil && out != os.Stdout {
		printSummary(report)
	}
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}

	s, err := scraper.New(scraper.WithLogger(log))
	if err != nil {
		return err
	}
	defer s.Close()

	result := s.ClassifyProduct(args[0], description, &classify.Context{
		Vendor:       vendorName,
		CategoryHint: catalog.Category(categoryHint),
	})

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runVendors(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	for _, name := range registry.Names() {
		profile, _ := registry.Get(name)
		fmt.Printf("%-16s %s (%d seeds, %d pages max)\n",
			name, profile.BaseURL, len(profile.SeedURLs), profile.MaxPages)
	}
	return nil
}

func printSummary(report *scraper.CrawlReport) {
	fmt.Println()
	fmt.Println("Crawl Summary")
	fmt.Println("-------------")
	fmt.Printf("Vendor:             %s\n", report.Vendor)
	fmt.Printf("State:              %s\n", report.State)
	fmt.Printf("Duration:           %v\n", report.Stats.Duration.Round(time.Millisecond))
	fmt.Printf("Pages Fetched:      %d\n", report.Stats.PagesFetched)
	fmt.Printf("Links Discovered:   %d\n", report.Stats.PagesDiscovered)
	fmt.Printf("Products Emitted:   %d\n", report.Stats.ProductsEmitted)
	fmt.Printf("Products Discarded: %d\n", report.Stats.ProductsDiscarded)
	fmt.Printf("Fetch Errors:       %d\n", report.Stats.FetchErrors)
	fmt.Println()

	byCategory := make(map[catalog.Category]int)
	for _, p := range report.Products {
		byCategory[p.Category]++
	}
	if len(byCategory) > 0 {
		fmt.Println("By Category:")
		for _, c := range catalog.All() {
			if n := byCategory[c]; n > 0 {
				fmt.Printf("  %-8s %d\n", c, n)
			}
		}
		fmt.Println()
	}
}
