package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"

	"github.com/pandeygaura/navins-redact/internal/audit"
	"github.com/pandeygaura/navins-redact/internal/cache"
	"github.com/pandeygaura/navins-redact/internal/config"
	"github.com/pandeygaura/navins-redact/internal/logger"
)

// jobRecord is the export row shape for Parquet output.
type jobRecord struct {
	ID           int64  `parquet:"id"`
	RequestID    string `parquet:"request_id"`
	Filename     string `parquet:"filename"`
	Kind         string `parquet:"kind"`
	UseAI        bool   `parquet:"use_ai"`
	Cached       bool   `parquet:"cached"`
	Findings     string `parquet:"findings"`
	FindingCount int32  `parquet:"finding_count"`
	ProcessingMS int64  `parquet:"processing_ms"`
	CreatedAt    string `parquet:"created_at"`
}

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file path")
		output     = flag.String("output", "", "Export output file (.parquet or .csv)")
		batchSize  = flag.Int("batch-size", 500, "Rows fetched per database query")
		showStats  = flag.Bool("stats", false, "Show audit trail statistics and exit")
		clearCache = flag.Bool("clear-cache", false, "Clear the Redis result cache and exit")
	)
	flag.Parse()

	if *output == "" && !*showStats && !*clearCache {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --output jobs.parquet\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --output jobs.csv --batch-size 1000\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --stats\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --clear-cache\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling operations...")
		cancel()
	}()

	switch {
	case *clearCache:
		if err := clearResultCache(ctx, cfg, log); err != nil {
			log.Fatal("Failed to clear cache", zap.Error(err))
		}
	case *showStats:
		if err := showAuditStats(ctx, cfg, log); err != nil {
			log.Fatal("Failed to show stats", zap.Error(err))
		}
	default:
		if err := exportJobs(ctx, cfg, *output, *batchSize, log); err != nil {
			log.Fatal("Export failed", zap.Error(err))
		}
	}
}

func openStore(cfg *config.Config, log *logger.Logger) (*audit.Store, error) {
	if !cfg.Audit.Enabled {
		return nil, fmt.Errorf("audit store is not enabled in configuration")
	}
	return audit.NewStore(cfg.Audit, log.WithComponent("audit"))
}

// exportJobs pages through the audit trail and writes every job to the
// output file. The format follows the file extension.
func exportJobs(ctx context.Context, cfg *config.Config, output string, batchSize int, log *logger.Logger) error {
	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	var write func(*audit.Job) error
	var finish func() error

	switch strings.ToLower(filepath.Ext(output)) {
	case ".parquet":
		writer := parquet.NewWriter(file)
		write = func(job *audit.Job) error {
			return writer.Write(&jobRecord{
				ID:           job.ID,
				RequestID:    job.RequestID,
				Filename:     job.Filename,
				Kind:         job.Kind,
				UseAI:        job.UseAI,
				Cached:       job.Cached,
				Findings:     job.Findings,
				FindingCount: int32(job.FindingCount),
				ProcessingMS: job.ProcessingMS,
				CreatedAt:    job.CreatedAt.Format(time.RFC3339),
			})
		}
		finish = writer.Close
	case ".csv":
		writer := csv.NewWriter(file)
		header := []string{"id", "request_id", "filename", "kind", "use_ai", "cached", "findings", "finding_count", "processing_ms", "created_at"}
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		write = func(job *audit.Job) error {
			return writer.Write([]string{
				strconv.FormatInt(job.ID, 10),
				job.RequestID,
				job.Filename,
				job.Kind,
				strconv.FormatBool(job.UseAI),
				strconv.FormatBool(job.Cached),
				job.Findings,
				strconv.Itoa(job.FindingCount),
				strconv.FormatInt(job.ProcessingMS, 10),
				job.CreatedAt.Format(time.RFC3339),
			})
		}
		finish = func() error {
			writer.Flush()
			return writer.Error()
		}
	default:
		return fmt.Errorf("unsupported output format: %s (use .parquet or .csv)", output)
	}

	start := time.Now()
	var exported int64
	var afterID int64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		jobs, err := store.List(ctx, &audit.ListOptions{AfterID: afterID, Limit: batchSize})
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		if len(jobs) == 0 {
			break
		}

		for _, job := range jobs {
			if err := write(job); err != nil {
				return fmt.Errorf("failed to write job %d: %w", job.ID, err)
			}
			afterID = job.ID
			exported++
		}

		log.Debug("Export progress", zap.Int64("exported", exported))
	}

	if err := finish(); err != nil {
		return fmt.Errorf("failed to finalize output: %w", err)
	}

	log.Info("Export completed",
		zap.String("output", output),
		zap.Int64("jobs", exported),
		zap.Duration("duration", time.Since(start)))

	return nil
}

// showAuditStats prints audit trail and cache statistics.
func showAuditStats(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get audit stats: %w", err)
	}

	fmt.Printf("\n=== Audit Trail Statistics ===\n")
	fmt.Printf("Total Jobs:         %d\n", stats.TotalJobs)
	fmt.Printf("Total Findings:     %d\n", stats.TotalFindings)
	fmt.Printf("Cached Jobs:        %d\n", stats.CachedJobs)
	fmt.Printf("Avg Processing:     %.2f ms\n", stats.AvgProcessingMS)

	if cfg.Cache.Enabled {
		resultCache, err := cache.New(cfg.Cache, log.WithComponent("cache"))
		if err != nil {
			log.Warn("Result cache unavailable", zap.Error(err))
			return nil
		}
		defer resultCache.Close()

		cacheStats, err := resultCache.GetStats(ctx)
		if err == nil {
			fmt.Printf("\n=== Cache Statistics ===\n")
			fmt.Printf("Cache Hits:         %d\n", cacheStats.Hits)
			fmt.Printf("Cache Misses:       %d\n", cacheStats.Misses)
			fmt.Printf("Hit Rate:           %.1f%%\n", cacheStats.HitRate)
			fmt.Printf("Total Keys:         %d\n", cacheStats.TotalKeys)
			fmt.Printf("Memory Usage:       %.2f MB\n", float64(cacheStats.MemoryUsage)/1024/1024)
		}
	}

	return nil
}

// clearResultCache wipes the Redis result cache.
func clearResultCache(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if !cfg.Cache.Enabled {
		return fmt.Errorf("result cache is not enabled in configuration")
	}

	resultCache, err := cache.New(cfg.Cache, log.WithComponent("cache"))
	if err != nil {
		return fmt.Errorf("failed to connect to cache: %w", err)
	}
	defer resultCache.Close()

	if err := resultCache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	log.Info("Result cache cleared")
	return nil
}
