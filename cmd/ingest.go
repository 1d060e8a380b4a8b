package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/insanerask77/tienda-perfumes/internal/cache"
	"github.com/insanerask77/tienda-perfumes/internal/pipeline"
	"github.com/insanerask77/tienda-perfumes/internal/resilience"
	"github.com/insanerask77/tienda-perfumes/internal/source"
	"github.com/insanerask77/tienda-perfumes/internal/store"
)

var (
	ingestTerms       []string
	ingestTermsFile   string
	ingestConcurrency int
	ingestCachePath   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion pass over the configured search terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		terms, err := resolveTerms(ingestTerms, ingestTermsFile, cfg.Ingest.TermsFile)
		if err != nil {
			return err
		}

		st := store.NewPocketBase(cfg.Store.BaseURL,
			store.WithToken(cfg.Store.Token),
			store.WithCollections(cfg.Store.PerfumeCollection, cfg.Store.EquivalenceCollection),
		)
		defer func() { _ = st.Close() }()

		// Backend unreachable at startup is the one unrecoverable error.
		if err := st.Health(ctx); err != nil {
			return eris.Wrap(err, "record store unreachable")
		}

		retryCfg := resilience.DefaultRetryConfig()
		if cfg.Source.MaxRetries > 0 {
			retryCfg.MaxAttempts = cfg.Source.MaxRetries
		}
		src := source.NewClient(
			source.WithBaseURL(cfg.Source.BaseURL),
			source.WithSearchPath(cfg.Source.SearchPath),
			source.WithUserAgent(cfg.Source.UserAgent),
			source.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.Source.TimeoutSecs) * time.Second,
			}),
			source.WithRateLimit(rate.Limit(cfg.Source.RatePerSec), cfg.Source.Burst),
			source.WithRetry(retryCfg),
		)

		var pc *cache.PageCache
		cachePath := cfg.Cache.Path
		if cmd.Flags().Changed("cache") {
			cachePath = ingestCachePath
		}
		if cachePath != "" {
			pc, err = cache.Open(cachePath)
			if err != nil {
				zap.L().Warn("page cache unavailable, fetching everything", zap.Error(err))
				pc = nil
			} else {
				defer func() { _ = pc.Close() }()
				if n, err := pc.Purge(ctx); err == nil && n > 0 {
					zap.L().Debug("purged expired cache entries", zap.Int("count", n))
				}
			}
		}

		concurrency := cfg.Ingest.Concurrency
		if ingestConcurrency > 0 {
			concurrency = ingestConcurrency
		}

		ing := pipeline.New(src, st, pc, pipeline.Options{
			Concurrency:           concurrency,
			PreferFullDescription: cfg.Ingest.PreferFullDescription,
			PrecheckTitles:        cfg.Ingest.PrecheckTitles,
			CacheTTL:              time.Duration(cfg.Cache.TTLHours) * time.Hour,
		})

		_, err = ing.Run(ctx, terms)
		if err != nil && context.Cause(ctx) != nil {
			// Interrupted runs still reported their partial summary; item
			// failures never make the exit status non-zero.
			zap.L().Warn("run interrupted", zap.Error(err))
			return nil
		}
		return err
	},
}

func init() {
	ingestCmd.Flags().StringArrayVar(&ingestTerms, "term", nil, "search term to ingest (repeatable, overrides the terms file)")
	ingestCmd.Flags().StringVar(&ingestTermsFile, "terms-file", "", "yaml file with a 'terms' list")
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", 0, "parallel term workers (0 = config default)")
	ingestCmd.Flags().StringVar(&ingestCachePath, "cache", "", "detail-page cache path (empty disables caching)")
	rootCmd.AddCommand(ingestCmd)
}
