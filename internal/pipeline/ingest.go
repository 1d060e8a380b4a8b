// Package pipeline orchestrates ingestion: search-term iteration,
// candidate discovery, detail-page extraction, and idempotent persistence.
// Failures stay inside their boundary: a bad equivalence never aborts its
// perfume, a bad perfume never aborts its term, a bad term never aborts
// the run.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/insanerask77/tienda-perfumes/internal/cache"
	"github.com/insanerask77/tienda-perfumes/internal/extract"
	"github.com/insanerask77/tienda-perfumes/internal/model"
	"github.com/insanerask77/tienda-perfumes/internal/source"
	"github.com/insanerask77/tienda-perfumes/internal/store"
)

// Options are the pipeline behavior flags. The old scripts diverged on
// these; here they are explicit knobs on one code path.
type Options struct {
	// Concurrency bounds the number of terms ingested in parallel.
	Concurrency int

	// PreferFullDescription uses the detail page's description over the
	// inline search snippet when the detail fetch succeeds.
	PreferFullDescription bool

	// PrecheckTitles looks up the title before creating, skipping known
	// perfumes without a detail fetch. The backend's uniqueness constraint
	// still guards the race between concurrent runs either way.
	PrecheckTitles bool

	// CacheTTL is how long fetched detail pages stay valid in the local
	// cache. Ignored when no cache is configured.
	CacheTTL time.Duration
}

// Ingestor runs the ingestion pipeline over a term list.
type Ingestor struct {
	source source.Client
	store  store.Store
	cache  *cache.PageCache // nil disables caching
	opts   Options
}

// New creates an Ingestor. cache may be nil.
func New(src source.Client, st store.Store, pc *cache.PageCache, opts Options) *Ingestor {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	return &Ingestor{source: src, store: st, cache: pc, opts: opts}
}

// Run ingests every term and returns the run with its summary. The run
// always completes; per-term failures are counted, not raised. On context
// cancellation no new terms are scheduled and ctx.Err is returned
// alongside the partial summary.
func (in *Ingestor) Run(ctx context.Context, terms []string) (*model.Run, error) {
	run := model.NewRun(terms)
	zap.L().Info("ingestion run starting",
		zap.String("run_id", run.ID),
		zap.Int("terms", len(terms)),
		zap.Int("concurrency", in.opts.Concurrency),
	)

	var g errgroup.Group
	g.SetLimit(in.opts.Concurrency)

	for _, term := range terms {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			in.ingestTerm(ctx, term, run.Summary)
			return nil
		})
	}
	_ = g.Wait()

	run.FinishedAt = time.Now().UTC()
	zap.L().Info("ingestion run finished",
		append([]zap.Field{
			zap.String("run_id", run.ID),
			zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)),
		}, run.Summary.Fields()...)...,
	)
	return run, ctx.Err()
}

func (in *Ingestor) ingestTerm(ctx context.Context, term string, sum *model.Summary) {
	log := zap.L().With(zap.String("term", term))

	candidates, err := in.source.Search(ctx, term)
	if err != nil {
		sum.TermsFailed.Add(1)
		log.Warn("search failed, skipping term", zap.Error(err))
		return
	}
	log.Info("search returned candidates", zap.Int("count", len(candidates)))

	for _, cand := range candidates {
		if ctx.Err() != nil {
			return
		}
		in.ingestCandidate(ctx, cand, sum, log)
	}
}

func (in *Ingestor) ingestCandidate(ctx context.Context, cand model.Candidate, sum *model.Summary, log *zap.Logger) {
	title := strings.TrimSpace(cand.Title)
	if title == "" {
		log.Debug("skipping candidate without title", zap.String("url", cand.URL))
		return
	}
	log = log.With(zap.String("title", title))

	if in.opts.PrecheckTitles {
		existing, err := in.store.FindPerfumeByTitle(ctx, title)
		switch {
		case err != nil:
			// A broken lookup must not lose the perfume; the create below
			// still hits the backend's uniqueness constraint.
			log.Warn("title precheck failed, relying on backend conflict", zap.Error(err))
		case existing != nil:
			sum.PerfumesSkipped.Add(1)
			log.Info("perfume already exists, skipping", zap.String("perfume_id", existing.ID))
			return
		}
	}

	html, fetchErr := in.fetchDetail(ctx, cand.URL)
	var doc *goquery.Document
	if fetchErr == nil {
		var parseErr error
		doc, parseErr = extract.Parse(html)
		if parseErr != nil {
			log.Warn("detail page unparseable, using inline fields", zap.Error(parseErr))
		}
	} else {
		log.Warn("detail fetch failed, using inline fields", zap.String("url", cand.URL), zap.Error(fetchErr))
	}

	draft := model.PerfumeDraft{
		Title:        title,
		Description:  cand.Desc,
		OriginalLink: cand.URL,
	}
	if thumb, ok := extract.Thumbnail(cand.ThumbHTML); ok {
		draft.Thumbnail = thumb
	}

	var pageNotes string
	if doc != nil {
		pageNotes, _ = extract.NotesHTML(doc)
	}
	if doc != nil && in.opts.PreferFullDescription {
		if pageNotes != "" {
			draft.Description = pageNotes
		} else if short, ok := extract.ShortDescription(doc); ok && short != "" {
			draft.Description = short
		}
	}

	perfume, err := in.store.CreatePerfume(ctx, draft)
	if err != nil {
		if store.IsConflict(err) {
			// Another run won the race; the backend is the final authority.
			sum.PerfumesSkipped.Add(1)
			log.Info("backend reports duplicate, skipping")
		} else {
			sum.PerfumesFailed.Add(1)
			log.Error("perfume create failed", zap.Error(err))
		}
		return
	}
	sum.PerfumesCreated.Add(1)
	log.Info("perfume created", zap.String("perfume_id", perfume.ID))

	// Without a detail page there is nothing to extract equivalences from.
	if doc == nil {
		return
	}

	gender, _ := extract.Gender(doc)
	for _, eq := range extract.Equivalences(doc) {
		if ctx.Err() != nil {
			return
		}
		eq.Gender = gender
		if eq.Description == "" {
			eq.Description = pageNotes
		}

		created, err := in.store.CreateEquivalence(ctx, perfume.ID, eq)
		if err != nil {
			sum.EquivalencesFailed.Add(1)
			log.Warn("equivalence create failed",
				zap.String("equivalence_title", eq.Title),
				zap.Error(err),
			)
			continue
		}
		sum.EquivalencesCreated.Add(1)
		log.Info("equivalence created",
			zap.String("equivalence_id", created.ID),
			zap.String("equivalence_title", eq.Title),
		)
	}
}

// fetchDetail goes through the page cache when one is configured. Cache
// errors degrade to a plain fetch.
func (in *Ingestor) fetchDetail(ctx context.Context, pageURL string) (string, error) {
	if in.cache != nil && pageURL != "" {
		html, ok, err := in.cache.Get(ctx, pageURL)
		if err != nil {
			zap.L().Warn("page cache read failed", zap.String("url", pageURL), zap.Error(err))
		} else if ok {
			return html, nil
		}
	}

	html, err := in.source.FetchDetail(ctx, pageURL)
	if err != nil {
		return "", err
	}

	if in.cache != nil {
		if err := in.cache.Put(ctx, pageURL, html, in.opts.CacheTTL); err != nil {
			zap.L().Warn("page cache write failed", zap.String("url", pageURL), zap.Error(err))
		}
	}
	return html, nil
}
