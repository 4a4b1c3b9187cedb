package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/internal/crawler"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/logger"
	perrors "github.com/guilhermeLira011/monitor-preco-samsung-a05s/pkg/errors"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/services/publisher"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/services/sink"
)

// Status is the outcome of one store task
type Status string

const (
	StatusFound   Status = "found"
	StatusEmpty   Status = "empty"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
)

// Summary describes how a store task ended
type Summary struct {
	Store   string
	Status  Status
	Count   int
	Elapsed time.Duration
	Err     error
}

// Message is the payload published for every persisted listing
type Message struct {
	RunID string `json:"run_id"`
	sink.Record
}

// Worker runs every store scraper under its own time budget
type Worker struct {
	scrapers     []crawler.Scraper
	sink         *sink.Sink
	publisher    publisher.Publisher
	storeTimeout time.Duration
	maxParallel  int
	runID        string
	log          *logger.Logger
}

// NewWorker creates a new worker. pub may be nil to disable publishing.
func NewWorker(
	scrapers []crawler.Scraper,
	out *sink.Sink,
	pub publisher.Publisher,
	storeTimeout time.Duration,
	maxParallel int,
) *Worker {
	if maxParallel < 1 {
		maxParallel = 1
	}
	runID := uuid.NewString()
	return &Worker{
		scrapers:     scrapers,
		sink:         out,
		publisher:    pub,
		storeTimeout: storeTimeout,
		maxParallel:  maxParallel,
		runID:        runID,
		log:          logger.ForComponent("worker").WithField("run_id", runID),
	}
}

// RunID returns the identifier attached to this worker's logs and messages
func (w *Worker) RunID() string {
	return w.runID
}

// Run executes every scraper and returns one summary per scraper, in the
// order the scrapers were given. A failing or slow store never stops the
// others.
func (w *Worker) Run(ctx context.Context) []Summary {
	summaries := make([]Summary, len(w.scrapers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.maxParallel)

	for i, s := range w.scrapers {
		i, s := i, s
		g.Go(func() error {
			summaries[i] = w.runStore(gctx, s)
			return nil
		})
	}
	// tasks never return errors
	_ = g.Wait()

	counts := make(map[Status]int)
	for _, s := range summaries {
		counts[s.Status]++
	}
	w.log.Info().
		Int("stores", len(summaries)).
		Int("found", counts[StatusFound]).
		Int("empty", counts[StatusEmpty]).
		Int("failed", counts[StatusFailed]).
		Int("timeout", counts[StatusTimeout]).
		Msg("Run finished")
	return summaries
}

// runStore runs one scraper within the store budget and emits its result
func (w *Worker) runStore(ctx context.Context, s crawler.Scraper) (summary Summary) {
	store := s.GetStore().String()
	log := w.log.WithField("store", store)
	start := time.Now()
	summary = Summary{Store: store}

	defer func() {
		if r := recover(); r != nil {
			summary.Status = StatusFailed
			summary.Err = fmt.Errorf("panic: %v", r)
			log.Error().Interface("panic", r).Msg("Store task panicked")
			w.sink.Failed(store, summary.Err)
		}
		summary.Elapsed = time.Since(start)
	}()

	w.sink.Announce(store)

	result, err := w.runWithBudget(ctx, s)
	if err != nil {
		if perrors.IsType(err, perrors.ErrorTypeTimeout) {
			summary.Status = StatusTimeout
			summary.Err = err
			log.Warn().Err(err).Msg("Store skipped")
			w.sink.TimedOut(store, w.storeTimeout)
			return summary
		}
		summary.Status = StatusFailed
		summary.Err = err
		log.Error().Err(err).Msg("Store task failed")
		w.sink.Failed(store, err)
		return summary
	}

	report, err := w.sink.Emit(result)
	if err != nil {
		summary.Status = StatusFailed
		summary.Err = err
		log.Error().Err(err).Msg("Failed to save results")
		w.sink.Failed(store, err)
		return summary
	}

	summary.Count = report.Found
	summary.Status = StatusEmpty
	if result.State == crawler.Found {
		summary.Status = StatusFound
		w.publish(ctx, store, sink.Top(result.Listings))
	}

	w.sink.Succeeded(store)
	return summary
}

// runWithBudget runs the scraper and gives up once the store budget expires.
// The scraper is handed the same deadline so it stops between terms.
func (w *Worker) runWithBudget(ctx context.Context, s crawler.Scraper) (crawler.Result, error) {
	store := s.GetStore().String()

	runCtx := ctx
	cancel := func() {}
	if w.storeTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, w.storeTimeout)
	}
	defer cancel()

	done := make(chan crawler.Result, 1)
	panicked := make(chan interface{}, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				panicked <- r
			}
		}()
		done <- s.Run(runCtx)
	}()

	select {
	case result := <-done:
		if runCtx.Err() != nil {
			return crawler.Result{}, w.budgetError(store, runCtx.Err())
		}
		return result, nil
	case r := <-panicked:
		panic(r)
	case <-runCtx.Done():
		return crawler.Result{}, w.budgetError(store, runCtx.Err())
	}
}

// budgetError tells an expired store budget apart from a cancelled run
func (w *Worker) budgetError(store string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return perrors.NewTimeout(store, w.storeTimeout)
	}
	return fmt.Errorf("%s run cancelled: %w", store, err)
}

// publish sends the persisted listings to the stream; failures are logged only
func (w *Worker) publish(ctx context.Context, store string, listings []crawler.Listing) {
	if w.publisher == nil {
		return
	}
	for _, l := range listings {
		data, err := json.Marshal(Message{RunID: w.runID, Record: sink.ToRecord(l)})
		if err != nil {
			logger.LogError("worker", err, "marshal listing for %s", store)
			continue
		}
		if err := w.publisher.Publish(ctx, store, data); err != nil {
			logger.LogError("worker", perrors.NewPublisher(store, "publish listing", err), "skipping remaining listings of %s", store)
			return
		}
	}
	w.log.Debug().Str("store", store).Int("listings", len(listings)).Msg("Listings published")
}
