package collector

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/legislation-tracker/internal/legiscan"
	"github.com/JakeFAU/legislation-tracker/internal/metrics"
	"github.com/JakeFAU/legislation-tracker/internal/tracker"
)

// DefaultDetailDelay is the pause between consecutive detail requests.
const DefaultDetailDelay = 500 * time.Millisecond

// API is the subset of the LegiScan client the collector uses.
type API interface {
	HasCredential() bool
	Search(ctx context.Context, state string) (legiscan.SearchResult, error)
	Bill(ctx context.Context, id int) (legiscan.Bill, error)
}

// Classifier decides whether a bill is relevant.
type Classifier interface {
	IsRelevant(title, description string) bool
}

// Normalizer turns a detail record into a canonical bill.
type Normalizer interface {
	Normalize(code, name string, raw legiscan.Bill, hit legiscan.Hit) tracker.Bill
}

// FetchResult reports what one jurisdiction produced.
type FetchResult struct {
	Bills    []tracker.Bill
	Fetched  int
	Filtered int
	Failed   int
}

// JurisdictionFetcher collects the relevant bills of one jurisdiction.
type JurisdictionFetcher struct {
	api         API
	classifier  Classifier
	normalizer  Normalizer
	pauser      tracker.Pauser
	detailDelay time.Duration
	logger      *zap.Logger
}

// NewJurisdictionFetcher wires a JurisdictionFetcher. A nil pauser falls back
// to TimerPauser and a negative delay to DefaultDetailDelay.
func NewJurisdictionFetcher(
	api API,
	classifier Classifier,
	normalizer Normalizer,
	pauser tracker.Pauser,
	detailDelay time.Duration,
	logger *zap.Logger,
) *JurisdictionFetcher {
	if pauser == nil {
		pauser = TimerPauser{}
	}
	if detailDelay < 0 {
		detailDelay = DefaultDetailDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JurisdictionFetcher{
		api:         api,
		classifier:  classifier,
		normalizer:  normalizer,
		pauser:      pauser,
		detailDelay: detailDelay,
		logger:      logger.Named("jurisdiction"),
	}
}

// Fetch searches one jurisdiction and returns its relevant bills. It never
// fails: a failed search yields an empty result and failed detail requests
// are counted and skipped.
func (f *JurisdictionFetcher) Fetch(ctx context.Context, j tracker.Jurisdiction) FetchResult {
	log := f.logger.With(zap.String("jurisdiction", j.Code))
	result := FetchResult{Bills: []tracker.Bill{}}

	search, err := f.api.Search(ctx, j.Code)
	if err != nil {
		log.Warn("search failed", zap.String("name", j.Name), zap.Error(err))
		metrics.ObserveJurisdiction(metrics.OutcomeError)
		return result
	}
	hits := search.Hits()
	if len(hits) == 0 {
		log.Info("no bills found", zap.String("name", j.Name))
		metrics.ObserveJurisdiction(metrics.OutcomeEmpty)
		return result
	}
	log.Info("search returned bills", zap.String("name", j.Name), zap.Int("hits", len(hits)))

	for i, hit := range hits {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			f.pauser.Pause(ctx, f.detailDelay)
		}
		f.fetchDetail(ctx, j, hit, &result, log)
	}

	metrics.ObserveJurisdiction(metrics.OutcomeOK)
	log.Info("jurisdiction complete",
		zap.Int("kept", len(result.Bills)),
		zap.Int("fetched", result.Fetched),
		zap.Int("filtered", result.Filtered),
		zap.Int("failed", result.Failed),
	)
	return result
}

func (f *JurisdictionFetcher) fetchDetail(
	ctx context.Context,
	j tracker.Jurisdiction,
	hit legiscan.Hit,
	result *FetchResult,
	log *zap.Logger,
) {
	raw, err := f.api.Bill(ctx, int(hit.BillID))
	if err != nil {
		result.Failed++
		metrics.ObserveBill(j.Code, metrics.OutcomeFailed)
		log.Warn("bill detail failed",
			zap.Int("bill_id", int(hit.BillID)),
			zap.String("bill_number", hit.BillNumber),
			zap.Error(err),
		)
		return
	}
	result.Fetched++

	if !f.classifier.IsRelevant(raw.Title, raw.Description) {
		result.Filtered++
		metrics.ObserveBill(j.Code, metrics.OutcomeFiltered)
		log.Debug("bill filtered", zap.Int("bill_id", int(hit.BillID)))
		return
	}
	result.Bills = append(result.Bills, f.normalizer.Normalize(j.Code, j.Name, raw, hit))
	metrics.ObserveBill(j.Code, metrics.OutcomeKept)
}
