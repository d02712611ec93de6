package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/legislation-tracker/internal/tracker"
)

// DefaultJurisdictionDelay is the pause between consecutive jurisdictions.
const DefaultJurisdictionDelay = time.Second

// ErrMissingCredential is returned when no provider API key is configured.
var ErrMissingCredential = errors.New("collector: LEGISCAN_API_KEY is not set")

// CredentialChecker reports whether provider credentials are available.
type CredentialChecker interface {
	HasCredential() bool
}

// SingleFetcher collects one jurisdiction.
type SingleFetcher interface {
	Fetch(ctx context.Context, j tracker.Jurisdiction) FetchResult
}

// Collector runs a SingleFetcher over many jurisdictions, sequentially.
type Collector struct {
	credentials CredentialChecker
	fetcher     SingleFetcher
	pauser      tracker.Pauser
	delay       time.Duration
	logger      *zap.Logger
}

// New builds a Collector.
func New(
	credentials CredentialChecker,
	fetcher SingleFetcher,
	pauser tracker.Pauser,
	delay time.Duration,
	logger *zap.Logger,
) *Collector {
	if pauser == nil {
		pauser = TimerPauser{}
	}
	if delay < 0 {
		delay = DefaultJurisdictionDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		credentials: credentials,
		fetcher:     fetcher,
		pauser:      pauser,
		delay:       delay,
		logger:      logger.Named("collector"),
	}
}

// Collect fetches every jurisdiction in order and concatenates the results.
// It checks credentials before any request and stops early when ctx is done.
func (c *Collector) Collect(ctx context.Context, jurisdictions []tracker.Jurisdiction) ([]tracker.Bill, error) {
	if c.credentials == nil || !c.credentials.HasCredential() {
		return nil, ErrMissingCredential
	}

	bills := []tracker.Bill{}
	var fetched, filtered, failed int
	for i, j := range jurisdictions {
		if i > 0 {
			c.pauser.Pause(ctx, c.delay)
		}
		if err := ctx.Err(); err != nil {
			c.logger.Warn("collection interrupted",
				zap.Int("completed_jurisdictions", i),
				zap.Int("bills", len(bills)),
			)
			return nil, fmt.Errorf("collect jurisdictions: %w", err)
		}
		c.logger.Info("fetching jurisdiction",
			zap.String("jurisdiction", j.Code),
			zap.Int("index", i+1),
			zap.Int("total", len(jurisdictions)),
		)
		res := c.fetcher.Fetch(ctx, j)
		bills = append(bills, res.Bills...)
		fetched += res.Fetched
		filtered += res.Filtered
		failed += res.Failed
	}
	// A cancellation during the last jurisdiction ends its loop without an error.
	if err := ctx.Err(); err != nil {
		c.logger.Warn("collection interrupted",
			zap.Int("completed_jurisdictions", len(jurisdictions)),
			zap.Int("bills", len(bills)),
		)
		return nil, fmt.Errorf("collect jurisdictions: %w", err)
	}

	c.logger.Info("collection complete",
		zap.Int("jurisdictions", len(jurisdictions)),
		zap.Int("bills", len(bills)),
		zap.Int("fetched", fetched),
		zap.Int("filtered", filtered),
		zap.Int("failed", failed),
	)
	return bills, nil
}
