// Package pipeline orchestrates the daily scrape: it decides which clubs
// need fetching, drives extraction, and reconciles every outcome into the
// history store. A club is fetched at most once per calendar day no matter
// how many times the pipeline runs.
package pipeline

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fuelwatch-cli/internal/model"
	"github.com/sells-group/fuelwatch-cli/internal/scrape"
	"github.com/sells-group/fuelwatch-cli/internal/store"
)

const (
	dateFormat = "2006-01-02"
	timeFormat = "15:04:05"
)

// ErrAllCached signals that every configured club already has an attempt
// logged today, so the whole batch was skipped. Callers report from stored
// data instead.
var ErrAllCached = eris.New("pipeline: all clubs already scraped today")

// cachedFuelURL marks a result served from the store rather than a fetch.
const cachedFuelURL = "Cached data"

// noFuelCenter marks a club with no discoverable fuel page.
const noFuelCenter = "No Fuel Center"

// Options tunes orchestration behavior.
type Options struct {
	// MinDelay and MaxDelay bound the randomized politeness pause between
	// successive real fetches. Cache-skip clubs do not pause.
	MinDelay time.Duration
	MaxDelay time.Duration
}

// Orchestrator runs the scrape across the configured club set, one club at
// a time.
type Orchestrator struct {
	store   store.Store
	fetcher scrape.Fetcher
	clubs   []model.Club
	opts    Options

	// now and sleep are injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// New creates an Orchestrator over the given club set. The set is treated
// as immutable configuration.
func New(st store.Store, fetcher scrape.Fetcher, clubs []model.Club, opts Options) *Orchestrator {
	return &Orchestrator{
		store:   st,
		fetcher: fetcher,
		clubs:   clubs,
		opts:    opts,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// AllAttemptedToday reports whether every configured club already has an
// attempt logged for today's date.
func (o *Orchestrator) AllAttemptedToday(ctx context.Context) (bool, error) {
	today := o.now().Format(dateFormat)
	for _, club := range o.clubs {
		attempted, err := o.store.AlreadyAttempted(ctx, club.Name, today)
		if err != nil {
			return false, err
		}
		if !attempted {
			return false, nil
		}
	}
	return true, nil
}

// RunAll processes every configured club sequentially and returns the
// reconciled per-club results. If the whole batch is already covered by
// today's attempt log it returns ErrAllCached without touching any club.
// Per-club scrape failures never abort the batch; only store failures do.
func (o *Orchestrator) RunAll(ctx context.Context) ([]model.ClubResult, error) {
	allDone, err := o.AllAttemptedToday(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: batch skip check")
	}
	if allDone {
		return nil, ErrAllCached
	}

	stats, err := o.store.DailyStats(ctx, o.now().Format(dateFormat))
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: daily stats")
	}
	zap.L().Info("starting scrape run",
		zap.Int("clubs", len(o.clubs)),
		zap.Int("already_attempted_today", stats.ClubsAttempted),
	)

	results := make([]model.ClubResult, 0, len(o.clubs))
	for i, club := range o.clubs {
		zap.L().Info("processing club",
			zap.Int("index", i+1),
			zap.Int("total", len(o.clubs)),
			zap.String("club", club.Name),
		)

		result, fetched, err := o.processClub(ctx, club)
		if err != nil {
			return results, err
		}
		results = append(results, result)

		if fetched && i < len(o.clubs)-1 {
			o.pace(ctx)
		}
	}
	return results, nil
}

// processClub runs the per-club state machine. The returned bool reports
// whether a real fetch happened (it drives pacing). The returned error is
// reserved for store failures, which are fatal for the run.
func (o *Orchestrator) processClub(ctx context.Context, club model.Club) (model.ClubResult, bool, error) {
	today := o.now().Format(dateFormat)

	attempted, err := o.store.AlreadyAttempted(ctx, club.Name, today)
	if err != nil {
		return model.ClubResult{}, false, eris.Wrapf(err, "pipeline: skip check for %s", club.Name)
	}
	if attempted {
		result, err := o.cachedResult(ctx, club)
		return result, false, err
	}

	result, err := o.scrapeClub(ctx, club)
	return result, true, err
}

// cachedResult wraps the club's latest stored prices as its result without
// fetching or writing anything.
func (o *Orchestrator) cachedResult(ctx context.Context, club model.Club) (model.ClubResult, error) {
	zap.L().Info("club already scraped today, using cached data",
		zap.String("club", club.Name),
	)

	prices, err := o.store.LatestPrices(ctx, club.Name)
	if err != nil {
		return model.ClubResult{}, eris.Wrapf(err, "pipeline: cached prices for %s", club.Name)
	}
	if len(prices) == 0 {
		prices = []model.PricePair{{FuelType: model.NoCachedPrices, Price: model.NoValue}}
	}

	address := club.KnownAddress
	if address == "" {
		address = model.NoValue
	}

	return model.ClubResult{
		Club:      club,
		Address:   address,
		FuelURL:   cachedFuelURL,
		Prices:    prices,
		FromCache: true,
		Success:   hasRealPrices(prices),
	}, nil
}

// scrapeClub fetches the club profile and prices, then reconciles the
// outcome into the store: exactly one attempt row per real fetch, profile
// and observations written only on success, cache fallback on failure.
func (o *Orchestrator) scrapeClub(ctx context.Context, club model.Club) (model.ClubResult, error) {
	doc, fetchErr := o.fetcher.Fetch(ctx, club.URL)
	if fetchErr != nil {
		zap.L().Warn("club page fetch failed",
			zap.String("club", club.Name),
			zap.String("reason", scrape.FailureReason(fetchErr)),
		)
	}

	address := scrape.ExtractAddress(doc, club.KnownAddress)

	fuelURL := club.FuelURL
	if fuelURL == "" {
		fuelURL = scrape.FuelPageURL(doc, club.URL)
	}

	priceURL := fuelURL
	if priceURL == "" {
		priceURL = club.URL
	}

	var prices []model.PricePair
	priceDoc, priceErr := o.fetcher.Fetch(ctx, priceURL)
	if priceErr != nil {
		prices = []model.PricePair{{FuelType: model.FetchError, Price: scrape.FailureReason(priceErr)}}
	} else {
		prices = scrape.ExtractPrices(priceDoc)
	}

	now := o.now()
	date := now.Format(dateFormat)
	tm := now.Format(timeFormat)

	success := hasRealPrices(prices)

	result := model.ClubResult{
		Club:      club,
		Address:   address,
		FuelURL:   displayFuelURL(fuelURL),
		FromCache: false,
		Success:   success,
	}

	if success {
		profile := model.ClubProfile{
			Name:        club.Name,
			Address:     address,
			ClubURL:     club.URL,
			FuelURL:     displayFuelURL(fuelURL),
			CreatedDate: date + " " + tm,
			LastUpdated: date + " " + tm,
		}
		if err := o.store.UpsertProfile(ctx, profile); err != nil {
			return model.ClubResult{}, eris.Wrapf(err, "pipeline: upsert profile for %s", club.Name)
		}

		written, err := o.store.AppendPrices(ctx, club.Name, date, tm, prices, model.SourceScraped)
		if err != nil {
			return model.ClubResult{}, eris.Wrapf(err, "pipeline: append prices for %s", club.Name)
		}

		attempt := model.ScrapeAttempt{
			ClubName:    club.Name,
			ScrapedDate: date,
			ScrapedTime: tm,
			Success:     true,
			PricesFound: len(prices),
		}
		if err := o.store.RecordAttempt(ctx, attempt); err != nil {
			return model.ClubResult{}, eris.Wrapf(err, "pipeline: record attempt for %s", club.Name)
		}

		zap.L().Info("scraped club prices",
			zap.String("club", club.Name),
			zap.Int("prices", len(prices)),
			zap.Int("rows_written", written),
		)
		result.Prices = prices
		return result, nil
	}

	// Failure: fall back to cached prices when they exist. The attempt is
	// still recorded as failed since no fresh data was obtained.
	errMsg := "No valid prices found"
	if len(prices) == 1 && prices[0].FuelType == model.FetchError {
		errMsg = prices[0].Price
	}

	cached, err := o.store.LatestPrices(ctx, club.Name)
	if err != nil {
		return model.ClubResult{}, eris.Wrapf(err, "pipeline: fallback prices for %s", club.Name)
	}
	if len(cached) > 0 {
		zap.L().Info("using cached prices as fallback",
			zap.String("club", club.Name),
			zap.Int("prices", len(cached)),
		)
		result.Prices = cached
	} else {
		result.Prices = []model.PricePair{{FuelType: model.NoPricesAvailable, Price: model.NoValue}}
	}

	attempt := model.ScrapeAttempt{
		ClubName:     club.Name,
		ScrapedDate:  date,
		ScrapedTime:  tm,
		Success:      false,
		ErrorMessage: errMsg,
		PricesFound:  0,
	}
	if err := o.store.RecordAttempt(ctx, attempt); err != nil {
		return model.ClubResult{}, eris.Wrapf(err, "pipeline: record attempt for %s", club.Name)
	}

	zap.L().Warn("failed to get fresh prices",
		zap.String("club", club.Name),
		zap.String("reason", errMsg),
	)
	return result, nil
}

// hasRealPrices reports whether a price set counts as a successful
// extraction: non-empty and not a lone fetch-error or no-prices sentinel.
func hasRealPrices(prices []model.PricePair) bool {
	if len(prices) == 0 {
		return false
	}
	if len(prices) == 1 {
		switch prices[0].FuelType {
		case model.FetchError, model.NoPricesFound, model.NoCachedPrices, model.NoPricesAvailable:
			return false
		}
	}
	return true
}

// pace sleeps a randomized interval between real fetches.
func (o *Orchestrator) pace(ctx context.Context) {
	lo, hi := o.opts.MinDelay, o.opts.MaxDelay
	if lo <= 0 && hi <= 0 {
		return
	}
	if hi < lo {
		hi = lo
	}
	d := lo
	if hi > lo {
		d = lo + time.Duration(rand.Int64N(int64(hi-lo)))
	}
	o.sleep(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func displayFuelURL(fuelURL string) string {
	if fuelURL == "" {
		return noFuelCenter
	}
	return fuelURL
}
