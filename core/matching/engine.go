// Package matching classifies the volunteer driver pool for a ride request.
package matching

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/ridematch/core/capacity"
	"github.com/kilianp07/ridematch/core/events"
	"github.com/kilianp07/ridematch/core/logger"
	"github.com/kilianp07/ridematch/core/metrics"
	"github.com/kilianp07/ridematch/core/model"
	"github.com/kilianp07/ridematch/core/monitoring"
	"github.com/kilianp07/ridematch/core/repository"
	"github.com/kilianp07/ridematch/core/timeframe"
	"github.com/kilianp07/ridematch/internal/eventbus"
)

// Engine runs match requests against a repository.
type Engine struct {
	repo    repository.Repository
	cfg     Config
	loc     *time.Location
	zone    *time.Location
	logger  logger.Logger
	metrics metrics.MetricsSink
	bus     eventbus.EventBus
	monitor monitoring.Monitor
	now     func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithMetrics sets the metrics sink.
func WithMetrics(s metrics.MetricsSink) Option { return func(e *Engine) { e.metrics = s } }

// WithBus publishes MatchCompleted and MatchFailed events on b.
func WithBus(b eventbus.EventBus) Option { return func(e *Engine) { e.bus = b } }

// WithMonitor reports recovered panics to m.
func WithMonitor(m monitoring.Monitor) Option { return func(e *Engine) { e.monitor = m } }

// WithClock overrides time.Now, used for durations only.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// NewEngine creates an engine. cfg is defaulted and validated.
func NewEngine(repo repository.Repository, cfg Config, opts ...Option) (*Engine, error) {
	if repo == nil {
		return nil, fmt.Errorf("matching: nil repository provided to NewEngine")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	e := &Engine{
		repo:    repo,
		cfg:     cfg,
		loc:     loc,
		zone:    cfg.ScheduleZone(),
		logger:  logger.Nop{},
		metrics: metrics.NopSink{},
		monitor: monitoring.NopMonitor{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Match classifies every volunteer for the ride identified by rideRef, which
// may be the ride id or uid. Errors wrap ErrRideNotFound, ErrRepository,
// ErrInternal or timeframe.ErrTimeframe.
func (e *Engine) Match(ctx context.Context, rideRef string) (rep *Report, err error) {
	start := e.now()
	ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout())
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = e.internalError(rideRef, r, debug.Stack())
			rep = nil
		}
		e.observe(rideRef, rep, err, e.now().Sub(start))
	}()
	return e.match(ctx, rideRef)
}

func (e *Engine) match(ctx context.Context, rideRef string) (*Report, error) {
	ride, err := e.fetchRide(ctx, rideRef)
	if err != nil {
		return nil, err
	}
	tf, err := timeframe.Compute(ride.Times, e.loc)
	if err != nil {
		return nil, fmt.Errorf("ride %s: %w", rideRef, err)
	}

	rep := &Report{
		MatchID:     uuid.NewString(),
		Available:   []model.MatchResult{},
		Unavailable: []model.MatchResult{},
		Warnings:    []string{},
	}
	rc := &rideContext{
		ride:            ride,
		tf:              tf,
		destinationTown: ride.DestinationTown,
		loc:             e.loc,
		zone:            e.zone,
		enforceSlots:    e.cfg.EnforceWeeklyAvailability,
	}
	if err := e.fetchParties(ctx, rc, rep); err != nil {
		return nil, err
	}

	bounds := capacity.WeekBounds(tf.Start, e.loc)
	weekRides, err := e.repo.FetchRidesInRange(ctx, bounds.Start, bounds.End)
	if err != nil {
		return nil, fmt.Errorf("%w: rides in range: %v", ErrRepository, err)
	}
	rc.counts = capacity.Count(weekRides, ride, bounds, e.loc)

	pool, err := e.repo.GetAllVolunteers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: volunteers: %v", ErrRepository, err)
	}
	evals, err := e.evaluatePool(ctx, rc, pool)
	if err != nil {
		return nil, err
	}

	var weekly []float64
	for _, ev := range evals {
		rep.SkippedEntries += ev.skipped
		if ev.result.Available {
			rep.Available = append(rep.Available, ev.result)
		} else {
			rep.Unavailable = append(rep.Unavailable, ev.result)
		}
		if ev.isDriver {
			weekly = append(weekly, float64(ev.result.WeeklyRides))
		}
		e.logger.Debugw("driver evaluated", map[string]any{
			"ride_id":     ride.ID,
			"driver_id":   ev.result.DriverID,
			"available":   ev.result.Available,
			"reason_code": ev.result.ReasonCode,
		})
	}
	rep.Success = true
	rep.Ride = summarize(ride, tf, rc)
	rep.Counts = countResults(resultsOf(evals))
	rep.Load = loadStats(weekly)
	e.logger.Infof("ride %s: %d available, %d unavailable", rideRef, rep.Counts.Available, rep.Counts.Unavailable)
	return rep, nil
}

func (e *Engine) fetchRide(ctx context.Context, ref string) (model.Ride, error) {
	ride, err := e.repo.GetRideByID(ctx, ref)
	if err == nil {
		return ride, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.Ride{}, fmt.Errorf("%w: ride %s: %v", ErrRepository, ref, err)
	}
	ride, err = e.repo.GetRideByUID(ctx, ref)
	if err == nil {
		return ride, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return model.Ride{}, fmt.Errorf("%w: %s", ErrRideNotFound, ref)
	}
	return model.Ride{}, fmt.Errorf("%w: ride %s: %v", ErrRepository, ref, err)
}

// fetchParties resolves the client and destination. Missing records degrade
// the report with a warning.
func (e *Engine) fetchParties(ctx context.Context, rc *rideContext, rep *Report) error {
	ride := rc.ride
	if ride.ClientRef == "" {
		rep.Warnings = append(rep.Warnings, "ride has no client; eligibility checks skipped")
	} else {
		c, err := e.repo.GetClientByReference(ctx, ride.ClientRef)
		switch {
		case err == nil:
			rc.client = &c
		case errors.Is(err, repository.ErrNotFound):
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("client %s not found; eligibility checks skipped", ride.ClientRef))
		default:
			return fmt.Errorf("%w: client %s: %v", ErrRepository, ride.ClientRef, err)
		}
	}
	if ride.DestinationRef != "" {
		d, err := e.repo.GetDestinationByID(ctx, ride.DestinationRef)
		switch {
		case err == nil:
			rc.dest = &d
			if d.Town != "" {
				rc.destinationTown = d.Town
			}
		case errors.Is(err, repository.ErrNotFound):
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("destination %s not found", ride.DestinationRef))
		default:
			return fmt.Errorf("%w: destination %s: %v", ErrRepository, ride.DestinationRef, err)
		}
	}
	for _, w := range rep.Warnings {
		e.logger.Warnf("ride %s: %s", ride.ID, w)
	}
	return nil
}

// evaluatePool evaluates drivers on a bounded worker pool. Each worker writes
// only its own slot of the result slice.
func (e *Engine) evaluatePool(ctx context.Context, rc *rideContext, pool []model.Volunteer) ([]evaluation, error) {
	evals := make([]evaluation, len(pool))
	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		once     sync.Once
		panicErr error
	)
	workers := e.cfg.Workers
	if workers > len(pool) {
		workers = len(pool)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					once.Do(func() { panicErr = e.internalError(rc.ride.ID, r, debug.Stack()) })
					// keep draining so the producer never blocks
					for range jobs {
					}
				}
			}()
			for i := range jobs {
				evals[i] = evaluate(rc, pool[i])
			}
		}()
	}
	var ctxErr error
feed:
	for i := range pool {
		select {
		case jobs <- i:
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	if panicErr != nil {
		return nil, panicErr
	}
	if ctxErr != nil {
		return nil, fmt.Errorf("evaluating drivers: %w", ctxErr)
	}
	return evals, nil
}

func (e *Engine) internalError(rideRef string, r any, stack []byte) error {
	pe := &monitoring.PanicError{Value: r, Stack: stack}
	e.monitor.CaptureException(pe, map[string]string{"component": "matching", "ride": rideRef})
	e.logger.Errorf("ride %s: recovered %v", rideRef, r)
	return fmt.Errorf("%w: %v", ErrInternal, pe)
}

// observe records metrics and publishes the outcome.
func (e *Engine) observe(rideRef string, rep *Report, err error, d time.Duration) {
	now := e.now()
	if err != nil {
		kind := FailureKind(err)
		matchRequests.WithLabelValues(kind).Inc()
		matchDuration.WithLabelValues(kind).Observe(d.Seconds())
		if fr, ok := e.metrics.(metrics.MatchFailureRecorder); ok {
			if mErr := fr.RecordMatchFailure(metrics.MatchFailure{RideID: rideRef, Kind: kind, Time: now}); mErr != nil {
				e.logger.Errorf("metrics error: %v", mErr)
			}
		}
		if e.bus != nil {
			e.bus.Publish(events.MatchFailed{RideID: rideRef, Kind: kind, Err: err, Time: now})
		}
		return
	}
	matchRequests.WithLabelValues("success").Inc()
	matchDuration.WithLabelValues("success").Observe(d.Seconds())
	skippedEntries.Add(float64(rep.SkippedEntries))
	results := rep.Results()
	for _, r := range results {
		driversEvaluated.WithLabelValues(r.ReasonCode).Inc()
	}
	if err := e.metrics.RecordMatch(metrics.MatchRecord{
		MatchID:     rep.MatchID,
		RideID:      rep.Ride.ID,
		Available:   rep.Counts.Available,
		Unavailable: rep.Counts.Unavailable,
		Reasons:     rep.Counts.ByReason,
		Warnings:    len(rep.Warnings),
		Skipped:     rep.SkippedEntries,
		Duration:    d,
		Time:        now,
	}); err != nil {
		e.logger.Errorf("metrics error: %v", err)
	}
	if dr, ok := e.metrics.(metrics.DriverDecisionRecorder); ok {
		decisions := make([]metrics.DriverDecision, 0, len(results))
		for _, r := range results {
			decisions = append(decisions, metrics.DriverDecision{
				MatchID:     rep.MatchID,
				RideID:      rep.Ride.ID,
				DriverID:    r.DriverID,
				Available:   r.Available,
				ReasonCode:  r.ReasonCode,
				WeeklyRides: r.WeeklyRides,
				Time:        now,
			})
		}
		if err := dr.RecordDriverDecisions(decisions); err != nil {
			e.logger.Errorf("decision metrics error: %v", err)
		}
	}
	if e.bus != nil {
		e.bus.Publish(events.MatchCompleted{
			MatchID:  rep.MatchID,
			RideID:   rep.Ride.ID,
			Results:  results,
			Warnings: rep.Warnings,
			Skipped:  rep.SkippedEntries,
			Duration: d,
			Time:     now,
		})
	}
}

func summarize(r model.Ride, tf model.RideTimeframe, rc *rideContext) RideSummary {
	s := RideSummary{
		ID:              r.ID,
		UID:             r.UID,
		ClientRef:       r.ClientRef,
		DestinationRef:  r.DestinationRef,
		DestinationTown: rc.destinationTown,
		TripType:        tf.TripType.String(),
		Timeframe:       tf,
	}
	if s.ID == "" {
		s.ID = r.UID
	}
	if rc.client != nil {
		s.ClientName = rc.client.FullName()
	}
	return s
}

func resultsOf(evals []evaluation) []model.MatchResult {
	out := make([]model.MatchResult, len(evals))
	for i, ev := range evals {
		out[i] = ev.result
	}
	return out
}
