// Package app wires the configured store, engine, sinks and publishers into
// a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/ridematch/api/match"
	"github.com/kilianp07/ridematch/config"
	"github.com/kilianp07/ridematch/core/events"
	"github.com/kilianp07/ridematch/core/matching"
	"github.com/kilianp07/ridematch/core/matchlog"
	coremetrics "github.com/kilianp07/ridematch/core/metrics"
	coremon "github.com/kilianp07/ridematch/core/monitoring"
	"github.com/kilianp07/ridematch/core/publish"
	"github.com/kilianp07/ridematch/core/repository"
	"github.com/kilianp07/ridematch/infra/logger"
	"github.com/kilianp07/ridematch/infra/metrics"
	"github.com/kilianp07/ridematch/infra/monitoring"
	"github.com/kilianp07/ridematch/internal/eventbus"

	// Backends register themselves with the factories.
	_ "github.com/kilianp07/ridematch/infra/kafka"
	_ "github.com/kilianp07/ridematch/infra/mqtt"
	_ "github.com/kilianp07/ridematch/infra/store"
	_ "github.com/kilianp07/ridematch/infra/store/postgres"
	_ "github.com/kilianp07/ridematch/infra/store/redis"
	_ "github.com/kilianp07/ridematch/infra/store/sqlite"
	_ "github.com/kilianp07/ridematch/infra/store/surreal"
	_ "github.com/kilianp07/ridematch/infra/webhook"
)

const (
	busBuffer      = 64
	publishTimeout = 10 * time.Second
)

// Service owns the matching engine and the components fed by its events.
type Service struct {
	Engine *matching.Engine
	Store  repository.Store
	// MatchLog is nil when the match log is disabled.
	MatchLog matchlog.Store

	cfg        *config.Config
	bus        *eventbus.Bus
	sink       coremetrics.MetricsSink
	publishers []publish.Publisher
	monitor    coremon.Monitor
	log        logger.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	consumers []<-chan eventbus.Event
	collector <-chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New creates a Service from the configuration. Event consumers start
// immediately so one-shot commands also log and publish their matches.
func New(cfg *config.Config) (s *Service, err error) {
	s = &Service{cfg: cfg, log: logger.New("service")}
	defer func() {
		if err != nil {
			_ = s.Close()
			s = nil
		}
	}()

	if s.monitor, err = monitoring.NewSentryMonitor(cfg.Sentry); err != nil {
		return s, fmt.Errorf("sentry: %w", err)
	}
	if s.Store, err = repository.NewStore(cfg.Store); err != nil {
		return s, fmt.Errorf("store: %w", err)
	}
	if s.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
		return s, fmt.Errorf("metrics: %w", err)
	}
	if s.MatchLog, err = NewMatchLog(cfg.MatchLog); err != nil {
		return s, fmt.Errorf("match log: %w", err)
	}
	if s.publishers, err = publish.New(cfg.Publisher.Publishers); err != nil {
		return s, fmt.Errorf("publisher: %w", err)
	}

	s.bus = eventbus.NewWithBuffer(busBuffer)
	s.Engine, err = matching.NewEngine(s.Store, cfg.Matching,
		matching.WithLogger(logger.New("matching")),
		matching.WithMetrics(s.sink),
		matching.WithBus(s.bus),
		matching.WithMonitor(s.monitor),
	)
	if err != nil {
		return s, fmt.Errorf("matching engine: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.collector = metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.MatchLog != nil {
		s.consume(s.bus.Subscribe(), s.appendLog)
	}
	if len(s.publishers) > 0 {
		s.consume(s.bus.Subscribe(), s.publish)
	}
	return s, nil
}

// NewMatchLog opens the match log store selected by cfg. It returns nil for
// the "none" backend.
func NewMatchLog(cfg config.MatchLogConfig) (matchlog.Store, error) {
	switch cfg.Backend {
	case "none":
		return nil, nil
	case "sqlite":
		st, err := matchlog.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "jsonl", "":
		st, err := matchlog.NewJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown match log backend %s", cfg.Backend)
	}
}

// consume drains sub until it is unsubscribed or the bus is closed.
func (s *Service) consume(sub <-chan eventbus.Event, handle func(events.MatchCompleted)) {
	s.consumers = append(s.consumers, sub)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for ev := range sub {
			if e, ok := ev.(events.MatchCompleted); ok {
				handle(e)
			}
		}
	}()
}

func (s *Service) appendLog(ev events.MatchCompleted) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.MatchLog.Append(ctx, matchlog.FromEvent(ev)); err != nil {
		s.log.Errorf("match log append %s: %v", ev.MatchID, err)
	}
}

func (s *Service) publish(ev events.MatchCompleted) {
	for _, p := range s.publishers {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := p.Publish(ctx, ev)
		cancel()
		if err != nil {
			s.log.Errorf("publish %s to %s: %v", ev.MatchID, p.Name(), err)
		}
		s.bus.Publish(events.MatchPublished{
			MatchID: ev.MatchID,
			RideID:  ev.RideID,
			Backend: p.Name(),
			Err:     err,
			Time:    time.Now(),
		})
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	return match.NewRouter(match.RouterConfig{
		Matcher: s.Engine,
		Logs:    s.MatchLog,
		Token:   s.cfg.HTTP.Token,
		Logger:  logger.New("http"),
	})
}

// Run serves the HTTP API and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.HTTP.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.HTTP.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.HTTP.WriteTimeoutSeconds) * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("http api listening on %s", s.cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close drains pending events and releases every resource. The consumers
// stop first so the MatchPublished events they emit still reach the
// collector before the bus closes.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.bus != nil {
			for _, sub := range s.consumers {
				s.bus.Unsubscribe(sub)
			}
		}
		s.wg.Wait()
		if s.bus != nil {
			s.bus.Close()
		}
		if s.collector != nil {
			<-s.collector
		}
		if s.cancel != nil {
			s.cancel()
		}
		for _, p := range s.publishers {
			errs = append(errs, p.Close())
		}
		if s.MatchLog != nil {
			errs = append(errs, s.MatchLog.Close())
		}
		if c, ok := s.sink.(interface{ Close() }); ok {
			c.Close()
		}
		if s.Store != nil {
			errs = append(errs, s.Store.Close())
		}
		if s.monitor != nil {
			s.monitor.Flush(2 * time.Second)
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
