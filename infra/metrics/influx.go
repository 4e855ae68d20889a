package metrics

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/ridematch/core/metrics"
	"github.com/kilianp07/ridematch/infra/logger"
)

// InfluxConfig locates an InfluxDB v2 bucket.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes match outcomes to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordMatch writes one match_completed point. Unavailable counts per
// reason code become reason_<code> fields.
func (s *InfluxSink) RecordMatch(rec coremetrics.MatchRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("match_completed").
		AddTag("ride_id", rec.RideID).
		AddTag("match_id", rec.MatchID).
		AddTag("component", "matching_engine").
		AddField("available", rec.Available).
		AddField("unavailable", rec.Unavailable).
		AddField("warnings", rec.Warnings).
		AddField("skipped_entries", rec.Skipped).
		AddField("duration_ms", rec.Duration.Milliseconds())
	codes := make([]string, 0, len(rec.Reasons))
	for c := range rec.Reasons {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	for _, c := range codes {
		p = p.AddField("reason_"+c, rec.Reasons[c])
	}
	return s.writeAPI.WritePoint(ctx, p.SetTime(rec.Time))
}

// RecordDriverDecisions writes one driver_decision point per driver.
func (s *InfluxSink) RecordDriverDecisions(decisions []coremetrics.DriverDecision) error {
	if len(decisions) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(decisions))
	for _, d := range decisions {
		code := d.ReasonCode
		if code == "" {
			code = "none"
		}
		points = append(points, write.NewPointWithMeasurement("driver_decision").
			AddTag("ride_id", d.RideID).
			AddTag("driver_id", d.DriverID).
			AddTag("reason_code", code).
			AddTag("available", strconv.FormatBool(d.Available)).
			AddField("match_id", d.MatchID).
			AddField("weekly_rides", d.WeeklyRides).
			SetTime(d.Time))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordMatchFailure writes a match_failure point.
func (s *InfluxSink) RecordMatchFailure(ev coremetrics.MatchFailure) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("match_failure").
		AddTag("kind", ev.Kind).
		AddTag("component", "matching_engine").
		AddField("ride_id", ev.RideID).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPublish writes a match_publish point.
func (s *InfluxSink) RecordPublish(ev coremetrics.PublishResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("match_publish").
		AddTag("backend", ev.Backend).
		AddField("success", ev.Success).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
