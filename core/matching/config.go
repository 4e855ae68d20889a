package matching

import (
	"fmt"
	"runtime"
	"time"

	"github.com/kilianp07/ridematch/core/schedule"
)

// Config defines matching related settings.
type Config struct {
	// Workers bounds the number of drivers evaluated concurrently.
	Workers               int `json:"workers"`
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
	// EnforceWeeklyAvailability rejects rides outside a driver's weekly slots.
	EnforceWeeklyAvailability bool `json:"enforce_weekly_availability"`
	// Timezone is the IANA zone used for ride dates and week bounds. Empty
	// means the server local zone.
	Timezone string `json:"timezone"`
	// ScheduleOffsetHours is the fixed UTC offset weekly schedules are written in.
	ScheduleOffsetHours *float64 `json:"schedule_offset_hours"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = 10
	}
	if c.ScheduleOffsetHours == nil {
		h := schedule.DefaultZoneOffset.Hours()
		c.ScheduleOffsetHours = &h
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("matching: workers must be positive")
	}
	if c.ScheduleOffsetHours != nil && (*c.ScheduleOffsetHours < -14 || *c.ScheduleOffsetHours > 14) {
		return fmt.Errorf("matching: schedule_offset_hours out of range: %v", *c.ScheduleOffsetHours)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("matching: timezone: %w", err)
	}
	return loc, nil
}

// ScheduleZone returns the fixed zone weekly schedules are interpreted in.
func (c Config) ScheduleZone() *time.Location {
	if c.ScheduleOffsetHours == nil {
		return schedule.DefaultZone
	}
	return schedule.FixedZone(time.Duration(*c.ScheduleOffsetHours * float64(time.Hour)))
}

// RequestTimeout returns the per request deadline.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
