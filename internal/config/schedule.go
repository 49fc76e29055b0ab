package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/timeslot"
)

// HoursFile is the YAML shape of one business-hours block. Empty fields in a
// tenant block inherit from the default block.
type HoursFile struct {
	Open                string        `yaml:"open"`
	Close               string        `yaml:"close"`
	SlotIntervalMinutes int           `yaml:"slot_interval_minutes"`
	Timezone            string        `yaml:"timezone"`
	ClosedWeekday       string        `yaml:"closed_weekday"`
	Breaks              []BreakConfig `yaml:"breaks"`
}

// BreakConfig is a daily pause in HH:MM.
type BreakConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type scheduleFile struct {
	Default HoursFile            `yaml:"default"`
	Tenants map[string]HoursFile `yaml:"tenants"`
}

// Schedule resolves business hours per tenant.
type Schedule struct {
	def     domain.BusinessHours
	tenants map[domain.TenantID]domain.BusinessHours
}

var builtinHours = HoursFile{
	Open:                "09:00",
	Close:               "18:00",
	SlotIntervalMinutes: timeslot.DefaultIntervalMinutes,
	Timezone:            "UTC",
	Breaks:              []BreakConfig{{Start: "12:00", End: "13:00"}},
}

// DefaultSchedule returns the built-in hours used when no file is present.
func DefaultSchedule() *Schedule {
	hours, err := builtinHours.resolve()
	if err != nil {
		panic(err)
	}
	return &Schedule{def: hours, tenants: map[domain.TenantID]domain.BusinessHours{}}
}

// LoadSchedule reads the YAML schedule at path. A missing file yields the
// built-in defaults; ${ENV} placeholders are expanded before parsing.
func LoadSchedule(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultSchedule(), nil
		}
		return nil, err
	}
	return ParseSchedule([]byte(os.ExpandEnv(string(data))))
}

// ParseSchedule parses and validates schedule YAML.
func ParseSchedule(data []byte) (*Schedule, error) {
	var raw scheduleFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}

	base := builtinHours.merge(raw.Default)
	def, err := base.resolve()
	if err != nil {
		return nil, fmt.Errorf("default hours: %w", err)
	}

	sched := &Schedule{def: def, tenants: make(map[domain.TenantID]domain.BusinessHours, len(raw.Tenants))}
	for tenant, override := range raw.Tenants {
		hours, err := base.merge(override).resolve()
		if err != nil {
			return nil, fmt.Errorf("tenant %s hours: %w", tenant, err)
		}
		sched.tenants[domain.TenantID(tenant)] = hours
	}
	return sched, nil
}

// HoursFor returns the business hours of tenant.
func (s *Schedule) HoursFor(tenant domain.TenantID) domain.BusinessHours {
	if hours, ok := s.tenants[tenant]; ok {
		return hours
	}
	return s.def
}

func (h HoursFile) merge(override HoursFile) HoursFile {
	out := h
	if override.Open != "" {
		out.Open = override.Open
	}
	if override.Close != "" {
		out.Close = override.Close
	}
	if override.SlotIntervalMinutes != 0 {
		out.SlotIntervalMinutes = override.SlotIntervalMinutes
	}
	if override.Timezone != "" {
		out.Timezone = override.Timezone
	}
	if override.ClosedWeekday != "" {
		out.ClosedWeekday = override.ClosedWeekday
	}
	if override.Breaks != nil {
		out.Breaks = override.Breaks
	}
	return out
}

func (h HoursFile) resolve() (domain.BusinessHours, error) {
	open, err := timeslot.MinutesSinceStartOfDay(h.Open)
	if err != nil {
		return domain.BusinessHours{}, fmt.Errorf("open: %w", err)
	}
	closeAt, err := timeslot.MinutesSinceStartOfDay(h.Close)
	if err != nil {
		return domain.BusinessHours{}, fmt.Errorf("close: %w", err)
	}
	if closeAt < open {
		return domain.BusinessHours{}, fmt.Errorf("close %s is before open %s", h.Close, h.Open)
	}
	if h.SlotIntervalMinutes <= 0 {
		return domain.BusinessHours{}, fmt.Errorf("slot_interval_minutes must be positive, got %d", h.SlotIntervalMinutes)
	}

	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return domain.BusinessHours{}, fmt.Errorf("timezone: %w", err)
	}

	hours := domain.BusinessHours{
		Open:                h.Open,
		Close:               h.Close,
		SlotIntervalMinutes: h.SlotIntervalMinutes,
		Location:            loc,
	}

	if h.ClosedWeekday != "" {
		wd, err := parseWeekday(h.ClosedWeekday)
		if err != nil {
			return domain.BusinessHours{}, err
		}
		hours.ClosedWeekday = &wd
	}

	for _, b := range h.Breaks {
		if !timeslot.IsValidTimeFormat(b.Start) || !timeslot.IsValidTimeFormat(b.End) {
			return domain.BusinessHours{}, fmt.Errorf("break %s-%s: expected HH:MM", b.Start, b.End)
		}
		hours.Breaks = append(hours.Breaks, domain.BreakWindow{Start: b.Start, End: b.End})
	}
	return hours, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown closed_weekday %q", s)
}
