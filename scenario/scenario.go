// Package scenario describes simulator runs in YAML: the timer table, the
// starting rolling time and a timeline of Start/Stop calls.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"tickmux/core"
)

var (
	ErrEmpty         = errors.New("scenario is empty")
	ErrUnknownTimer  = errors.New("unknown timer")
	ErrDuplicateName = errors.New("duplicate timer name")
	ErrBadAction     = errors.New("action must either start or stop one timer")
	ErrDelayRange    = errors.New("delay out of range")
	ErrDuration      = errors.New("duration ends before the last action")
)

// DefaultDuration is the run length when a scenario gives none
const DefaultDuration = 512

// MissedEvent is the event id reserved for missed-deadline diagnostics.
// Timer i posts event i+1.
const MissedEvent core.EventID = 255

// Timer declares one slot
type Timer struct {
	Name    string `yaml:"name"`
	Restart uint8  `yaml:"restart"`
}

// Action is one foreground call at a simulated time
type Action struct {
	At    uint32 `yaml:"at"`
	Start string `yaml:"start,omitempty"`
	Stop  string `yaml:"stop,omitempty"`
	Delay uint8  `yaml:"delay,omitempty"`
}

// Scenario is a complete simulator run
type Scenario struct {
	Name         string   `yaml:"name"`
	Start        uint8    `yaml:"start"`
	Tolerance    uint8    `yaml:"tolerance"`
	Compensation uint8    `yaml:"compensation"`
	Diagnostics  *bool    `yaml:"diagnostics"`
	Duration     uint32   `yaml:"duration"`
	Timers       []Timer  `yaml:"timers"`
	Actions      []Action `yaml:"actions"`
}

// Parse decodes and validates a YAML scenario
func Parse(data []byte) (*Scenario, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("scenario: %w", ErrEmpty)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: decode: %w", err)
	}

	applyDefaults(&s)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return &s, nil
}

// LoadFile reads and parses a scenario file
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// applyDefaults fills in missing values and orders the timeline
func applyDefaults(s *Scenario) {
	if s.Name == "" {
		s.Name = "unnamed"
	}
	if s.Diagnostics == nil {
		on := true
		s.Diagnostics = &on
	}
	for i := range s.Timers {
		if s.Timers[i].Name == "" {
			s.Timers[i].Name = fmt.Sprintf("t%d", i)
		}
	}
	sort.SliceStable(s.Actions, func(i, j int) bool { return s.Actions[i].At < s.Actions[j].At })
	if s.Duration == 0 {
		s.Duration = DefaultDuration
		if n := len(s.Actions); n > 0 && s.Actions[n-1].At >= s.Duration {
			s.Duration = s.Actions[n-1].At + DefaultDuration
		}
	}
}

// Validate checks the timeline against the timer table. The table itself
// is checked by core.TimerConfig.Validate.
func (s *Scenario) Validate() error {
	cfg := s.TimerConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(s.Timers) >= int(MissedEvent) {
		return core.ErrTooManyTimers
	}

	names := make(map[string]bool, len(s.Timers))
	for _, t := range s.Timers {
		if names[t.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateName, t.Name)
		}
		names[t.Name] = true
	}

	for i, a := range s.Actions {
		if (a.Start == "") == (a.Stop == "") {
			return fmt.Errorf("action %d: %w", i, ErrBadAction)
		}
		name := a.Start + a.Stop
		if !names[name] {
			return fmt.Errorf("action %d: %w: %s", i, ErrUnknownTimer, name)
		}
		if a.Start != "" && (a.Delay == 0 || a.Delay > core.MaxTimerDelay) {
			return fmt.Errorf("action %d: %w: %d", i, ErrDelayRange, a.Delay)
		}
		if a.At > s.Duration {
			return fmt.Errorf("action %d at %d: %w", i, a.At, ErrDuration)
		}
	}
	return nil
}

// TimerConfig builds the scheduler configuration
func (s *Scenario) TimerConfig() core.TimerConfig {
	cfg := core.TimerConfig{
		Tolerance:    s.Tolerance,
		Compensation: s.Compensation,
		Diagnostics:  s.Diagnostics != nil && *s.Diagnostics,
		MissedEvent:  MissedEvent,
	}
	for i, t := range s.Timers {
		cfg.Timers = append(cfg.Timers, core.TimerDecl{
			Name:    t.Name,
			Event:   core.EventID(i + 1),
			Restart: t.Restart,
		})
	}
	return cfg
}

// slot returns the index of the named timer
func (s *Scenario) slot(name string) core.TimerSlot {
	for i, t := range s.Timers {
		if t.Name == name {
			return core.TimerSlot(i)
		}
	}
	panic("scenario: timer not validated: " + name)
}
