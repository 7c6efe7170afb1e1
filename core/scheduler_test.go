package core

import (
	"errors"
	"testing"
)

// fakeCounter is an AlarmCounter that only moves when told to
type fakeCounter struct {
	value   uint8
	enabled bool
	reloads []uint8
}

func (f *fakeCounter) Elapsed() uint8           { return f.value }
func (f *fakeCounter) Reload(value uint8)       { f.value = value; f.reloads = append(f.reloads, value) }
func (f *fakeCounter) EnableAlarm(enabled bool) { f.enabled = enabled }

// recorder is a Poster that remembers what was posted
type recorder struct {
	events []EventID
}

func (r *recorder) Post(id EventID) { r.events = append(r.events, id) }

func newTestMux(t *testing.T, cfg TimerConfig) (*TimerMux, *fakeCounter, *recorder) {
	t.Helper()
	hw := &fakeCounter{}
	rec := &recorder{}
	m, err := NewTimerMux(cfg, hw, rec)
	if err != nil {
		t.Fatalf("NewTimerMux failed: %v", err)
	}
	return m, hw, rec
}

func threeTimers() TimerConfig {
	return TimerConfig{
		Timers: []TimerDecl{
			{Name: "a", Event: 10},
			{Name: "b", Event: 11},
			{Name: "c", Event: 12, Restart: 10},
		},
	}
}

func TestNewTimerMuxRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  TimerConfig
		want error
	}{
		{"no timers", TimerConfig{}, ErrNoTimers},
		{"too many timers", TimerConfig{Timers: make([]TimerDecl, MaxTimers+1)}, ErrTooManyTimers},
		{"restart", TimerConfig{Timers: []TimerDecl{{Restart: 128}}}, ErrRestartRange},
		{"tolerance", TimerConfig{Timers: []TimerDecl{{}}, Tolerance: 200}, ErrToleranceRange},
		{"restart plus tolerance", TimerConfig{Timers: []TimerDecl{{}, {Restart: 127}}, Tolerance: 3}, ErrRestartRange},
		{"restart plus tolerance edge", TimerConfig{Timers: []TimerDecl{{Restart: 125}}, Tolerance: 3}, ErrRestartRange},
		{"compensation", TimerConfig{Timers: []TimerDecl{{}}, Compensation: 128}, ErrCompensationRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewTimerMux(tt.cfg, &fakeCounter{}, &recorder{})
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
			if m != nil {
				t.Error("Expected nil TimerMux on error")
			}
		})
	}
}

func TestNewTimerMuxAcceptsRestartWithinTolerance(t *testing.T) {
	cfg := TimerConfig{
		Timers:    []TimerDecl{{Name: "far"}, {Name: "slow", Restart: 124}},
		Tolerance: 3,
	}
	if _, err := NewTimerMux(cfg, &fakeCounter{}, &recorder{}); err != nil {
		t.Errorf("Restart 124 with tolerance 3 should be accepted: %v", err)
	}

	// One-shot slots never advance, so they are not bound by the tolerance
	cfg = TimerConfig{Timers: []TimerDecl{{Name: "once"}}, Tolerance: MaxTimerDelay}
	if _, err := NewTimerMux(cfg, &fakeCounter{}, &recorder{}); err != nil {
		t.Errorf("One-shot slot with full tolerance should be accepted: %v", err)
	}
}

func TestNewTimerMuxStartsIdle(t *testing.T) {
	m, hw, _ := newTestMux(t, threeTimers())

	if m.NumTimers() != 3 {
		t.Errorf("Expected 3 timers, got %d", m.NumTimers())
	}
	if m.AlarmEnabled() || hw.enabled {
		t.Error("Alarm should start disabled")
	}
	if _, ok := m.Owner(); ok {
		t.Error("No slot should own the alarm")
	}
	for i := 0; i < 3; i++ {
		if m.Armed(TimerSlot(i)) {
			t.Errorf("Slot %d should start disarmed", i)
		}
	}
}

func TestNowIsCheckpointPlusElapsed(t *testing.T) {
	m, hw, _ := newTestMux(t, threeTimers())

	hw.value = 200
	if now := m.Now(); now != 200 {
		t.Errorf("Expected now=200, got %d", now)
	}

	// Arming moves the checkpoint but not the rolling time
	m.Start(0, 100)
	if now := m.Now(); now != 200 {
		t.Errorf("Expected now=200 after commit, got %d", now)
	}
	if cp := m.Checkpoint(); cp != 44 {
		t.Errorf("Expected checkpoint 44 (200+100 mod 256), got %d", cp)
	}
	if hw.value != 200-44 {
		t.Errorf("Expected counter %d, got %d", uint8(200-44), hw.value)
	}
}

func TestStartFirstTimerAlwaysWins(t *testing.T) {
	m, hw, _ := newTestMux(t, threeTimers())

	m.Start(1, 50)

	owner, ok := m.Owner()
	if !ok || owner != 1 {
		t.Errorf("Expected owner 1, got %d (ok=%v)", owner, ok)
	}
	if !hw.enabled {
		t.Error("Hardware alarm should be enabled")
	}
	if len(hw.reloads) != 1 {
		t.Errorf("Expected 1 reload, got %d", len(hw.reloads))
	}
}

func TestElectionLaterCandidateLoses(t *testing.T) {
	m, hw, _ := newTestMux(t, threeTimers())

	m.Start(0, 5)
	m.Start(1, 9)

	owner, _ := m.Owner()
	if owner != 0 {
		t.Errorf("Expected slot 0 to keep the alarm, got %d", owner)
	}
	if len(hw.reloads) != 1 {
		t.Errorf("Losing election must not touch the hardware, got %d reloads", len(hw.reloads))
	}
	if !m.Armed(1) {
		t.Error("Losing slot must stay armed")
	}
}

func TestElectionSoonerCandidateWins(t *testing.T) {
	m, hw, _ := newTestMux(t, threeTimers())

	m.Start(0, 5)
	m.Start(1, 3)

	owner, _ := m.Owner()
	if owner != 1 {
		t.Errorf("Expected slot 1 to take the alarm, got %d", owner)
	}
	if m.Checkpoint() != 3 {
		t.Errorf("Expected checkpoint 3, got %d", m.Checkpoint())
	}
	if len(hw.reloads) != 2 {
		t.Errorf("Expected 2 reloads, got %d", len(hw.reloads))
	}
}

func TestElectionTieFavorsNewest(t *testing.T) {
	m, hw, _ := newTestMux(t, threeTimers())

	m.Start(0, 7)
	m.Start(2, 7)

	owner, _ := m.Owner()
	if owner != 2 {
		t.Errorf("Expected newest slot 2 to win the tie, got %d", owner)
	}
	if len(hw.reloads) != 2 {
		t.Errorf("Expected the tie to re-commit, got %d reloads", len(hw.reloads))
	}
}

func TestElectionAcrossWraparound(t *testing.T) {
	m, _, _ := newTestMux(t, threeTimers())

	// Deadline 4 (260 mod 256) is sooner than 10 (266 mod 256) and later
	// than 250 even though it is numerically smaller.
	m.fakeNow(t, 250)
	m.Start(0, 16)
	m.Start(1, 10)

	if owner, _ := m.Owner(); owner != 1 {
		t.Errorf("Expected slot 1 (deadline 4) to own the alarm, got %d", owner)
	}

	m.Start(2, 2)
	if owner, _ := m.Owner(); owner != 2 {
		t.Errorf("Expected slot 2 (deadline 252) to own the alarm, got %d", owner)
	}
}

// fakeNow moves the rolling clock to now without arming anything
func (m *TimerMux) fakeNow(t *testing.T, now uint8) {
	t.Helper()
	hw := m.hw.(*fakeCounter)
	hw.value = now - m.checkpoint
	if m.Now() != now {
		t.Fatalf("fakeNow: expected %d, got %d", now, m.Now())
	}
}

func TestStartRejectsBadDelay(t *testing.T) {
	for _, delay := range []uint8{0, 128, 255} {
		m, _, _ := newTestMux(t, threeTimers())
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Expected panic for delay %d", delay)
				}
			}()
			m.Start(0, delay)
		}()
	}
}

func TestStopDoesNotTouchHardware(t *testing.T) {
	m, hw, rec := newTestMux(t, threeTimers())

	m.Start(0, 20)
	m.Stop(0)

	if m.Armed(0) {
		t.Error("Slot 0 should be disarmed")
	}
	if len(hw.reloads) != 1 || !hw.enabled {
		t.Error("Stop must leave the installed alarm alone")
	}
	if len(rec.events) != 0 {
		t.Errorf("Stop must not post events, got %v", rec.events)
	}
}

func TestStopDisarmedIsNoop(t *testing.T) {
	m, hw, rec := newTestMux(t, threeTimers())

	m.Stop(1)
	m.Stop(1)

	if m.Armed(1) || len(hw.reloads) != 0 || len(rec.events) != 0 || hw.enabled {
		t.Error("Stop on a disarmed slot must change nothing")
	}
}

func TestInitDisarms(t *testing.T) {
	m, _, _ := newTestMux(t, threeTimers())

	m.Start(2, 30)
	m.Init(2)
	if _, armed := m.Deadline(2); armed {
		t.Error("Init should disarm the slot")
	}
}

func TestDeadlineZeroIsArmed(t *testing.T) {
	m, _, _ := newTestMux(t, threeTimers())

	m.fakeNow(t, 246)
	m.Start(0, 10)

	deadline, armed := m.Deadline(0)
	if !armed || deadline != 0 {
		t.Errorf("Expected armed deadline 0, got %d (armed=%v)", deadline, armed)
	}
}

func TestCommitReloadValue(t *testing.T) {
	cfg := threeTimers()
	cfg.Compensation = Timer0Compensation
	m, hw, _ := newTestMux(t, cfg)

	hw.value = 10
	m.Start(0, 50)

	var now, deadline uint8 = 10, 60
	want := now - deadline + Timer0Compensation
	if hw.reloads[0] != want {
		t.Errorf("Expected reload %d, got %d", want, hw.reloads[0])
	}
}

func TestMissedDeadlineDiagnostic(t *testing.T) {
	cfg := threeTimers()
	cfg.Compensation = Timer0Compensation
	cfg.Diagnostics = true
	cfg.MissedEvent = 99

	tests := []struct {
		delay  uint8
		missed bool
	}{
		{1, true},
		{2, true},
		{3, false},
		{127, false},
	}

	for _, tt := range tests {
		m, _, rec := newTestMux(t, cfg)
		m.Start(0, tt.delay)

		got := len(rec.events) == 1 && rec.events[0] == 99
		if got != tt.missed {
			t.Errorf("delay=%d: expected missed=%v, posted %v", tt.delay, tt.missed, rec.events)
		}
	}
}

func TestMissedDeadlineDisabledByDefault(t *testing.T) {
	cfg := threeTimers()
	cfg.Compensation = Timer0Compensation
	m, _, rec := newTestMux(t, cfg)

	m.Start(0, 1)
	if len(rec.events) != 0 {
		t.Errorf("Diagnostics off must not post, got %v", rec.events)
	}
}

func TestDumpState(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(s string) {})

	m, _, _ := newTestMux(t, threeTimers())
	m.Start(1, 16)
	m.DumpState()

	if len(lines) != 4 {
		t.Fatalf("Expected header + 3 slot lines, got %d: %v", len(lines), lines)
	}
	if lines[0] != "[TIMERS] now=0x00 checkpoint=0x10 owner=1" {
		t.Errorf("Unexpected header %q", lines[0])
	}
	if lines[2] != "[TIMERS] 1 b deadline=0x10 in=16" {
		t.Errorf("Unexpected slot line %q", lines[2])
	}
	if lines[1] != "[TIMERS] 0 a disarmed" {
		t.Errorf("Unexpected slot line %q", lines[1])
	}
}
