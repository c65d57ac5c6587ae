// Package worldstate rotates the shared virtual weather variable on a
// randomized 4-6 hour cycle and is the single writer of the world_state
// singleton. Modeled as a small actor (design doc Section 9): one
// goroutine owns the row, other goroutines send commands over a
// channel, grounded on the teacher's engine.Engine single-goroutine tick
// loop shape (internal/engine/tick.go) rather than a mutex-guarded
// struct. See design doc Section 4.C.
package worldstate

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/talgya/abydos/internal/store"
)

// Weather is one of the three virtual weather states.
type Weather string

const (
	Clear     Weather = "clear"
	Cloudy    Weather = "cloudy"
	Sandstorm Weather = "sandstorm"
)

var weights = map[Weather]float64{
	Clear:     0.55,
	Cloudy:    0.30,
	Sandstorm: 0.15,
}

// Snapshot is a read-only view of the current weather returned to callers.
type Snapshot struct {
	Weather             Weather
	ChangedAt           time.Time
	NextChangeAt        time.Time
}

// Announcer is the optional chat-transport collaborator used to
// broadcast a weather change. A nil Announcer disables announcements.
type Announcer interface {
	AnnounceWeatherChange(ctx context.Context, from, to Weather, nextChangeAt time.Time)
}

type setWeatherCmd struct {
	weather Weather
	reply   chan error
}

type snapshotCmd struct {
	reply chan Snapshot
}

// Scheduler owns world_state writes; every write funnels through its
// goroutine so at most one goroutine ever writes the row (design doc
// Section 4.C invariant). Other packages may read the row directly from
// the store.
type Scheduler struct {
	store     *store.Store
	announcer Announcer
	rng       *rand.Rand

	setCh  chan setWeatherCmd
	snapCh chan snapshotCmd
}

// New creates a Scheduler. Call Run in its own goroutine to start the
// 60s rotation loop.
func New(st *store.Store, announcer Announcer) *Scheduler {
	return &Scheduler{
		store:     st,
		announcer: announcer,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		setCh:     make(chan setWeatherCmd),
		snapCh:    make(chan snapshotCmd),
	}
}

// Run drives the 60s rotation loop (with an initial 0.5-3s jitter) until
// ctx is canceled. It is the only goroutine in the process allowed to
// call store.Store.SetWorldWeather.
func (s *Scheduler) Run(ctx context.Context) {
	jitter := time.Duration(500+s.rng.Intn(2500)) * time.Millisecond
	select {
	case <-time.After(jitter):
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.setCh:
			cmd.reply <- s.forceWeather(ctx, cmd.weather)
		case cmd := <-s.snapCh:
			cmd.reply <- s.readSnapshot()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) readSnapshot() Snapshot {
	ws, err := s.store.GetWorldState()
	if err != nil {
		slog.Warn("worldstate: read snapshot failed", "error", err)
		return Snapshot{}
	}
	return Snapshot{
		Weather:      Weather(ws.Weather),
		ChangedAt:    time.Unix(ws.WeatherChangedAt, 0),
		NextChangeAt: time.Unix(ws.WeatherNextChangeAt, 0),
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	ws, err := s.store.GetWorldState()
	if err != nil {
		slog.Warn("worldstate: tick read failed", "error", err)
		return
	}

	now := time.Now()
	if ws.WeatherNextChangeAt > now.Unix() {
		return
	}

	current := Weather(ws.Weather)
	next := s.weightedDraw()
	if next == current {
		// Re-roll once uniformly among the other two, per §4.C step 2.
		alts := otherTwo(current)
		next = alts[s.rng.Intn(len(alts))]
	}

	nextChangeAt := now.Add(randDuration(s.rng, 4*time.Hour, 6*time.Hour))
	if err := s.store.SetWorldWeather(string(next), now.Unix(), nextChangeAt.Unix()); err != nil {
		slog.Warn("worldstate: persist weather failed", "error", err)
		return
	}

	slog.Info("weather rotated", "from", current, "to", next, "next_change_at", nextChangeAt)
	if s.announcer != nil {
		s.announcer.AnnounceWeatherChange(ctx, current, next, nextChangeAt)
	}
}

// forceWeather implements the admin `weather_set` command: force the
// weather and reschedule the next change.
func (s *Scheduler) forceWeather(ctx context.Context, w Weather) error {
	ws, err := s.store.GetWorldState()
	if err != nil {
		return err
	}
	now := time.Now()
	nextChangeAt := now.Add(randDuration(s.rng, 4*time.Hour, 6*time.Hour))
	if err := s.store.SetWorldWeather(string(w), now.Unix(), nextChangeAt.Unix()); err != nil {
		return err
	}
	if s.announcer != nil {
		s.announcer.AnnounceWeatherChange(ctx, Weather(ws.Weather), w, nextChangeAt)
	}
	return nil
}

// SetWeather forces the weather via the actor's command channel (used
// by the admin `weather_set` command). Blocks until applied.
func (s *Scheduler) SetWeather(ctx context.Context, w Weather) error {
	reply := make(chan error, 1)
	select {
	case s.setCh <- setWeatherCmd{weather: w, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Current returns a snapshot of the current weather via the actor's
// command channel. Blocks until served.
func (s *Scheduler) Current(ctx context.Context) Snapshot {
	reply := make(chan Snapshot, 1)
	select {
	case s.snapCh <- snapshotCmd{reply: reply}:
	case <-ctx.Done():
		return Snapshot{}
	}
	select {
	case snap := <-reply:
		return snap
	case <-ctx.Done():
		return Snapshot{}
	}
}

func (s *Scheduler) weightedDraw() Weather {
	r := s.rng.Float64()
	cum := 0.0
	order := []Weather{Clear, Cloudy, Sandstorm}
	for _, w := range order {
		cum += weights[w]
		if r < cum {
			return w
		}
	}
	return Sandstorm
}

func otherTwo(w Weather) []Weather {
	all := []Weather{Clear, Cloudy, Sandstorm}
	out := make([]Weather, 0, 2)
	for _, x := range all {
		if x != w {
			out = append(out, x)
		}
	}
	return out
}

func randDuration(rng *rand.Rand, lo, hi time.Duration) time.Duration {
	return lo + time.Duration(rng.Int63n(int64(hi-lo)))
}

// NormalizeForBuff maps sandstorm to cloudy when a mask buff is active,
// per design doc Section 4.F's "optionally normalized by an active mask
// buff" rule.
func NormalizeForBuff(w Weather, maskActive bool) Weather {
	if maskActive && w == Sandstorm {
		return Cloudy
	}
	return w
}
