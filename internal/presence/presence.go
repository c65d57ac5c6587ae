// Package presence rotates the bot's Discord status on a randomized
// interval, filtered by the current KST time band. Grounded on
// yume_presence.py's status-item table and interval picker. See design
// doc Section 4.L.
package presence

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/talgya/abydos/internal/calendar"
)

// ActivityType mirrors the discordgo activity kinds the original rotates
// through: Playing, Watching, Listening.
type ActivityType = discordgo.ActivityType

// Item is one candidate status, shown only within its allowed bands.
type Item struct {
	Type  ActivityType
	Text  string
	Bands []calendar.Band
}

func allBands() []calendar.Band {
	return []calendar.Band{calendar.BandNight, calendar.BandMorning, calendar.BandDay, calendar.BandEvening}
}

// DefaultItems mirrors the original's _DEFAULT_CFG status table.
func DefaultItems() []Item {
	return []Item{
		{Type: discordgo.ActivityTypeGame, Text: "학생회 업무… 하는 척…", Bands: []calendar.Band{calendar.BandMorning, calendar.BandDay}},
		{Type: discordgo.ActivityTypeGame, Text: "뇌가 로딩 중… 으헤~", Bands: []calendar.Band{calendar.BandNight, calendar.BandEvening}},
		{Type: discordgo.ActivityTypeWatching, Text: "후배들 출석 체크", Bands: []calendar.Band{calendar.BandMorning, calendar.BandDay}},
		{Type: discordgo.ActivityTypeWatching, Text: "후배들 대화", Bands: []calendar.Band{calendar.BandEvening, calendar.BandNight}},
		{Type: discordgo.ActivityTypeListening, Text: "후배의 한숨", Bands: []calendar.Band{calendar.BandEvening, calendar.BandNight}},
		{Type: discordgo.ActivityTypeGame, Text: "시간표랑 싸우는 중", Bands: []calendar.Band{calendar.BandMorning, calendar.BandDay}},
		{Type: discordgo.ActivityTypeGame, Text: "낮잠 계획 세우는 중", Bands: []calendar.Band{calendar.BandEvening, calendar.BandNight}},
		{Type: discordgo.ActivityTypeWatching, Text: "후배들 안부 확인", Bands: []calendar.Band{calendar.BandDay, calendar.BandEvening}},
		{Type: discordgo.ActivityTypeGame, Text: "담요 챙겨주는 중", Bands: []calendar.Band{calendar.BandNight, calendar.BandEvening}},
		{Type: discordgo.ActivityTypeListening, Text: "심호흡 소리", Bands: []calendar.Band{calendar.BandNight, calendar.BandEvening}},
		{Type: discordgo.ActivityTypeGame, Text: "보고서 결재 중", Bands: []calendar.Band{calendar.BandMorning, calendar.BandDay}},
		{Type: discordgo.ActivityTypeGame, Text: "예산표랑 눈싸움", Bands: []calendar.Band{calendar.BandMorning, calendar.BandDay}},
		{Type: discordgo.ActivityTypeWatching, Text: "공지문 검토", Bands: []calendar.Band{calendar.BandDay, calendar.BandEvening}},
		{Type: discordgo.ActivityTypeGame, Text: "아비도스 날씨 체크", Bands: allBands()},
	}
}

// Session is the subset of a discordgo.Session the rotator needs.
type Session interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// Rotator applies a randomized status every 35-95 minutes.
type Rotator struct {
	session Session
	items   []Item
	rng     *rand.Rand
}

func New(session Session, items []Item) *Rotator {
	if items == nil {
		items = DefaultItems()
	}
	return &Rotator{session: session, items: items, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Run drives the rotation loop until ctx is canceled.
func (r *Rotator) Run(ctx context.Context) {
	for {
		select {
		case <-time.After(r.nextInterval()):
			r.applyOnce()
		case <-ctx.Done():
			return
		}
	}
}

func (r *Rotator) nextInterval() time.Duration {
	lo, hi := 35, 95
	minutes := lo + r.rng.Intn(hi-lo+1)
	return time.Duration(minutes) * time.Minute
}

func bandAllowed(item Item, band calendar.Band) bool {
	for _, b := range item.Bands {
		if b == band {
			return true
		}
	}
	return false
}

func (r *Rotator) applyOnce() {
	band := calendar.TimeBand(calendar.Now())
	var candidates []Item
	for _, it := range r.items {
		if bandAllowed(it, band) {
			candidates = append(candidates, it)
		}
	}
	if len(candidates) == 0 {
		candidates = r.items
	}
	if len(candidates) == 0 {
		return
	}
	pick := candidates[r.rng.Intn(len(candidates))]

	err := r.session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Activities: []*discordgo.Activity{{Name: pick.Text, Type: pick.Type}},
	})
	if err != nil {
		slog.Warn("presence: update status failed", "error", err)
		return
	}
	slog.Info("presence rotated", "band", band, "text", pick.Text)
}
