// Package websync periodically POSTs a small state snapshot to an
// external dashboard. Best-effort: any failure is logged and ignored.
// Grounded on yume_websync.py's build_sync_payload/post_sync_payload and
// the teacher's weather.Client timeout/HTTP idiom. See design doc
// Section 4.M.
package websync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/talgya/abydos/internal/calendar"
	"github.com/talgya/abydos/internal/store"
)

// GuildInfo is one guild entry in the snapshot.
type GuildInfo struct {
	GuildID string `json:"guild_id"`
	Name    string `json:"name"`
}

// BotInfo identifies the bot account in the snapshot.
type BotInfo struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// WorldInfo mirrors the world_state row.
type WorldInfo struct {
	Weather             string `json:"weather"`
	WeatherChangedAt    int64  `json:"weather_changed_at"`
	WeatherNextChangeAt int64  `json:"weather_next_change_at"`
	UpdatedAt           int64  `json:"updated_at"`
}

// DailyRuleInfo mirrors the rule-of-the-day cache.
type DailyRuleInfo struct {
	Date            string `json:"date"`
	RuleNo          int64  `json:"rule_no"`
	RuleText        string `json:"rule_text"`
	PostedChannelID string `json:"posted_channel_id,omitempty"`
}

// DailyMealInfo mirrors the meal-of-the-day cache.
type DailyMealInfo struct {
	Date     string `json:"date"`
	MealText string `json:"meal_text"`
}

// StampEntry is one row of the top-stamps leaderboard.
type StampEntry struct {
	UserID     string `json:"user_id"`
	Stamps     int64  `json:"stamps"`
	StampTitle string `json:"stamp_title"`
	UpdatedAt  int64  `json:"updated_at"`
}

// Payload is the full JSON snapshot body.
type Payload struct {
	GeneratedAt int64          `json:"generated_at"`
	Bot         BotInfo        `json:"bot"`
	Guilds      []GuildInfo    `json:"guilds"`
	World       WorldInfo      `json:"world"`
	DailyRule   *DailyRuleInfo `json:"daily_rule,omitempty"`
	DailyMeal   *DailyMealInfo `json:"daily_meal,omitempty"`
	TopStamps   []StampEntry   `json:"top_stamps"`
}

// GuildSource supplies the bot identity and guild list the core has no
// other way to read from the store.
type GuildSource interface {
	SelfUser() BotInfo
	Guilds() []GuildInfo
}

// Syncer POSTs periodic snapshots.
type Syncer struct {
	store   *store.Store
	source  GuildSource
	url     string
	token   string
	client  *http.Client
	interval time.Duration
}

func New(st *store.Store, source GuildSource, url, token string, interval time.Duration) *Syncer {
	return &Syncer{
		store:    st,
		source:   source,
		url:      url,
		token:    token,
		client:   &http.Client{Timeout: 8 * time.Second},
		interval: interval,
	}
}

// Run drives the periodic sync loop until ctx is canceled. A no-op if
// url or token is unset, matching the original's "env not set → disabled".
func (s *Syncer) Run(ctx context.Context) {
	if s.url == "" || s.token == "" {
		slog.Info("websync: disabled, no url/token configured")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

func (s *Syncer) syncOnce(ctx context.Context) {
	payload, err := s.buildPayload()
	if err != nil {
		slog.Warn("websync: build payload failed", "error", err)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("websync: marshal failed", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		slog.Warn("websync: build request failed", "error", err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "abydos-bot/1")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Warn("websync: post failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("websync: non-2xx response", "status", resp.StatusCode)
	}
}

func (s *Syncer) buildPayload() (*Payload, error) {
	world, err := s.store.GetWorldState()
	if err != nil {
		return nil, fmt.Errorf("read world state: %w", err)
	}

	today := calendar.TodayYMD()
	payload := &Payload{
		GeneratedAt: time.Now().Unix(),
		Bot:         s.source.SelfUser(),
		Guilds:      s.source.Guilds(),
		World: WorldInfo{
			Weather: world.Weather, WeatherChangedAt: world.WeatherChangedAt,
			WeatherNextChangeAt: world.WeatherNextChangeAt, UpdatedAt: world.UpdatedAt,
		},
	}

	if rule, ok, err := s.store.GetDailyRule(today); err == nil && ok {
		channelID := ""
		if rule.PostedChannelID != nil {
			channelID = *rule.PostedChannelID
		}
		payload.DailyRule = &DailyRuleInfo{Date: today, RuleNo: rule.RuleNo, RuleText: rule.RuleText, PostedChannelID: channelID}
	}
	if meal, ok, err := s.store.GetDailyMeal(today); err == nil && ok {
		payload.DailyMeal = &DailyMealInfo{Date: today, MealText: meal.MealText}
	}

	top, err := s.store.TopStamps(10)
	if err != nil {
		return nil, fmt.Errorf("read top stamps: %w", err)
	}
	for _, r := range top {
		payload.TopStamps = append(payload.TopStamps, StampEntry{
			UserID: r.UserID, Stamps: r.Stamps, StampTitle: r.StampTitle, UpdatedAt: r.UpdatedAt,
		})
	}

	return payload, nil
}
