package store

// Row types mirror design doc Section 3 one-for-one. Field names match
// the `db` struct tags used by sqlx's Get/Select.

type WorldState struct {
	ID                   int64  `db:"id"`
	Weather              string `db:"weather"`
	WeatherChangedAt     int64  `db:"weather_changed_at"`
	WeatherNextChangeAt  int64  `db:"weather_next_change_at"`
	UpdatedAt            int64  `db:"updated_at"`
}

type UserSettings struct {
	UserID         string `db:"user_id"`
	DMOptIn        bool   `db:"dm_opt_in"`
	NoiseOptIn     bool   `db:"noise_opt_in"`
	StampsOptIn    bool   `db:"stamps_opt_in"`
	Stamps         int64  `db:"stamps"`
	StampsRewarded int64  `db:"stamps_rewarded"`
	StampTitle     string `db:"stamp_title"`
	LastStampAt    int64  `db:"last_stamp_at"`
	LastRewardAt   int64  `db:"last_reward_at"`
	CreatedAt      int64  `db:"created_at"`
	UpdatedAt      int64  `db:"updated_at"`
}

type UserEconomy struct {
	UserID         string `db:"user_id"`
	Credits        int64  `db:"credits"`
	Water          int64  `db:"water"`
	LastExploreYMD string `db:"last_explore_ymd"`
	CreatedAt      int64  `db:"created_at"`
	UpdatedAt      int64  `db:"updated_at"`
}

type GuildDebt struct {
	GuildID         string  `db:"guild_id"`
	Debt            int64   `db:"debt"`
	InterestRate    float64 `db:"interest_rate"`
	LastInterestYMD string  `db:"last_interest_ymd"`
	CreatedAt       int64   `db:"created_at"`
	UpdatedAt       int64   `db:"updated_at"`
}

type EconomyLogEntry struct {
	ID           int64  `db:"id"`
	GuildID      string `db:"guild_id"`
	UserID       string `db:"user_id"`
	Kind         string `db:"kind"`
	DeltaCredits int64  `db:"delta_credits"`
	DeltaWater   int64  `db:"delta_water"`
	DeltaDebt    int64  `db:"delta_debt"`
	Memo         string `db:"memo"`
	CreatedAt    int64  `db:"created_at"`
}

type InventoryRow struct {
	UserID    string `db:"user_id"`
	ItemKey   string `db:"item_key"`
	Qty       int64  `db:"qty"`
	UpdatedAt int64  `db:"updated_at"`
}

type Buff struct {
	UserID    string `db:"user_id"`
	BuffKey   string `db:"buff_key"`
	Stacks    int64  `db:"stacks"`
	ExpiresAt int64  `db:"expires_at"`
	UpdatedAt int64  `db:"updated_at"`
}

type ExploreMeta struct {
	UserID       string `db:"user_id"`
	DateYMD      string `db:"date_ymd"`
	Weather      string `db:"weather"`
	Success      bool   `db:"success"`
	CreditsDelta int64  `db:"credits_delta"`
	WaterDelta   int64  `db:"water_delta"`
	CreatedAt    int64  `db:"created_at"`
}

type QuestDef struct {
	GuildID       string `db:"guild_id"`
	Scope         string `db:"scope"`
	BoardKey      string `db:"board_key"`
	QuestNo       int64  `db:"quest_no"`
	QuestType     string `db:"quest_type"`
	Title         string `db:"title"`
	Description   string `db:"description"`
	TargetKey     string `db:"target_key"`
	TargetQty     int64  `db:"target_qty"`
	RewardPoints  int64  `db:"reward_points"`
	RewardCredits int64  `db:"reward_credits"`
	RewardItemKey string `db:"reward_item_key"`
	RewardItemQty int64  `db:"reward_item_qty"`
	CreatedAt     int64  `db:"created_at"`
}

type QuestClaim struct {
	GuildID   string `db:"guild_id"`
	Scope     string `db:"scope"`
	BoardKey  string `db:"board_key"`
	QuestNo   int64  `db:"quest_no"`
	UserID    string `db:"user_id"`
	ClaimedAt int64  `db:"claimed_at"`
}

type WeeklyPoints struct {
	GuildID   string `db:"guild_id"`
	WeekKey   string `db:"week_key"`
	UserID    string `db:"user_id"`
	Points    int64  `db:"points"`
	UpdatedAt int64  `db:"updated_at"`
}

type IncidentState struct {
	GuildID        string `db:"guild_id"`
	NextIncidentAt int64  `db:"next_incident_at"`
	LastIncidentAt int64  `db:"last_incident_at"`
	UpdatedAt      int64  `db:"updated_at"`
}

type IncidentLogEntry struct {
	ID          int64  `db:"id"`
	GuildID     string `db:"guild_id"`
	Kind        string `db:"kind"`
	Title       string `db:"title"`
	Description string `db:"description"`
	DeltaDebt   int64  `db:"delta_debt"`
	CreatedAt   int64  `db:"created_at"`
}

type XPState struct {
	GuildID      string `db:"guild_id"`
	UserID       string `db:"user_id"`
	TotalXP      int64  `db:"total_xp"`
	Level        int64  `db:"level"`
	LastXPAtTS   int64  `db:"last_xp_at_ts"`
	LastMsgSig   string `db:"last_msg_sig"`
	UpdatedAt    int64  `db:"updated_at"`
}

type XPConfigRow struct {
	GuildID     string `db:"guild_id"`
	ConfigJSON  string `db:"config_json"`
	UpdatedAt   int64  `db:"updated_at"`
}

type WordChainRecord struct {
	UserID      string `db:"user_id"`
	DisplayName string `db:"display_name"`
	Wins        int64  `db:"wins"`
	Losses      int64  `db:"losses"`
	UpdatedAt   int64  `db:"updated_at"`
}

type BotConfig struct {
	Key       string `db:"key"`
	Value     string `db:"value"`
	UpdatedAt int64  `db:"updated_at"`
}

type DailyRule struct {
	DateYMD         string  `db:"date_ymd"`
	RuleNo          int64   `db:"rule_no"`
	RuleText        string  `db:"rule_text"`
	PostedChannelID *string `db:"posted_channel_id"`
	PostedAt        *int64  `db:"posted_at"`
	Attempts        int64   `db:"attempts"`
	CreatedAt       int64   `db:"created_at"`
}

type DailyMeal struct {
	DateYMD          string `db:"date_ymd"`
	MealText         string `db:"meal_text"`
	CreatedAt        int64  `db:"created_at"`
	LastRequestedAt  int64  `db:"last_requested_at"`
}

type LLMUsage struct {
	Month     string  `db:"month"`
	USD       float64 `db:"usd"`
	Tokens    int64   `db:"tokens"`
	Calls     int64   `db:"calls"`
	UpdatedAt int64   `db:"updated_at"`
}
