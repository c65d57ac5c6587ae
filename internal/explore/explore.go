// Package explore implements the once-daily exploration transaction:
// weather-conditioned reward roll, buff consumption, and provenance
// logging. Grounded on cogs/aby_mini_game.py's explore command. See
// design doc Section 4.F.
package explore

import (
	"context"
	"math/rand"
	"time"

	"github.com/talgya/abydos/internal/store"
	"github.com/talgya/abydos/internal/worldstate"
)

// LootItem is one item dropped by an exploration run.
type LootItem struct {
	ItemKey string
	Qty     int64
}

// Outcome is the fully-resolved result of one exploration roll, computed
// before any row is touched so the transaction only ever applies values
// already decided.
type Outcome struct {
	Success      bool
	Credits      int64
	Water        int64
	Loot         []LootItem
	MaskUsed     bool
	DroneApplied bool
	KitApplied   bool
}

type weatherProfile struct {
	successP           float64
	successLo, successHi int64
	failLo, failHi       int64
	waterP               float64
}

func profileFor(w worldstate.Weather) weatherProfile {
	switch w {
	case worldstate.Sandstorm:
		return weatherProfile{0.55, 4_000, 12_000, 0, 2_000, 0.02}
	case worldstate.Cloudy:
		return weatherProfile{0.70, 6_000, 15_000, 0, 3_000, 0.06}
	default:
		return weatherProfile{0.72, 7_000, 16_000, 0, 3_000, 0.06}
	}
}

// materialDrop is one entry of a weather bucket's cumulative-probability
// material table; at most one drop per run.
type materialDrop struct {
	threshold float64
	key       string
	qtyLo     int64
	qtyHi     int64
}

var sandstormMaterials = []materialDrop{
	{0.26, "scrap", 2, 3},
	{0.34, "cloth", 1, 1},
	{0.38, "filter", 1, 1},
	{0.41, "battery", 1, 1},
	{0.43, "circuit", 1, 1},
}

var calmMaterials = []materialDrop{
	{0.18, "scrap", 1, 2},
	{0.26, "cloth", 1, 1},
	{0.31, "filter", 1, 1},
	{0.34, "battery", 1, 1},
	{0.36, "circuit", 1, 1},
}

func rollRange(rng *rand.Rand, lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Int63n(hi-lo+1)
}

// roll computes the full Outcome for one exploration attempt. calcWeather
// is the mask-normalized weather used for odds; the real weather is
// recorded in provenance by Claim.
func roll(rng *rand.Rand, calcWeather worldstate.Weather, buffKey string, buffStacks int64) Outcome {
	prof := profileFor(calcWeather)

	kitApplied := false
	if buffKey == "kit" && buffStacks > 0 {
		prof.successP = min(0.90, prof.successP+0.10)
		prof.waterP = min(0.20, prof.waterP+0.01)
		kitApplied = true
	}

	success := rng.Float64() < prof.successP
	var credits int64
	if success {
		credits = rollRange(rng, prof.successLo, prof.successHi)
	} else {
		credits = rollRange(rng, prof.failLo, prof.failHi)
	}

	water := int64(0)
	if rng.Float64() < prof.waterP {
		water = 1
	}

	var loot []LootItem
	switch r := rng.Float64(); {
	case r < 0.12:
		credits += rollRange(rng, 2_000, 9_000)
	case r < 0.17:
		credits -= rollRange(rng, 1_000, 4_000)
	case r < 0.21:
		loot = append(loot, LootItem{ItemKey: "mask", Qty: 1})
	case r < 0.24:
		loot = append(loot, LootItem{ItemKey: "drone", Qty: 1})
	case r < 0.28:
		water++
	}

	mats := calmMaterials
	if calcWeather == worldstate.Sandstorm {
		mats = sandstormMaterials
	}
	mr := rng.Float64()
	for _, m := range mats {
		if mr < m.threshold {
			loot = append(loot, LootItem{ItemKey: m.key, Qty: rollRange(rng, m.qtyLo, m.qtyHi)})
			break
		}
	}

	droneApplied := false
	if buffKey == "drone" && buffStacks > 0 && credits > 0 {
		// ceil(credits * 1.25), matching the original's Decimal ROUND_CEILING.
		credits = (credits*125 + 99) / 100
		droneApplied = true
	}

	return Outcome{
		Success: success, Credits: credits, Water: water, Loot: loot,
		DroneApplied: droneApplied, KitApplied: kitApplied,
	}
}

// Claim runs the exploration transaction for one user. It is idempotent
// per (userID, today): if the user's economy row already shows
// last_explore_ymd == today, it returns (nil, nil) without touching any
// buff or inventory row.
func Claim(ctx context.Context, st *store.Store, rng *rand.Rand, userID, today string, envWeather worldstate.Weather) (*Outcome, error) {
	econ, err := st.GetOrCreateUserEconomy(userID)
	if err != nil {
		return nil, err
	}
	if econ.LastExploreYMD == today {
		return nil, nil
	}

	buff, err := st.GetBuff(userID)
	if err != nil {
		return nil, err
	}
	now := time.Now().Unix()
	buffKey := buff.BuffKey
	buffStacks := buff.Stacks
	if buffStacks <= 0 || buff.ExpiresAt <= now {
		buffKey, buffStacks = "", 0
	}

	calcWeather := envWeather
	maskUsed := false
	if buffKey == "mask" && buffStacks > 0 && envWeather == worldstate.Sandstorm {
		calcWeather = worldstate.Cloudy
		maskUsed = true
	}

	outcome := roll(rng, calcWeather, buffKey, buffStacks)
	outcome.MaskUsed = maskUsed

	var committed bool
	err = st.WithTx(ctx, func(tx *store.Tx) error {
		econTx, err := tx.GetOrCreateUserEconomy(userID)
		if err != nil {
			return err
		}
		if econTx.LastExploreYMD == today {
			return nil
		}
		newCredits := econTx.Credits + outcome.Credits
		newWater := econTx.Water + outcome.Water
		if err := tx.SetUserEconomy(userID, newCredits, newWater, today); err != nil {
			return err
		}
		if err := tx.InsertExploreMeta(store.ExploreMeta{
			UserID: userID, DateYMD: today, Weather: string(envWeather),
			Success: outcome.Success, CreditsDelta: outcome.Credits, WaterDelta: outcome.Water,
		}); err != nil {
			return err
		}
		committed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !committed {
		return nil, nil
	}

	// Only after commit: add loot and consume single-use buff stacks.
	if len(outcome.Loot) > 0 {
		_ = st.WithTx(ctx, func(tx *store.Tx) error {
			for _, item := range outcome.Loot {
				if err := tx.AddUserItem(userID, item.ItemKey, item.Qty); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if (buffKey == "drone" || buffKey == "kit") && buffStacks > 0 {
		_ = st.WithTx(ctx, func(tx *store.Tx) error {
			return tx.ConsumeBuffStack(userID)
		})
	}

	return &outcome, nil
}
