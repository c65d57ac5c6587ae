// Package workshop implements the recipe-gated crafting and material
// sale transactions, grounded on cogs/aby_workshop.py. See design doc
// Section 4.G.
package workshop

import (
	"context"

	"github.com/talgya/abydos/internal/bizerr"
	"github.com/talgya/abydos/internal/store"
)

// Recipe is a static craft definition: spend Cost credits plus the
// Required material quantities, receive the Output item.
type Recipe struct {
	ID       string
	Name     string
	Cost     int64
	Required map[string]int64
	Output   map[string]int64
	Desc     string
}

// Recipes is the static recipe table, seeded from the original's RECIPES.
var Recipes = map[string]Recipe{
	"mask": {
		ID: "mask", Name: "방진마스크", Cost: 2000,
		Required: map[string]int64{"cloth": 2, "filter": 1},
		Output:   map[string]int64{"mask": 1},
		Desc:     "2시간 동안 모래폭풍 페널티 완화",
	},
	"drone": {
		ID: "drone", Name: "탐사용 드론", Cost: 5000,
		Required: map[string]int64{"scrap": 5, "battery": 1, "circuit": 1},
		Output:   map[string]int64{"drone": 1},
		Desc:     "다음 탐사 크레딧 +25% (1회)",
	},
	"kit": {
		ID: "kit", Name: "탐사키트", Cost: 3000,
		Required: map[string]int64{"scrap": 3, "cloth": 1},
		Output:   map[string]int64{"kit": 1},
		Desc:     "다음 탐사 성공률 +10% (1회)",
	},
}

// SellPrices is the static unit price table for raw materials.
var SellPrices = map[string]int64{
	"scrap":   800,
	"cloth":   500,
	"filter":  1200,
	"battery": 1500,
	"circuit": 1800,
}

// ItemAliases maps Korean user-typed tokens to canonical item keys,
// shared by craft/sell command parsing and the exploration loot log.
var ItemAliases = map[string]string{
	"방진": "mask", "마스크": "mask", "방진마스크": "mask",
	"드론": "drone", "탐사용드론": "drone", "탐사드론": "drone",
	"탐사키트": "kit", "키트": "kit",
	"고철": "scrap", "스크랩": "scrap", "부품": "scrap",
	"천": "cloth", "천조각": "cloth",
	"필터": "filter",
	"배터리": "battery",
	"회로": "circuit", "기판": "circuit", "회로기판": "circuit",
}

// ResolveItemKey normalizes a raw user token to a canonical item key via
// ItemAliases, or "" if unrecognized.
func ResolveItemKey(raw string) string {
	return ItemAliases[raw]
}

// Workshop crafts and sells against the store.
type Workshop struct {
	store *store.Store
}

func New(st *store.Store) *Workshop { return &Workshop{store: st} }

// CraftResult reports the recipe applied and the user's balances after.
type CraftResult struct {
	Recipe         Recipe
	CreditsAfter   int64
}

// Craft verifies credits and materials, then atomically deducts both and
// adds the recipe's output.
func (w *Workshop) Craft(ctx context.Context, userID, recipeID string) (*CraftResult, error) {
	recipe, ok := Recipes[recipeID]
	if !ok {
		return nil, bizerr.Invalid("unknown_recipe")
	}

	var result CraftResult
	err := w.store.WithTx(ctx, func(tx *store.Tx) error {
		econ, err := tx.GetOrCreateUserEconomy(userID)
		if err != nil {
			return err
		}
		if econ.Credits < recipe.Cost {
			return bizerr.Precondition("insufficient_credits")
		}
		for item, qty := range recipe.Required {
			have, err := tx.GetItemQty(userID, item)
			if err != nil {
				return err
			}
			if have < qty {
				return bizerr.Precondition("insufficient_materials")
			}
		}

		if err := tx.AddUserCredits(userID, -recipe.Cost); err != nil {
			return err
		}
		for item, qty := range recipe.Required {
			if err := tx.ConsumeUserItem(userID, item, qty); err != nil {
				return err
			}
		}
		for item, qty := range recipe.Output {
			if err := tx.AddUserItem(userID, item, qty); err != nil {
				return err
			}
		}
		if err := tx.InsertEconomyLog(store.EconomyLogEntry{
			UserID: userID, Kind: "craft", DeltaCredits: -recipe.Cost, Memo: recipe.ID,
		}); err != nil {
			return err
		}

		result = CraftResult{Recipe: recipe, CreditsAfter: econ.Credits - recipe.Cost}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SellResult reports the payout and balances after a material sale.
type SellResult struct {
	ItemKey      string
	Qty          int64
	CreditsGained int64
	CreditsAfter int64
}

// Sell deducts qty of itemKey from inventory and credits the user at the
// static unit price. qty=-1 sells the user's entire stack.
func (w *Workshop) Sell(ctx context.Context, userID, itemKey string, qty int64) (*SellResult, error) {
	price, ok := SellPrices[itemKey]
	if !ok {
		return nil, bizerr.Invalid("not_sellable")
	}
	if qty == 0 || qty < -1 {
		return nil, bizerr.Invalid("qty")
	}

	var result SellResult
	err := w.store.WithTx(ctx, func(tx *store.Tx) error {
		have, err := tx.GetItemQty(userID, itemKey)
		if err != nil {
			return err
		}
		n := qty
		if n == -1 {
			n = have
		}
		if n <= 0 {
			return bizerr.Precondition("insufficient_materials")
		}
		if have < n {
			return bizerr.Precondition("insufficient_materials")
		}

		payout := price * n
		if err := tx.ConsumeUserItem(userID, itemKey, n); err != nil {
			return err
		}
		econ, err := tx.GetOrCreateUserEconomy(userID)
		if err != nil {
			return err
		}
		if err := tx.AddUserCredits(userID, payout); err != nil {
			return err
		}
		if err := tx.InsertEconomyLog(store.EconomyLogEntry{
			UserID: userID, Kind: "sell", DeltaCredits: payout, Memo: itemKey,
		}); err != nil {
			return err
		}

		result = SellResult{ItemKey: itemKey, Qty: n, CreditsGained: payout, CreditsAfter: econ.Credits + payout}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
