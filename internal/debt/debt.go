// Package debt implements the per-guild compound daily interest engine
// and user-funded repayment, grounded on cogs/aby_mini_game.py's
// _apply_interest_once and yume_store.py's apply_guild_interest_upto_today.
// See design doc Section 4.D.
package debt

import (
	"context"
	"fmt"

	"github.com/talgya/abydos/internal/bizerr"
	"github.com/talgya/abydos/internal/calendar"
	"github.com/talgya/abydos/internal/store"
)

// Engine applies compound interest and processes repayments.
type Engine struct {
	store *store.Store
}

func New(st *store.Store) *Engine { return &Engine{store: st} }

// applyInterestOnce matches the original's Decimal/ROUND_CEILING
// rounding: debt := ceil(debt * (1 + rate)). Go has no standard-library
// decimal type and the teacher never pulls one in, so this is done with
// integer ceil-division on a rate expressed in millionths — a justified
// stdlib substitute for Python's Decimal (see DESIGN.md).
func applyInterestOnce(debt int64, rate float64) int64 {
	if debt <= 0 {
		return 0
	}
	// rate has at most 4 significant decimal digits in practice (e.g.
	// 0.005); scale by 1_000_000 for headroom without float drift.
	const scale = 1_000_000
	rateScaled := int64(rate * scale)
	numerator := debt*scale + debt*rateScaled
	denominator := int64(scale)
	q := numerator / denominator
	if numerator%denominator != 0 {
		q++
	}
	if q < 0 {
		return 0
	}
	return q
}

// ApplyInterestUpToToday advances last_interest_ymd one calendar day at a
// time until it reaches today, applying compound interest and logging
// one row per day. Idempotent per day: calling it twice on the same
// `today` with no elapsed calendar day in between is a no-op (design doc
// Section 8 invariant).
func (e *Engine) ApplyInterestUpToToday(ctx context.Context, guildID, today string) error {
	return e.store.WithTx(ctx, func(tx *store.Tx) error {
		d, err := tx.GetOrCreateGuildDebt(guildID, today)
		if err != nil {
			return fmt.Errorf("load guild debt: %w", err)
		}

		cursor := d.LastInterestYMD
		if cursor == "" {
			cursor = today
		}
		debt := d.Debt

		for cursor < today {
			nextDay, err := nextYMD(cursor)
			if err != nil {
				return err
			}
			newDebt := applyInterestOnce(debt, d.InterestRate)
			delta := newDebt - debt
			debt = newDebt
			cursor = nextDay

			if err := tx.InsertEconomyLog(store.EconomyLogEntry{
				GuildID: guildID, Kind: "interest", DeltaDebt: delta, Memo: cursor,
			}); err != nil {
				return fmt.Errorf("log interest: %w", err)
			}
		}

		return tx.SetGuildDebt(guildID, debt, cursor)
	})
}

func nextYMD(ymd string) (string, error) {
	t, err := calendar.ParseYMD(ymd)
	if err != nil {
		return "", err
	}
	return calendar.YMD(t.AddDate(0, 0, 1)), nil
}

// RepayResult reports what a successful repay applied.
type RepayResult struct {
	Paid          int64
	CreditsAfter  int64
	DebtAfter     int64
}

// Repay clamps amount to min(amount, credits, debt), deducts credits,
// decrements debt, and logs the event, all in one transaction. amount=-1
// means "all" (design doc Section 8 scenario 2).
func (e *Engine) Repay(ctx context.Context, guildID, userID string, amount int64, today string) (*RepayResult, error) {
	if amount == 0 || amount < -1 {
		return nil, bizerr.Invalid("amount")
	}

	var result RepayResult
	err := e.store.WithTx(ctx, func(tx *store.Tx) error {
		econ, err := tx.GetOrCreateUserEconomy(userID)
		if err != nil {
			return err
		}
		d, err := tx.GetOrCreateGuildDebt(guildID, today)
		if err != nil {
			return err
		}

		if econ.Credits <= 0 {
			return bizerr.Precondition("empty_wallet")
		}
		if d.Debt <= 0 {
			return bizerr.Precondition("no_debt")
		}

		paid := amount
		if paid == -1 {
			paid = econ.Credits
		}
		if paid > econ.Credits {
			paid = econ.Credits
		}
		if paid > d.Debt {
			paid = d.Debt
		}
		if paid <= 0 {
			return bizerr.Invalid("amount")
		}

		if err := tx.AddUserCredits(userID, -paid); err != nil {
			return err
		}
		if err := tx.SetGuildDebtAmount(guildID, d.Debt-paid); err != nil {
			return err
		}
		if err := tx.InsertEconomyLog(store.EconomyLogEntry{
			GuildID: guildID, UserID: userID, Kind: "repay",
			DeltaCredits: -paid, DeltaDebt: -paid, Memo: today,
		}); err != nil {
			return err
		}

		result = RepayResult{Paid: paid, CreditsAfter: econ.Credits - paid, DebtAfter: d.Debt - paid}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PressureStage buckets debt into a monotonic stage 0..5 used by the
// Incident Scheduler to scale severity/frequency. Thresholds are an
// Open Question resolution documented in DESIGN.md.
func PressureStage(debt int64) int {
	switch {
	case debt >= 100_000_000:
		return 5
	case debt >= 30_000_000:
		return 4
	case debt >= 8_000_000:
		return 3
	case debt >= 2_000_000:
		return 2
	case debt >= 500_000:
		return 1
	default:
		return 0
	}
}
