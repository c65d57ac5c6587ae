package store

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// ABYDefaultDebt and ABYDefaultInterestRate seed a guild's debt row on
// first touch, matching the original bot's ABY_DEFAULT_DEBT /
// ABY_DEFAULT_INTEREST_RATE constants.
const (
	ABYDefaultDebt         = 50_000_000
	ABYDefaultInterestRate = 0.005
)

// GetOrCreateUserEconomy returns the user's economy row, creating it
// with zero balances on first touch.
func (s *Store) GetOrCreateUserEconomy(userID string) (*UserEconomy, error) {
	return getOrCreateUserEconomy(s.conn(), userID)
}
func (t *Tx) GetOrCreateUserEconomy(userID string) (*UserEconomy, error) {
	return getOrCreateUserEconomy(t.conn(), userID)
}

func getOrCreateUserEconomy(c conn, userID string) (*UserEconomy, error) {
	var e UserEconomy
	err := c.Get(&e, `SELECT user_id, credits, water, last_explore_ymd, created_at, updated_at FROM aby_user_economy WHERE user_id = ?`, userID)
	if err == nil {
		return &e, nil
	}
	if !isNoRows(err) {
		return nil, err
	}
	now := nowEpoch()
	if _, err := c.Exec(`
		INSERT INTO aby_user_economy(user_id, credits, water, last_explore_ymd, created_at, updated_at)
		VALUES(?, 0, 0, '', ?, ?);
	`, userID, now, now); err != nil {
		return nil, err
	}
	return &UserEconomy{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
}

// SetUserEconomy overwrites credits/water/last_explore_ymd in one update.
func (t *Tx) SetUserEconomy(userID string, credits, water int64, lastExploreYMD string) error {
	_, err := t.tx.Exec(`
		UPDATE aby_user_economy SET credits = ?, water = ?, last_explore_ymd = ?, updated_at = ?
		WHERE user_id = ?;
	`, credits, water, lastExploreYMD, nowEpoch(), userID)
	return err
}

// AddUserCredits applies a delta (positive or negative) to a user's
// credit balance, creating the economy row if absent.
func (t *Tx) AddUserCredits(userID string, delta int64) error {
	now := nowEpoch()
	_, err := t.tx.Exec(`
		INSERT INTO aby_user_economy(user_id, credits, water, last_explore_ymd, created_at, updated_at)
		VALUES(?, ?, 0, '', ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET credits = credits + excluded.credits, updated_at = excluded.updated_at;
	`, userID, delta, now, now)
	return err
}

// InsertExploreMeta records per-day exploration provenance for quest
// verification (design doc Section 3, aby_explore_meta).
func (t *Tx) InsertExploreMeta(m ExploreMeta) error {
	success := int64(0)
	if m.Success {
		success = 1
	}
	_, err := t.tx.Exec(`
		INSERT INTO aby_explore_meta(user_id, date_ymd, weather, success, credits_delta, water_delta, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date_ymd) DO UPDATE SET
			weather = excluded.weather, success = excluded.success,
			credits_delta = excluded.credits_delta, water_delta = excluded.water_delta;
	`, m.UserID, m.DateYMD, m.Weather, success, m.CreditsDelta, m.WaterDelta, nowEpoch())
	return err
}

// GetExploreMeta looks up the exploration provenance row for (uid, ymd).
func (s *Store) GetExploreMeta(userID, ymd string) (*ExploreMeta, bool, error) {
	var m ExploreMeta
	err := s.db.Get(&m, `SELECT user_id, date_ymd, weather, success, credits_delta, water_delta, created_at FROM aby_explore_meta WHERE user_id = ? AND date_ymd = ?`, userID, ymd)
	if err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &m, true, nil
}

// HasSandstormSuccessInWeek checks whether the user has any explore-meta
// row within the given week's YMDs where weather=sandstorm and success.
func (s *Store) HasSandstormSuccessInWeek(userID string, weekYMDs [7]string) (bool, error) {
	query, args, err := sqlx.In(`
		SELECT COUNT(*) FROM aby_explore_meta
		WHERE user_id = ? AND weather = 'sandstorm' AND success = 1 AND date_ymd IN (?)
	`, userID, weekYMDs[:])
	if err != nil {
		return false, err
	}
	query = s.db.Rebind(query)
	var n int64
	if err := s.db.Get(&n, query, args...); err != nil {
		return false, err
	}
	return n > 0, nil
}

// HasExploreDoneToday checks the explore-meta row exists for today.
func (s *Store) HasExploreDoneToday(userID, ymd string) (bool, error) {
	_, ok, err := s.GetExploreMeta(userID, ymd)
	return ok, err
}

// --- Guild debt ---------------------------------------------------------

// GetOrCreateGuildDebt returns the guild's debt row, seeding it with the
// default starting debt and interest rate on first touch.
func (s *Store) GetOrCreateGuildDebt(guildID, todayYMD string) (*GuildDebt, error) {
	return getOrCreateGuildDebt(s.conn(), guildID, todayYMD)
}
func (t *Tx) GetOrCreateGuildDebt(guildID, todayYMD string) (*GuildDebt, error) {
	return getOrCreateGuildDebt(t.conn(), guildID, todayYMD)
}

func getOrCreateGuildDebt(c conn, guildID, todayYMD string) (*GuildDebt, error) {
	var d GuildDebt
	err := c.Get(&d, `SELECT guild_id, debt, interest_rate, last_interest_ymd, created_at, updated_at FROM aby_guild_debt WHERE guild_id = ?`, guildID)
	if err == nil {
		return &d, nil
	}
	if !isNoRows(err) {
		return nil, err
	}
	now := nowEpoch()
	if _, err := c.Exec(`
		INSERT INTO aby_guild_debt(guild_id, debt, interest_rate, last_interest_ymd, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?);
	`, guildID, ABYDefaultDebt, ABYDefaultInterestRate, todayYMD, now, now); err != nil {
		return nil, err
	}
	return &GuildDebt{
		GuildID: guildID, Debt: ABYDefaultDebt, InterestRate: ABYDefaultInterestRate,
		LastInterestYMD: todayYMD, CreatedAt: now, UpdatedAt: now,
	}, nil
}

// ListGuildIDsWithDebt returns every guild_id with a nonzero debt row,
// for the Incident Scheduler's per-tick iteration.
func (s *Store) ListGuildIDsWithDebt() ([]string, error) {
	var ids []string
	err := s.db.Select(&ids, `SELECT guild_id FROM aby_guild_debt WHERE debt > 0 ORDER BY guild_id`)
	return ids, err
}

// SetGuildDebt overwrites a guild's debt and last_interest_ymd.
func (t *Tx) SetGuildDebt(guildID string, debt int64, lastInterestYMD string) error {
	_, err := t.tx.Exec(`
		UPDATE aby_guild_debt SET debt = ?, last_interest_ymd = ?, updated_at = ? WHERE guild_id = ?;
	`, debt, lastInterestYMD, nowEpoch(), guildID)
	return err
}

// SetGuildDebtAmount overwrites only the debt amount (incident deltas).
func (t *Tx) SetGuildDebtAmount(guildID string, debt int64) error {
	_, err := t.tx.Exec(`UPDATE aby_guild_debt SET debt = ?, updated_at = ? WHERE guild_id = ?;`, debt, nowEpoch(), guildID)
	return err
}

// InsertEconomyLog appends an immutable event-journal row.
func (t *Tx) InsertEconomyLog(e EconomyLogEntry) error {
	_, err := t.tx.Exec(`
		INSERT INTO aby_economy_log(guild_id, user_id, kind, delta_credits, delta_water, delta_debt, memo, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?);
	`, nullable(e.GuildID), nullable(e.UserID), e.Kind, e.DeltaCredits, e.DeltaWater, e.DeltaDebt, e.Memo, nowEpoch())
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// SumEconomyLogDelta sums a single delta column for a guild over a
// [fromTS, toTS) window and kind filter, used by the weekly report.
// col must be one of "delta_credits", "delta_water",
// "delta_debt" — validated by callers, which only ever pass literals.
func (s *Store) SumEconomyLogDelta(guildID, kind, col string, fromTS, toTS int64) (int64, error) {
	var sum sql.NullInt64
	query := `SELECT COALESCE(SUM(` + col + `), 0) FROM aby_economy_log WHERE guild_id = ? AND kind = ? AND created_at >= ? AND created_at < ?`
	if err := s.db.Get(&sum, query, guildID, kind, fromTS, toTS); err != nil {
		return 0, err
	}
	return sum.Int64, nil
}

// SumUserRepayTotal sums a user's repay log deltas within [fromTS, toTS).
func (s *Store) SumUserRepayTotal(guildID, userID string, fromTS, toTS int64) (int64, error) {
	var sum sql.NullInt64
	err := s.db.Get(&sum, `
		SELECT COALESCE(SUM(-delta_credits), 0) FROM aby_economy_log
		WHERE guild_id = ? AND user_id = ? AND kind = 'repay' AND created_at >= ? AND created_at < ?;
	`, guildID, userID, fromTS, toTS)
	if err != nil {
		return 0, err
	}
	return sum.Int64, nil
}

// TopRepayers returns the top N users by total repay credits in the
// window, for the weekly report.
type UserAmount struct {
	UserID string `db:"user_id"`
	Amount int64  `db:"amount"`
}

func (s *Store) TopRepayers(guildID string, fromTS, toTS int64, limit int) ([]UserAmount, error) {
	var rows []UserAmount
	err := s.db.Select(&rows, `
		SELECT user_id, SUM(-delta_credits) AS amount FROM aby_economy_log
		WHERE guild_id = ? AND kind = 'repay' AND created_at >= ? AND created_at < ? AND user_id IS NOT NULL
		GROUP BY user_id ORDER BY amount DESC LIMIT ?;
	`, guildID, fromTS, toTS, limit)
	return rows, err
}

// TopWeeklyPoints returns the top N users by weekly points.
func (s *Store) TopWeeklyPoints(guildID, weekKey string, limit int) ([]UserAmount, error) {
	var rows []UserAmount
	err := s.db.Select(&rows, `
		SELECT user_id, points AS amount FROM aby_weekly_points
		WHERE guild_id = ? AND week_key = ? ORDER BY points DESC LIMIT ?;
	`, guildID, weekKey, limit)
	return rows, err
}

// --- Inventory & buffs ---------------------------------------------------

// GetUserInventory returns the user's full inventory as item_key -> qty.
func (s *Store) GetUserInventory(userID string) (map[string]int64, error) {
	var rows []InventoryRow
	if err := s.db.Select(&rows, `SELECT user_id, item_key, qty, updated_at FROM aby_inventory WHERE user_id = ? AND qty > 0`, userID); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.ItemKey] = r.Qty
	}
	return out, nil
}

func getItemQty(c conn, userID, itemKey string) (int64, error) {
	var qty int64
	err := c.Get(&qty, `SELECT qty FROM aby_inventory WHERE user_id = ? AND item_key = ?`, userID, itemKey)
	if isNoRows(err) {
		return 0, nil
	}
	return qty, err
}

func (s *Store) GetItemQty(userID, itemKey string) (int64, error) { return getItemQty(s.conn(), userID, itemKey) }
func (t *Tx) GetItemQty(userID, itemKey string) (int64, error)     { return getItemQty(t.conn(), userID, itemKey) }

// AddUserItem increments (or decrements, for negative delta) an
// inventory row, creating it if absent. Never leaves qty negative.
func (t *Tx) AddUserItem(userID, itemKey string, delta int64) error {
	now := nowEpoch()
	_, err := t.tx.Exec(`
		INSERT INTO aby_inventory(user_id, item_key, qty, updated_at) VALUES(?, ?, MAX(0, ?), ?)
		ON CONFLICT(user_id, item_key) DO UPDATE SET qty = MAX(0, qty + excluded.qty), updated_at = excluded.updated_at;
	`, userID, itemKey, delta, now)
	return err
}

// ConsumeUserItem deducts qty from an item, failing if insufficient.
func (t *Tx) ConsumeUserItem(userID, itemKey string, qty int64) error {
	have, err := t.GetItemQty(userID, itemKey)
	if err != nil {
		return err
	}
	if have < qty {
		return errInsufficientItems
	}
	return t.AddUserItem(userID, itemKey, -qty)
}

// GetBuff returns the user's buff row, or a zero-value row if none.
func getBuff(c conn, userID string) (*Buff, error) {
	var b Buff
	err := c.Get(&b, `SELECT user_id, buff_key, stacks, expires_at, updated_at FROM aby_buffs WHERE user_id = ?`, userID)
	if isNoRows(err) {
		return &Buff{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) GetBuff(userID string) (*Buff, error) { return getBuff(s.conn(), userID) }
func (t *Tx) GetBuff(userID string) (*Buff, error)     { return getBuff(t.conn(), userID) }

// SetBuff replaces the user's at-most-one active buff.
func (t *Tx) SetBuff(userID, buffKey string, stacks, expiresAt int64) error {
	now := nowEpoch()
	_, err := t.tx.Exec(`
		INSERT INTO aby_buffs(user_id, buff_key, stacks, expires_at, updated_at) VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET buff_key = excluded.buff_key, stacks = excluded.stacks,
			expires_at = excluded.expires_at, updated_at = excluded.updated_at;
	`, userID, buffKey, stacks, expiresAt, now)
	return err
}

// ConsumeBuffStack decrements the active buff's stack count by one,
// stopping at zero; buff_key and expires_at are left unchanged.
func (t *Tx) ConsumeBuffStack(userID string) error {
	_, err := t.tx.Exec(`UPDATE aby_buffs SET stacks = MAX(0, stacks - 1), updated_at = ? WHERE user_id = ?;`, nowEpoch(), userID)
	return err
}
