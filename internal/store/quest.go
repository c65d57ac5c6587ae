package store

// InsertQuestDefs materializes a board's quest rows. Safe to call
// multiple times for the same (guild, scope, board_key) — duplicates are
// ignored so ensure_*_board stays idempotent per design doc Section 4.H.
func (t *Tx) InsertQuestDefs(defs []QuestDef) error {
	now := nowEpoch()
	for _, d := range defs {
		_, err := t.tx.Exec(`
			INSERT INTO aby_quest_board(guild_id, scope, board_key, quest_no, quest_type, title, description,
				target_key, target_qty, reward_points, reward_credits, reward_item_key, reward_item_qty, created_at)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(guild_id, scope, board_key, quest_no) DO NOTHING;
		`, d.GuildID, d.Scope, d.BoardKey, d.QuestNo, d.QuestType, d.Title, d.Description,
			nullable(d.TargetKey), d.TargetQty, d.RewardPoints, d.RewardCredits,
			nullable(d.RewardItemKey), d.RewardItemQty, now)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListQuestBoard returns every quest on a materialized board.
func (s *Store) ListQuestBoard(guildID, scope, boardKey string) ([]QuestDef, error) {
	var rows []QuestDef
	err := s.db.Select(&rows, `
		SELECT guild_id, scope, board_key, quest_no, quest_type, title, description,
			COALESCE(target_key, '') AS target_key, target_qty, reward_points, reward_credits,
			COALESCE(reward_item_key, '') AS reward_item_key, reward_item_qty, created_at
		FROM aby_quest_board WHERE guild_id = ? AND scope = ? AND board_key = ? ORDER BY quest_no;
	`, guildID, scope, boardKey)
	return rows, err
}

// BoardExists reports whether a board has already been materialized,
// the idempotence gate for ensure_*_board.
func (s *Store) BoardExists(guildID, scope, boardKey string) (bool, error) {
	var n int64
	err := s.db.Get(&n, `SELECT COUNT(*) FROM aby_quest_board WHERE guild_id = ? AND scope = ? AND board_key = ?`, guildID, scope, boardKey)
	return n > 0, err
}

// GetQuestDef fetches a single quest definition.
func (s *Store) GetQuestDef(guildID, scope, boardKey string, questNo int64) (*QuestDef, bool, error) {
	var d QuestDef
	err := s.db.Get(&d, `
		SELECT guild_id, scope, board_key, quest_no, quest_type, title, description,
			COALESCE(target_key, '') AS target_key, target_qty, reward_points, reward_credits,
			COALESCE(reward_item_key, '') AS reward_item_key, reward_item_qty, created_at
		FROM aby_quest_board WHERE guild_id = ? AND scope = ? AND board_key = ? AND quest_no = ?;
	`, guildID, scope, boardKey, questNo)
	if isNoRows(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &d, true, nil
}

// HasClaimed reports whether (guild, scope, board_key, quest_no, user)
// already has a successful claim.
func (s *Store) HasClaimed(guildID, scope, boardKey string, questNo int64, userID string) (bool, error) {
	return hasClaimed(s.conn(), guildID, scope, boardKey, questNo, userID)
}
func (t *Tx) HasClaimed(guildID, scope, boardKey string, questNo int64, userID string) (bool, error) {
	return hasClaimed(t.conn(), guildID, scope, boardKey, questNo, userID)
}

func hasClaimed(c conn, guildID, scope, boardKey string, questNo int64, userID string) (bool, error) {
	var n int64
	err := c.Get(&n, `
		SELECT COUNT(*) FROM aby_quest_claims
		WHERE guild_id = ? AND scope = ? AND board_key = ? AND quest_no = ? AND user_id = ?;
	`, guildID, scope, boardKey, questNo, userID)
	return n > 0, err
}

// InsertQuestClaim records a successful claim. The primary key on
// (guild, scope, board_key, quest_no, user) makes a duplicate insert
// fail, which is the at-most-once enforcement mechanism.
func (t *Tx) InsertQuestClaim(guildID, scope, boardKey string, questNo int64, userID string) error {
	_, err := t.tx.Exec(`
		INSERT INTO aby_quest_claims(guild_id, scope, board_key, quest_no, user_id, claimed_at)
		VALUES(?, ?, ?, ?, ?, ?);
	`, guildID, scope, boardKey, questNo, userID, nowEpoch())
	return err
}

// AddWeeklyPoints increments a user's weekly points, creating the row on
// first touch.
func (t *Tx) AddWeeklyPoints(guildID, weekKey, userID string, delta int64) error {
	now := nowEpoch()
	_, err := t.tx.Exec(`
		INSERT INTO aby_weekly_points(guild_id, week_key, user_id, points, updated_at) VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, week_key, user_id) DO UPDATE SET points = points + excluded.points, updated_at = excluded.updated_at;
	`, guildID, weekKey, userID, delta, now)
	return err
}
