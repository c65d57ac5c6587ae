package store

// GetOrCreateXPState returns a (guild, user) XP row, zero-valued on
// first touch.
func (s *Store) GetOrCreateXPState(guildID, userID string) (*XPState, error) {
	var st XPState
	err := s.db.Get(&st, `
		SELECT guild_id, user_id, total_xp, level, last_xp_at_ts, last_msg_sig, updated_at
		FROM xp_state WHERE guild_id = ? AND user_id = ?;
	`, guildID, userID)
	if err == nil {
		return &st, nil
	}
	if !isNoRows(err) {
		return nil, err
	}
	now := nowEpoch()
	if _, err := s.db.Exec(`
		INSERT INTO xp_state(guild_id, user_id, total_xp, level, last_xp_at_ts, last_msg_sig, updated_at)
		VALUES(?, ?, 0, 0, 0, '', ?);
	`, guildID, userID, now); err != nil {
		return nil, err
	}
	return &XPState{GuildID: guildID, UserID: userID, UpdatedAt: now}, nil
}

// AddXP applies a total_xp/level update and records the repeat-spam
// signature used to suppress duplicate chat messages.
func (s *Store) AddXP(guildID, userID string, newTotalXP, newLevel, nowTS int64, msgSig string) error {
	_, err := s.db.Exec(`
		UPDATE xp_state SET total_xp = ?, level = ?, last_xp_at_ts = ?, last_msg_sig = ?, updated_at = ?
		WHERE guild_id = ? AND user_id = ?;
	`, newTotalXP, newLevel, nowTS, msgSig, nowEpoch(), guildID, userID)
	return err
}

// TopXP returns the top N users by total_xp in a guild, for !rank.
func (s *Store) TopXP(guildID string, limit int) ([]XPState, error) {
	var rows []XPState
	err := s.db.Select(&rows, `
		SELECT guild_id, user_id, total_xp, level, last_xp_at_ts, last_msg_sig, updated_at
		FROM xp_state WHERE guild_id = ? ORDER BY total_xp DESC LIMIT ?;
	`, guildID, limit)
	return rows, err
}

// GetXPConfigJSON returns a guild's raw tunables JSON, or "" if unset.
func (s *Store) GetXPConfigJSON(guildID string) (string, error) {
	var row XPConfigRow
	err := s.db.Get(&row, `SELECT guild_id, config_json, updated_at FROM xp_config WHERE guild_id = ?`, guildID)
	if isNoRows(err) {
		return "", nil
	}
	return row.ConfigJSON, err
}

// SetXPConfigJSON upserts a guild's tunables JSON blob.
func (s *Store) SetXPConfigJSON(guildID, configJSON string) error {
	_, err := s.db.Exec(`
		INSERT INTO xp_config(guild_id, config_json, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET config_json = excluded.config_json, updated_at = excluded.updated_at;
	`, guildID, configJSON, nowEpoch())
	return err
}
