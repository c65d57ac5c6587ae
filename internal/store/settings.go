package store

// GetOrCreateUserSettings returns a user's settings row, creating it
// with opt-in defaults on first interaction.
func (s *Store) GetOrCreateUserSettings(userID string) (*UserSettings, error) {
	var u UserSettings
	err := s.db.Get(&u, `
		SELECT user_id, dm_opt_in, noise_opt_in, stamps_opt_in, stamps, stamps_rewarded,
			stamp_title, last_stamp_at, last_reward_at, created_at, updated_at
		FROM user_settings WHERE user_id = ?;
	`, userID)
	if err == nil {
		return &u, nil
	}
	if !isNoRows(err) {
		return nil, err
	}
	now := nowEpoch()
	if _, err := s.db.Exec(`
		INSERT INTO user_settings(user_id, dm_opt_in, noise_opt_in, stamps_opt_in, created_at, updated_at)
		VALUES(?, 1, 1, 1, ?, ?);
	`, userID, now, now); err != nil {
		return nil, err
	}
	return &UserSettings{UserID: userID, DMOptIn: true, NoiseOptIn: true, StampsOptIn: true, CreatedAt: now, UpdatedAt: now}, nil
}

// TopStamps returns the top N users by stamp count, for the stamps
// leaderboard and the web-sync snapshot.
func (s *Store) TopStamps(limit int) ([]UserSettings, error) {
	var rows []UserSettings
	err := s.db.Select(&rows, `
		SELECT user_id, dm_opt_in, noise_opt_in, stamps_opt_in, stamps, stamps_rewarded,
			stamp_title, last_stamp_at, last_reward_at, created_at, updated_at
		FROM user_settings WHERE stamps > 0 ORDER BY stamps DESC LIMIT ?;
	`, limit)
	return rows, err
}
