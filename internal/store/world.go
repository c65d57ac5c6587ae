package store

// GetWorldState reads the world_state singleton (created by migrateV1).
func (s *Store) GetWorldState() (*WorldState, error) { return getWorldState(s.conn()) }
func (t *Tx) GetWorldState() (*WorldState, error)     { return getWorldState(t.conn()) }

func getWorldState(c conn) (*WorldState, error) {
	var w WorldState
	if err := c.Get(&w, `SELECT id, weather, weather_changed_at, weather_next_change_at, updated_at FROM world_state WHERE id = 1`); err != nil {
		return nil, err
	}
	return &w, nil
}

// SetWorldWeather persists a weather rotation: the only writer is the
// World Scheduler (design doc Section 4.C invariant).
func (s *Store) SetWorldWeather(weather string, changedAt, nextChangeAt int64) error {
	_, err := s.db.Exec(`
		UPDATE world_state SET weather = ?, weather_changed_at = ?, weather_next_change_at = ?, updated_at = ?
		WHERE id = 1;
	`, weather, changedAt, nextChangeAt, nowEpoch())
	return err
}

// GetBotConfig reads a free-form config value, or ("", false) if unset.
func (s *Store) GetBotConfig(key string) (string, bool, error) {
	var row BotConfig
	err := s.db.Get(&row, `SELECT key, value, updated_at FROM bot_config WHERE key = ?`, key)
	if err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return row.Value, true, nil
}

// SetBotConfig upserts a free-form config value.
func (s *Store) SetBotConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO bot_config(key, value, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;
	`, key, value, nowEpoch())
	return err
}
