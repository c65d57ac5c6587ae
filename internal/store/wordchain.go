package store

// GetOrCreateWordChainRecord returns a user's win/loss record row.
func (s *Store) GetOrCreateWordChainRecord(userID, displayName string) (*WordChainRecord, error) {
	var r WordChainRecord
	err := s.db.Get(&r, `SELECT user_id, display_name, wins, losses, updated_at FROM word_chain_records WHERE user_id = ?`, userID)
	if err == nil {
		return &r, nil
	}
	if !isNoRows(err) {
		return nil, err
	}
	now := nowEpoch()
	if _, err := s.db.Exec(`
		INSERT INTO word_chain_records(user_id, display_name, wins, losses, updated_at) VALUES(?, ?, 0, 0, ?);
	`, userID, displayName, now); err != nil {
		return nil, err
	}
	return &WordChainRecord{UserID: userID, DisplayName: displayName, UpdatedAt: now}, nil
}

// RecordWin/RecordLoss increment a user's word-chain tally.
func (s *Store) RecordWin(userID, displayName string) error {
	return s.bumpRecord(userID, displayName, 1, 0)
}
func (s *Store) RecordLoss(userID, displayName string) error {
	return s.bumpRecord(userID, displayName, 0, 1)
}

func (s *Store) bumpRecord(userID, displayName string, winDelta, lossDelta int64) error {
	now := nowEpoch()
	_, err := s.db.Exec(`
		INSERT INTO word_chain_records(user_id, display_name, wins, losses, updated_at) VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			wins = wins + excluded.wins,
			losses = losses + excluded.losses,
			updated_at = excluded.updated_at;
	`, userID, displayName, winDelta, lossDelta, now)
	return err
}
