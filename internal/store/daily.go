package store

// GetDailyRule returns the cached rule-of-the-day row, if materialized.
func (s *Store) GetDailyRule(ymd string) (*DailyRule, bool, error) {
	var r DailyRule
	err := s.db.Get(&r, `
		SELECT date_ymd, rule_no, rule_text, posted_channel_id, posted_at, attempts, created_at
		FROM daily_rules WHERE date_ymd = ?;
	`, ymd)
	if isNoRows(err) {
		return nil, false, nil
	}
	return &r, err == nil, err
}

// InsertDailyRule materializes today's rule text with the next
// monotonic rule_no.
func (s *Store) InsertDailyRule(ymd, ruleText string) (*DailyRule, error) {
	var maxNo int64
	if err := s.db.Get(&maxNo, `SELECT COALESCE(MAX(rule_no), 0) FROM daily_rules`); err != nil {
		return nil, err
	}
	ruleNo := maxNo + 1
	now := nowEpoch()
	if _, err := s.db.Exec(`
		INSERT INTO daily_rules(date_ymd, rule_no, rule_text, attempts, created_at) VALUES(?, ?, ?, 0, ?)
		ON CONFLICT(date_ymd) DO NOTHING;
	`, ymd, ruleNo, ruleText, now); err != nil {
		return nil, err
	}
	return &DailyRule{DateYMD: ymd, RuleNo: ruleNo, RuleText: ruleText, CreatedAt: now}, nil
}

// MarkDailyRulePosted records that the rule-of-the-day was announced.
func (s *Store) MarkDailyRulePosted(ymd, channelID string) error {
	now := nowEpoch()
	_, err := s.db.Exec(`
		UPDATE daily_rules SET posted_channel_id = ?, posted_at = ?, attempts = attempts + 1 WHERE date_ymd = ?;
	`, channelID, now, ymd)
	return err
}

// GetDailyMeal returns the cached meal-of-the-day text, if any.
func (s *Store) GetDailyMeal(ymd string) (*DailyMeal, bool, error) {
	var m DailyMeal
	err := s.db.Get(&m, `SELECT date_ymd, meal_text, created_at, last_requested_at FROM daily_meals WHERE date_ymd = ?;`, ymd)
	if isNoRows(err) {
		return nil, false, nil
	}
	return &m, err == nil, err
}

// InsertDailyMeal caches today's meal text.
func (s *Store) InsertDailyMeal(ymd, mealText string) error {
	now := nowEpoch()
	_, err := s.db.Exec(`
		INSERT INTO daily_meals(date_ymd, meal_text, created_at, last_requested_at) VALUES(?, ?, ?, ?)
		ON CONFLICT(date_ymd) DO UPDATE SET last_requested_at = excluded.last_requested_at;
	`, ymd, mealText, now, now)
	return err
}

// RecentRuleSuggestions returns up to limit recent free-form hints for
// rule generation.
func (s *Store) RecentRuleSuggestions(limit int) ([]string, error) {
	var out []string
	err := s.db.Select(&out, `SELECT content FROM rule_suggestions ORDER BY created_at DESC LIMIT ?;`, limit)
	return out, err
}

// InsertRuleSuggestion records a free-form hint.
func (s *Store) InsertRuleSuggestion(userID, guildID, content string) error {
	_, err := s.db.Exec(`
		INSERT INTO rule_suggestions(user_id, guild_id, content, created_at) VALUES(?, ?, ?, ?);
	`, userID, nullable(guildID), content, nowEpoch())
	return err
}
