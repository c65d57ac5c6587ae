package store

// migrationSteps is the additive-only ladder, directly modeled on
// yume_db.py's v1..v8 ladder (user_settings/world_state through
// incidents), extended with v9 (xp + word-chain) and v10 (LLM budget
// ledger) for this repo's scope. Every step only adds tables/columns.
var migrationSteps = []migrationStep{
	{version: 1, up: migrateV1},
	{version: 2, up: migrateV2},
	{version: 3, up: migrateV3},
	{version: 4, up: migrateV4},
	{version: 5, up: migrateV5},
	{version: 6, up: migrateV6},
	{version: 7, up: migrateV7},
	{version: 8, up: migrateV8},
	{version: 9, up: migrateV9},
	{version: 10, up: migrateV10},
}

func migrateV1(tx execer) error {
	now := nowEpoch()
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS user_settings (
			user_id INTEGER PRIMARY KEY,
			dm_opt_in INTEGER NOT NULL DEFAULT 1,
			noise_opt_in INTEGER NOT NULL DEFAULT 1,
			stamps_opt_in INTEGER NOT NULL DEFAULT 1,
			stamps INTEGER NOT NULL DEFAULT 0,
			stamps_rewarded INTEGER NOT NULL DEFAULT 0,
			stamp_title TEXT NOT NULL DEFAULT '',
			last_stamp_at INTEGER NOT NULL DEFAULT 0,
			last_reward_at INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS world_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			weather TEXT NOT NULL,
			weather_changed_at INTEGER NOT NULL,
			weather_next_change_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`); err != nil {
		return err
	}

	_, err := tx.Exec(`
		INSERT INTO world_state(id, weather, weather_changed_at, weather_next_change_at, updated_at)
		SELECT 1, 'clear', ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM world_state WHERE id = 1);
	`, now, now+6*3600, now)
	return err
}

func migrateV2(tx execer) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bot_config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS daily_rules (
			date_ymd TEXT PRIMARY KEY,
			rule_no INTEGER NOT NULL,
			rule_text TEXT NOT NULL,
			posted_channel_id TEXT,
			posted_at INTEGER,
			attempts INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rule_suggestions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			guild_id TEXT,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func migrateV3(tx execer) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS daily_meals (
			date_ymd TEXT PRIMARY KEY,
			meal_text TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			last_requested_at INTEGER NOT NULL
		);
	`)
	return err
}

func migrateV4(tx execer) error {
	// Columns already present from v1 in this fresh schema; kept as its
	// own step so the ladder mirrors yume_db.py's phase numbering.
	return nil
}

func migrateV5(tx execer) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS aby_user_economy (
			user_id TEXT PRIMARY KEY,
			credits INTEGER NOT NULL DEFAULT 0,
			water INTEGER NOT NULL DEFAULT 0,
			last_explore_ymd TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS aby_guild_debt (
			guild_id TEXT PRIMARY KEY,
			debt INTEGER NOT NULL,
			interest_rate REAL NOT NULL,
			last_interest_ymd TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS aby_economy_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			guild_id TEXT,
			user_id TEXT,
			kind TEXT NOT NULL,
			delta_credits INTEGER NOT NULL DEFAULT 0,
			delta_water INTEGER NOT NULL DEFAULT 0,
			delta_debt INTEGER NOT NULL DEFAULT 0,
			memo TEXT,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_aby_econ_log_guild_time ON aby_economy_log(guild_id, created_at);`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func migrateV6(tx execer) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS aby_inventory (
			user_id TEXT NOT NULL,
			item_key TEXT NOT NULL,
			qty INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, item_key)
		);`,
		`CREATE TABLE IF NOT EXISTS aby_buffs (
			user_id TEXT PRIMARY KEY,
			buff_key TEXT NOT NULL DEFAULT '',
			stacks INTEGER NOT NULL DEFAULT 0,
			expires_at INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_aby_inv_user ON aby_inventory(user_id);`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func migrateV7(tx execer) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS aby_explore_meta (
			user_id TEXT NOT NULL,
			date_ymd TEXT NOT NULL,
			weather TEXT NOT NULL,
			success INTEGER NOT NULL DEFAULT 0,
			credits_delta INTEGER NOT NULL DEFAULT 0,
			water_delta INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, date_ymd)
		);`,
		`CREATE TABLE IF NOT EXISTS aby_quest_board (
			guild_id TEXT NOT NULL,
			scope TEXT NOT NULL,
			board_key TEXT NOT NULL,
			quest_no INTEGER NOT NULL,
			quest_type TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			target_key TEXT,
			target_qty INTEGER NOT NULL DEFAULT 0,
			reward_points INTEGER NOT NULL DEFAULT 0,
			reward_credits INTEGER NOT NULL DEFAULT 0,
			reward_item_key TEXT,
			reward_item_qty INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (guild_id, scope, board_key, quest_no)
		);`,
		`CREATE TABLE IF NOT EXISTS aby_quest_claims (
			guild_id TEXT NOT NULL,
			scope TEXT NOT NULL,
			board_key TEXT NOT NULL,
			quest_no INTEGER NOT NULL,
			user_id TEXT NOT NULL,
			claimed_at INTEGER NOT NULL,
			PRIMARY KEY (guild_id, scope, board_key, quest_no, user_id)
		);`,
		`CREATE TABLE IF NOT EXISTS aby_weekly_points (
			guild_id TEXT NOT NULL,
			week_key TEXT NOT NULL,
			user_id TEXT NOT NULL,
			points INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (guild_id, week_key, user_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_aby_qb_guild ON aby_quest_board(guild_id, scope, board_key);`,
		`CREATE INDEX IF NOT EXISTS idx_aby_qc_user ON aby_quest_claims(user_id, claimed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_aby_wp_week ON aby_weekly_points(guild_id, week_key, points);`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func migrateV8(tx execer) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS aby_incident_state (
			guild_id TEXT PRIMARY KEY,
			next_incident_at INTEGER NOT NULL DEFAULT 0,
			last_incident_at INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS aby_incident_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			guild_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			delta_debt INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_aby_incident_log_guild_time ON aby_incident_log(guild_id, created_at);`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func migrateV9(tx execer) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS xp_state (
			guild_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			total_xp INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 0,
			last_xp_at_ts INTEGER NOT NULL DEFAULT 0,
			last_msg_sig TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (guild_id, user_id)
		);`,
		`CREATE TABLE IF NOT EXISTS xp_config (
			guild_id TEXT PRIMARY KEY,
			config_json TEXT NOT NULL DEFAULT '{}',
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS word_chain_records (
			user_id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL DEFAULT '',
			wins INTEGER NOT NULL DEFAULT 0,
			losses INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_xp_state_guild_xp ON xp_state(guild_id, total_xp);`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func migrateV10(tx execer) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS llm_usage (
			month TEXT PRIMARY KEY,
			usd REAL NOT NULL DEFAULT 0,
			tokens INTEGER NOT NULL DEFAULT 0,
			calls INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		);
	`)
	return err
}
