package store

// GetOrCreateIncidentState returns the guild's incident scheduling row,
// seeding next_incident_at to firstNextIncidentAt on first touch. The
// incident scheduler passes the current time, so a guild's first scan
// fires an incident.
func (s *Store) GetOrCreateIncidentState(guildID string, firstNextIncidentAt int64) (*IncidentState, error) {
	var st IncidentState
	err := s.db.Get(&st, `SELECT guild_id, next_incident_at, last_incident_at, updated_at FROM aby_incident_state WHERE guild_id = ?`, guildID)
	if err == nil {
		return &st, nil
	}
	if !isNoRows(err) {
		return nil, err
	}
	now := nowEpoch()
	if _, err := s.db.Exec(`
		INSERT INTO aby_incident_state(guild_id, next_incident_at, last_incident_at, updated_at) VALUES(?, ?, 0, ?);
	`, guildID, firstNextIncidentAt, now); err != nil {
		return nil, err
	}
	return &IncidentState{GuildID: guildID, NextIncidentAt: firstNextIncidentAt, UpdatedAt: now}, nil
}

// SetIncidentSchedule records the most recent incident fire time and the
// next scheduled fire time. Only the Incident Scheduler writes this row
// (design doc Section 4.E invariant).
func (s *Store) SetIncidentSchedule(guildID string, lastIncidentAt, nextIncidentAt int64) error {
	_, err := s.db.Exec(`
		UPDATE aby_incident_state SET last_incident_at = ?, next_incident_at = ?, updated_at = ?
		WHERE guild_id = ?;
	`, lastIncidentAt, nextIncidentAt, nowEpoch(), guildID)
	return err
}

// InsertIncidentLog appends an immutable incident record.
func (t *Tx) InsertIncidentLog(e IncidentLogEntry) error {
	_, err := t.tx.Exec(`
		INSERT INTO aby_incident_log(guild_id, kind, title, description, delta_debt, created_at)
		VALUES(?, ?, ?, ?, ?, ?);
	`, e.GuildID, e.Kind, e.Title, e.Description, e.DeltaDebt, nowEpoch())
	return err
}
