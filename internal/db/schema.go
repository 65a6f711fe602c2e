package db

import "context"

const schema = `
CREATE TABLE IF NOT EXISTS providers (
	id                 TEXT PRIMARY KEY,
	kind               TEXT NOT NULL CHECK (kind IN ('hospital', 'doctor')),
	name               TEXT NOT NULL,
	address            TEXT,
	city               TEXT,
	state              TEXT,
	lat                DOUBLE PRECISION,
	lng                DOUBLE PRECISION,
	rating             DOUBLE PRECISION,
	specialties        TEXT[],
	specialization     TEXT,
	qualification      TEXT,
	experience_years   INTEGER,
	consultation_fee   DOUBLE PRECISION,
	hospital_name      TEXT,
	phone              TEXT,
	email              TEXT,
	website            TEXT,
	emergency_services BOOLEAN NOT NULL DEFAULT FALSE,
	bed_count          INTEGER
);
CREATE INDEX IF NOT EXISTS providers_kind_city_idx ON providers (kind, lower(btrim(city)));
CREATE INDEX IF NOT EXISTS providers_kind_state_idx ON providers (kind, lower(btrim(state)));
CREATE INDEX IF NOT EXISTS providers_kind_latlng_idx ON providers (kind, lat, lng) WHERE lat IS NOT NULL;
`

// Migrate creates the providers table and its indexes if they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schema)
	return err
}
