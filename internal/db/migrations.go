package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS parking_slots (
		id VARCHAR(16) PRIMARY KEY,
		class VARCHAR(16) NOT NULL,
		occupied BOOLEAN NOT NULL DEFAULT FALSE,
		occupant_plate VARCHAR(32),
		occupied_since TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT chk_parking_slots_occupant CHECK (
			(occupied AND occupant_plate IS NOT NULL AND occupied_since IS NOT NULL)
			OR (NOT occupied AND occupant_plate IS NULL AND occupied_since IS NULL)
		)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_parking_slots_class ON parking_slots (class);`,
	`CREATE INDEX IF NOT EXISTS idx_parking_slots_occupant_plate ON parking_slots (occupant_plate);`,
	`CREATE TABLE IF NOT EXISTS parking_sessions (
		id BIGSERIAL PRIMARY KEY,
		plate VARCHAR(32) NOT NULL,
		vehicle_type VARCHAR(32) NOT NULL,
		slot_id VARCHAR(16) NOT NULL,
		entry_time TIMESTAMPTZ NOT NULL,
		exit_time TIMESTAMPTZ,
		duration_minutes BIGINT,
		amount BIGINT,
		status VARCHAR(8) NOT NULL DEFAULT 'OPEN',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_parking_sessions_plate ON parking_sessions (plate);`,
	`CREATE INDEX IF NOT EXISTS idx_parking_sessions_status ON parking_sessions (status);`,
	// One OPEN session per plate, enforced at the storage layer so two
	// concurrent entries cannot both commit.
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_parking_sessions_open_plate
		ON parking_sessions (plate) WHERE status = 'OPEN';`,
	`CREATE OR REPLACE FUNCTION set_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_parking_slots_updated_at') THEN
			CREATE TRIGGER trg_parking_slots_updated_at
				BEFORE UPDATE ON parking_slots
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_parking_sessions_updated_at') THEN
			CREATE TRIGGER trg_parking_sessions_updated_at
				BEFORE UPDATE ON parking_sessions
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
