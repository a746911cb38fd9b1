package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using a pure-Go SQLite driver, mirroring
// the connection and schema-on-open conventions used throughout this
// codebase's other storage layers.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS discoveries (
	id                TEXT PRIMARY KEY,
	source            TEXT NOT NULL,
	source_id         TEXT NOT NULL,
	title             TEXT NOT NULL,
	url               TEXT NOT NULL,
	raw_score         REAL NOT NULL,
	raw_data          TEXT,
	content_hash      TEXT NOT NULL UNIQUE,
	status            TEXT NOT NULL,
	relevance_score   REAL,
	velocity_score    REAL,
	risk_level        TEXT,
	platform_fit      TEXT,
	suggested_formats TEXT,
	discovered_at     TEXT NOT NULL,
	analyzed_at       TEXT
);
CREATE INDEX IF NOT EXISTS idx_discoveries_status ON discoveries(status, discovered_at);

CREATE TABLE IF NOT EXISTS creations (
	id              TEXT PRIMARY KEY,
	discovery_id    TEXT NOT NULL,
	platform        TEXT NOT NULL,
	format          TEXT NOT NULL,
	title           TEXT NOT NULL,
	body            TEXT NOT NULL,
	media_urls      TEXT,
	skills_used     TEXT,
	risk_score      REAL NOT NULL DEFAULT 0,
	risk_flags      TEXT,
	quality_score   REAL NOT NULL DEFAULT 0,
	quality_issues  TEXT,
	variant_group   TEXT,
	variant_label   TEXT,
	approval_status TEXT NOT NULL,
	video           TEXT,
	created_at      TEXT NOT NULL,
	approved_at     TEXT
);
CREATE INDEX IF NOT EXISTS idx_creations_approval ON creations(approval_status);
CREATE INDEX IF NOT EXISTS idx_creations_variant_group ON creations(variant_group);

CREATE TABLE IF NOT EXISTS publications (
	id                        TEXT PRIMARY KEY,
	creation_id               TEXT NOT NULL,
	platform                  TEXT NOT NULL,
	platform_post_id          TEXT NOT NULL,
	platform_url              TEXT,
	arbitrage_window_minutes  INTEGER,
	published_at              TEXT NOT NULL,
	UNIQUE(creation_id, platform)
);
CREATE INDEX IF NOT EXISTS idx_publications_published_at ON publications(published_at);

CREATE TABLE IF NOT EXISTS metrics (
	id               TEXT PRIMARY KEY,
	publication_id   TEXT NOT NULL,
	interval         TEXT NOT NULL,
	views            INTEGER NOT NULL DEFAULT 0,
	likes            INTEGER NOT NULL DEFAULT 0,
	comments         INTEGER NOT NULL DEFAULT 0,
	shares           INTEGER NOT NULL DEFAULT 0,
	clicks           INTEGER NOT NULL DEFAULT 0,
	followers_gained INTEGER NOT NULL DEFAULT 0,
	engagement_rate  REAL NOT NULL DEFAULT 0,
	collected_at     TEXT NOT NULL,
	UNIQUE(publication_id, interval)
);

CREATE TABLE IF NOT EXISTS skills (
	name              TEXT PRIMARY KEY,
	category          TEXT NOT NULL,
	platform          TEXT,
	confidence        REAL NOT NULL,
	status            TEXT NOT NULL,
	version           INTEGER NOT NULL,
	content           TEXT NOT NULL,
	tags              TEXT,
	total_uses        INTEGER NOT NULL DEFAULT 0,
	success_count     INTEGER NOT NULL DEFAULT 0,
	failure_streak    INTEGER NOT NULL DEFAULT 0,
	last_used_at      TEXT,
	last_validated_at TEXT,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL,
	file_path         TEXT
);

CREATE TABLE IF NOT EXISTS skill_metrics (
	id          TEXT PRIMARY KEY,
	skill_name  TEXT NOT NULL,
	agent       TEXT NOT NULL,
	task        TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	score       REAL NOT NULL,
	context     TEXT,
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_skill_metrics_name ON skill_metrics(skill_name, recorded_at);

CREATE TABLE IF NOT EXISTS experiments (
	id                     TEXT PRIMARY KEY,
	skill_name             TEXT NOT NULL,
	variant_a_description  TEXT NOT NULL,
	variant_b_description  TEXT NOT NULL,
	metric_target          TEXT NOT NULL,
	variant_a_score        REAL NOT NULL DEFAULT 0,
	variant_a_samples      INTEGER NOT NULL DEFAULT 0,
	variant_b_score        REAL NOT NULL DEFAULT 0,
	variant_b_samples      INTEGER NOT NULL DEFAULT 0,
	winner                 TEXT,
	p_value                REAL,
	effect_size            REAL,
	status                 TEXT NOT NULL,
	started_at             TEXT NOT NULL,
	completed_at           TEXT
);
CREATE INDEX IF NOT EXISTS idx_experiments_status ON experiments(status);

CREATE TABLE IF NOT EXISTS agent_runs (
	id                 TEXT PRIMARY KEY,
	agent              TEXT NOT NULL,
	task               TEXT NOT NULL,
	provider           TEXT,
	input_tokens       INTEGER NOT NULL DEFAULT 0,
	output_tokens      INTEGER NOT NULL DEFAULT 0,
	estimated_cost_usd REAL NOT NULL DEFAULT 0,
	duration_seconds   REAL NOT NULL DEFAULT 0,
	status             TEXT NOT NULL,
	started_at         TEXT NOT NULL,
	completed_at       TEXT
);
CREATE INDEX IF NOT EXISTS idx_agent_runs_started_at ON agent_runs(started_at);
`

// NewSQLiteStore opens (or creates) a SQLite-backed Store. Use ":memory:"
// for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close shuts down the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
