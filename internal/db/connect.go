package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:traingate.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/traingate?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL DEFAULT 'EMPLOYEE',
  disabled INTEGER NOT NULL DEFAULT 0,
  password_hash TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS main_modules (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_index INTEGER NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  youtube_id TEXT NOT NULL DEFAULT '',
  active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS modules (
  id TEXT PRIMARY KEY,
  sort_order INTEGER NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  youtube_id TEXT NOT NULL DEFAULT '',
  main_module_id INTEGER REFERENCES main_modules(id) ON DELETE SET NULL,
  order_within_main INTEGER
);

CREATE TABLE IF NOT EXISTS quizzes (
  id TEXT PRIMARY KEY,
  module_id TEXT NOT NULL UNIQUE REFERENCES modules(id) ON DELETE CASCADE,
  pass_score INTEGER NOT NULL DEFAULT 70,
  time_limit_sec INTEGER
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  quiz_id TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
  text TEXT NOT NULL,
  options_json TEXT NOT NULL,
  correct_index INTEGER NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  question_type TEXT NOT NULL DEFAULT '',
  correct_answer TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS attempts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  quiz_id TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
  attempt_no INTEGER NOT NULL,
  score INTEGER NOT NULL,
  passed INTEGER NOT NULL,
  answers_json TEXT NOT NULL,
  submitted_at INTEGER NOT NULL,
  UNIQUE (user_id, quiz_id, attempt_no)
);

CREATE TABLE IF NOT EXISTS certificates (
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  main_module_id INTEGER NOT NULL DEFAULT 0, -- 0 = global certificate
  file_path TEXT NOT NULL,
  total_score INTEGER NOT NULL,
  issued_at INTEGER NOT NULL,
  PRIMARY KEY (user_id, main_module_id)
);

CREATE TABLE IF NOT EXISTS question_imports (
  id TEXT PRIMARY KEY,
  uploaded_by TEXT NOT NULL,
  file_name TEXT NOT NULL,
  total INTEGER NOT NULL,
  imported INTEGER NOT NULL,
  failed INTEGER NOT NULL,
  error_log TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL DEFAULT 'EMPLOYEE',
  disabled BOOLEAN NOT NULL DEFAULT FALSE,
  password_hash TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS main_modules (
  id BIGSERIAL PRIMARY KEY,
  order_index INTEGER NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  youtube_id TEXT NOT NULL DEFAULT '',
  active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS modules (
  id TEXT PRIMARY KEY,
  sort_order INTEGER NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  youtube_id TEXT NOT NULL DEFAULT '',
  main_module_id BIGINT REFERENCES main_modules(id) ON DELETE SET NULL,
  order_within_main INTEGER
);

CREATE TABLE IF NOT EXISTS quizzes (
  id TEXT PRIMARY KEY,
  module_id TEXT NOT NULL UNIQUE REFERENCES modules(id) ON DELETE CASCADE,
  pass_score INTEGER NOT NULL DEFAULT 70,
  time_limit_sec INTEGER
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  quiz_id TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
  text TEXT NOT NULL,
  options_json TEXT NOT NULL,
  correct_index INTEGER NOT NULL,
  active BOOLEAN NOT NULL DEFAULT TRUE,
  question_type TEXT NOT NULL DEFAULT '',
  correct_answer TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS attempts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  quiz_id TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
  attempt_no INTEGER NOT NULL,
  score INTEGER NOT NULL,
  passed BOOLEAN NOT NULL,
  answers_json TEXT NOT NULL,
  submitted_at BIGINT NOT NULL,
  UNIQUE (user_id, quiz_id, attempt_no)
);

CREATE TABLE IF NOT EXISTS certificates (
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  main_module_id BIGINT NOT NULL DEFAULT 0,
  file_path TEXT NOT NULL,
  total_score INTEGER NOT NULL,
  issued_at BIGINT NOT NULL,
  PRIMARY KEY (user_id, main_module_id)
);

CREATE TABLE IF NOT EXISTS question_imports (
  id TEXT PRIMARY KEY,
  uploaded_by TEXT NOT NULL,
  file_name TEXT NOT NULL,
  total INTEGER NOT NULL,
  imported INTEGER NOT NULL,
  failed INTEGER NOT NULL,
  error_log TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
);
`
