package sqlstore

import (
	"context"
	"strings"
)

// schema is written once for both dialects; the placeholders are swapped
// for the column types each database expects.
const schema = `
CREATE TABLE IF NOT EXISTS category (
	id         {{id}} PRIMARY KEY,
	name       TEXT NOT NULL,
	sub_name   TEXT,
	created_at {{ts}} NOT NULL DEFAULT {{now}}
);

CREATE TABLE IF NOT EXISTS collection (
	id         {{id}} PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at {{ts}} NOT NULL DEFAULT {{now}}
);

CREATE TABLE IF NOT EXISTS book (
	id            {{id}} PRIMARY KEY,
	name          TEXT NOT NULL,
	category_id   {{id}} NOT NULL REFERENCES category(id) ON DELETE RESTRICT,
	collection_id {{id}} NOT NULL REFERENCES collection(id) ON DELETE RESTRICT,
	publisher     TEXT,
	launch_date   DATE,
	created_at    {{ts}} NOT NULL DEFAULT {{now}}
);

CREATE TABLE IF NOT EXISTS member (
	id         {{id}} PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	phone      TEXT,
	created_at {{ts}} NOT NULL DEFAULT {{now}}
);

CREATE TABLE IF NOT EXISTS membership (
	id         {{id}} PRIMARY KEY,
	member_id  {{id}} NOT NULL UNIQUE REFERENCES member(id) ON DELETE CASCADE,
	status     TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
	created_at {{ts}} NOT NULL DEFAULT {{now}}
);

CREATE TABLE IF NOT EXISTS issuance (
	id          {{id}} PRIMARY KEY,
	book_id     {{id}} NOT NULL REFERENCES book(id) ON DELETE RESTRICT,
	member_id   {{id}} NOT NULL REFERENCES member(id) ON DELETE RESTRICT,
	issued_by   TEXT,
	issue_date  {{ts}} NOT NULL DEFAULT {{now}},
	return_date {{ts}} NOT NULL,
	status      TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'returned')),
	created_at  {{ts}} NOT NULL DEFAULT {{now}}
);

CREATE INDEX IF NOT EXISTS issuance_status_return_date_idx ON issuance (status, return_date);

CREATE INDEX IF NOT EXISTS issuance_book_id_idx ON issuance (book_id);

CREATE TABLE IF NOT EXISTS audit_log (
	id          {{id}} PRIMARY KEY,
	event_id    TEXT NOT NULL UNIQUE,
	event_type  TEXT NOT NULL,
	issuance_id TEXT NOT NULL,
	payload     TEXT NOT NULL,
	occurred_at {{ts}} NOT NULL,
	created_at  {{ts}} NOT NULL DEFAULT {{now}}
);

CREATE INDEX IF NOT EXISTS audit_log_issuance_id_idx ON audit_log (issuance_id);
`

var dialectTypes = map[string]*strings.Replacer{
	dialectPostgres: strings.NewReplacer("{{id}}", "UUID", "{{ts}}", "TIMESTAMPTZ", "{{now}}", "now()"),
	dialectSQLite:   strings.NewReplacer("{{id}}", "TEXT", "{{ts}}", "TIMESTAMP", "{{now}}", "CURRENT_TIMESTAMP"),
}

// Migrate creates any missing table or index. It is safe to run on every start.
func (s *Store) Migrate(ctx context.Context) error {
	ddl := dialectTypes[s.dialect].Replace(schema)
	for _, stmt := range strings.Split(ddl, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fail("migrate", err)
		}
	}
	return nil
}
