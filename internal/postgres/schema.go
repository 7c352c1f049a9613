package postgres

// Schema is applied on every Attach; all statements are idempotent.
// Each storage class has its own column so values keep their native
// PostgreSQL type; absent is authoritative for absence.
const Schema = `
CREATE TABLE IF NOT EXISTS strata_properties (
    name TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS strata_versions (
    id BIGSERIAL PRIMARY KEY,
    property TEXT NOT NULL REFERENCES strata_properties(name),
    subject_id UUID NOT NULL,
    added_at TIMESTAMPTZ NOT NULL,
    absent BOOLEAN NOT NULL DEFAULT FALSE,
    value_int BIGINT,
    value_real DOUBLE PRECISION,
    value_text TEXT,
    value_blob BYTEA
);

CREATE INDEX IF NOT EXISTS idx_strata_versions_subject
    ON strata_versions (property, subject_id, added_at);
`
