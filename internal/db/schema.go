package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL CHECK (role IN ('DONOR', 'NGO', 'VOLUNTEER', 'ADMIN')),
    phone         TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS donors (
    id      INTEGER PRIMARY KEY,
    user_id INTEGER NOT NULL UNIQUE REFERENCES users(id),
    address TEXT
);

CREATE TABLE IF NOT EXISTS ngos (
    id                INTEGER PRIMARY KEY,
    user_id           INTEGER NOT NULL UNIQUE REFERENCES users(id),
    organization_name TEXT NOT NULL,
    address           TEXT,
    latitude          REAL,
    longitude         REAL
);

CREATE TABLE IF NOT EXISTS volunteers (
    id           INTEGER PRIMARY KEY,
    user_id      INTEGER NOT NULL UNIQUE REFERENCES users(id),
    availability TEXT NOT NULL DEFAULT 'AVAILABLE' CHECK (availability IN ('AVAILABLE', 'BUSY'))
);

CREATE TABLE IF NOT EXISTS donations (
    id                 INTEGER PRIMARY KEY,
    donor_id           INTEGER NOT NULL REFERENCES donors(id),
    ngo_id             INTEGER REFERENCES ngos(id),
    food_name          TEXT NOT NULL,
    food_type          TEXT NOT NULL CHECK (food_type IN ('VEG', 'NON_VEG')),
    quantity           INTEGER NOT NULL CHECK (quantity > 0),
    requested_quantity INTEGER CHECK (requested_quantity > 0),
    prepared_time      DATETIME,
    expiry_time        DATETIME,
    latitude           REAL,
    longitude          REAL,
    status             TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN (
        'PENDING', 'REQUESTED', 'APPROVED', 'ASSIGNED',
        'ACCEPTED_PASSAGE', 'OUT_FOR_DELIVERY', 'NEAR_LOCATION', 'DELIVERED')),
    photo              BLOB,
    photo_thumb        BLOB,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_donations_status ON donations(status);

CREATE TABLE IF NOT EXISTS pickups (
    id            INTEGER PRIMARY KEY,
    donation_id   INTEGER NOT NULL UNIQUE REFERENCES donations(id),
    volunteer_id  INTEGER NOT NULL REFERENCES volunteers(id),
    status        TEXT NOT NULL CHECK (status IN (
        'ASSIGNED', 'ACCEPTED_PASSAGE', 'OUT_FOR_DELIVERY', 'NEAR_LOCATION', 'DELIVERED')),
    pickup_time   DATETIME NOT NULL,
    delivery_time DATETIME
);

CREATE TABLE IF NOT EXISTS notifications (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    type       TEXT NOT NULL,
    message    TEXT NOT NULL,
    is_read    INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
