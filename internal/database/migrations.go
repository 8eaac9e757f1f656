package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migration is one versioned schema change.  MySQL runs a single statement
// per Exec, so each migration carries exactly one statement.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations returns the schema in application order.
func Migrations() []Migration {
	return []Migration{
		{1, "create admins", `
CREATE TABLE IF NOT EXISTS admins (
  id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  email VARCHAR(255) NOT NULL UNIQUE,
  password_hash VARCHAR(255) NOT NULL,
  national_id VARCHAR(32) NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  deleted_at DATETIME NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
		{2, "create managers", staffTable("managers")},
		{3, "create receptionists", staffTable("receptionists")},
		{4, "create clients", `
CREATE TABLE IF NOT EXISTS clients (
  id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  email VARCHAR(255) NOT NULL UNIQUE,
  password_hash VARCHAR(255) NOT NULL,
  national_id VARCHAR(10) NOT NULL UNIQUE,
  country VARCHAR(128) NOT NULL,
  gender VARCHAR(16) NOT NULL,
  image VARCHAR(255) NULL,
  created_by_kind VARCHAR(16) NOT NULL,
  created_by_id BIGINT UNSIGNED NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  deleted_at DATETIME NULL,
  KEY idx_clients_created_by (created_by_kind, created_by_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
		{5, "create floors", `
CREATE TABLE IF NOT EXISTS floors (
  id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  number VARCHAR(16) NOT NULL UNIQUE,
  created_by_kind VARCHAR(16) NOT NULL,
  created_by_id BIGINT UNSIGNED NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  KEY idx_floors_created_by (created_by_kind, created_by_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
		{6, "create rooms", `
CREATE TABLE IF NOT EXISTS rooms (
  id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  number VARCHAR(32) NOT NULL UNIQUE,
  capacity INT UNSIGNED NOT NULL,
  price BIGINT NOT NULL,
  floor_id BIGINT UNSIGNED NOT NULL,
  is_available TINYINT(1) NOT NULL DEFAULT 1,
  created_by_kind VARCHAR(16) NOT NULL,
  created_by_id BIGINT UNSIGNED NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  KEY idx_rooms_created_by (created_by_kind, created_by_id),
  CONSTRAINT fk_rooms_floor FOREIGN KEY (floor_id) REFERENCES floors(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
		{7, "create reservations", `
CREATE TABLE IF NOT EXISTS reservations (
  id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  client_id BIGINT UNSIGNED NOT NULL,
  room_id BIGINT UNSIGNED NOT NULL,
  check_in DATE NOT NULL,
  check_out DATE NOT NULL,
  accompanying_number INT UNSIGNED NOT NULL DEFAULT 0,
  price BIGINT NOT NULL,
  is_approved TINYINT(1) NOT NULL DEFAULT 0,
  payment_reference VARCHAR(255) NULL,
  created_by_kind VARCHAR(16) NOT NULL,
  created_by_id BIGINT UNSIGNED NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  deleted_at DATETIME NULL,
  KEY idx_reservations_client (client_id),
  KEY idx_reservations_room (room_id),
  KEY idx_reservations_created_by (created_by_kind, created_by_id),
  CONSTRAINT fk_reservations_client FOREIGN KEY (client_id) REFERENCES clients(id),
  CONSTRAINT fk_reservations_room FOREIGN KEY (room_id) REFERENCES rooms(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
		{8, "create bans", `
CREATE TABLE IF NOT EXISTS bans (
  id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  banned_kind VARCHAR(16) NOT NULL,
  banned_id BIGINT UNSIGNED NOT NULL,
  banned_by_kind VARCHAR(16) NOT NULL,
  banned_by_id BIGINT UNSIGNED NOT NULL,
  reason TEXT NOT NULL,
  is_permanent TINYINT(1) NOT NULL DEFAULT 0,
  expires_at DATETIME NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  deleted_at DATETIME NULL,
  KEY idx_bans_banned (banned_kind, banned_id),
  KEY idx_bans_banned_by (banned_by_kind, banned_by_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
		{9, "create refresh_tokens", `
CREATE TABLE IF NOT EXISTS refresh_tokens (
  id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  owner_kind VARCHAR(16) NOT NULL,
  owner_id BIGINT UNSIGNED NOT NULL,
  session_id CHAR(36) NOT NULL,
  token_hash CHAR(64) NOT NULL UNIQUE,
  expires_at DATETIME NOT NULL,
  revoked_at DATETIME NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  KEY idx_refresh_session (session_id),
  KEY idx_refresh_owner (owner_kind, owner_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
		{10, "create countries", `
CREATE TABLE IF NOT EXISTS countries (
  id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  name VARCHAR(128) NOT NULL UNIQUE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
		{11, "seed countries", seedCountries()},
	}
}

// defaultCountries seeds the reference list used by client registration.
var defaultCountries = []string{
	"Algeria", "Argentina", "Australia", "Austria", "Bahrain", "Belgium", "Brazil", "Canada",
	"China", "Denmark", "Egypt", "Finland", "France", "Germany", "Greece", "India",
	"Indonesia", "Iraq", "Ireland", "Italy", "Japan", "Jordan", "Kuwait", "Lebanon",
	"Libya", "Malaysia", "Mexico", "Morocco", "Netherlands", "New Zealand", "Norway", "Oman",
	"Pakistan", "Palestine", "Poland", "Portugal", "Qatar", "Saudi Arabia", "South Africa", "Spain",
	"Sudan", "Sweden", "Switzerland", "Syria", "Tunisia", "Turkey", "United Arab Emirates",
	"United Kingdom", "United States", "Yemen",
}

func seedCountries() string {
	values := make([]string, len(defaultCountries))
	for i, c := range defaultCountries {
		values[i] = "('" + c + "')"
	}
	return "INSERT IGNORE INTO countries (name) VALUES " + strings.Join(values, ", ")
}

func staffTable(name string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  id BIGINT UNSIGNED PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  email VARCHAR(255) NOT NULL UNIQUE,
  actual_email VARCHAR(255) NOT NULL UNIQUE,
  password_hash VARCHAR(255) NOT NULL,
  national_id VARCHAR(14) NOT NULL UNIQUE,
  image VARCHAR(255) NOT NULL DEFAULT 'images/default.jpg',
  created_by_kind VARCHAR(16) NOT NULL,
  created_by_id BIGINT UNSIGNED NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  deleted_at DATETIME NULL,
  KEY idx_%s_created_by (created_by_kind, created_by_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, name, name)
}

// Migrate applies every migration newer than the recorded version.
func Migrate(ctx context.Context, db *sql.DB) (int, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
  version INT PRIMARY KEY,
  description VARCHAR(255) NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	applied := 0
	for _, m := range Migrations() {
		if m.Version <= current {
			continue
		}
		if _, err := db.ExecContext(ctx, m.SQL); err != nil {
			return applied, fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
			m.Version, m.Description); err != nil {
			return applied, fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		applied++
	}
	return applied, nil
}
