// Package migrations holds the versioned schema scripts for the service.
// Scripts are idempotent (CREATE ... IF NOT EXISTS) so a crash between a
// script and its tracking record is survivable on the next boot.
package migrations

import "github.com/config-vault/server/pkg/database"

var Migrations = []database.Migration{
	{
		Version:     1,
		Description: "core schema: users, projects, configurations, configuration details, sessions",
		Up: `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT UNIQUE NOT NULL,
    email TEXT UNIQUE,
    password TEXT NOT NULL,
    name TEXT,
    avatar_url TEXT,
    role TEXT NOT NULL DEFAULT 'user',
    is_active BOOLEAN NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    description TEXT,
    is_active BOOLEAN NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS configurations (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    file_type TEXT NOT NULL DEFAULT 'env',
    file_path TEXT NOT NULL,
    content TEXT,
    sharing_type TEXT NOT NULL DEFAULT 'private',
    share_token TEXT UNIQUE,
    is_active BOOLEAN NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS configuration_detail (
    id TEXT PRIMARY KEY,
    configuration_id TEXT NOT NULL REFERENCES configurations(id) ON DELETE CASCADE,
    environment TEXT NOT NULL,
    env TEXT NOT NULL,
    code TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS user_sessions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    token_hash TEXT NOT NULL,
    expires_at DATETIME NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`,
		Down: `
DROP TABLE IF EXISTS user_sessions;
DROP TABLE IF EXISTS configuration_detail;
DROP TABLE IF EXISTS configurations;
DROP TABLE IF EXISTS projects;
DROP TABLE IF EXISTS users;`,
	},
	{
		Version:     2,
		Description: "services registry, templates, sharing and access logs",
		Up: `
CREATE TABLE IF NOT EXISTS services (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    description TEXT,
    internal_ip TEXT,
    external_ip TEXT,
    domain TEXT,
    ports TEXT,
    status TEXT NOT NULL DEFAULT 'unknown',
    health_check_url TEXT,
    last_health_check DATETIME,
    environment TEXT NOT NULL DEFAULT 'development',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS templates (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    file_type TEXT NOT NULL,
    content TEXT NOT NULL,
    is_public BOOLEAN NOT NULL DEFAULT 0,
    created_by TEXT REFERENCES users(id) ON DELETE SET NULL,
    usage_count INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS configuration_shares (
    id TEXT PRIMARY KEY,
    config_id TEXT NOT NULL REFERENCES configurations(id) ON DELETE CASCADE,
    shared_with_user_id TEXT REFERENCES users(id) ON DELETE CASCADE,
    shared_with_email TEXT,
    permission_level TEXT NOT NULL DEFAULT 'read',
    shared_by TEXT NOT NULL REFERENCES users(id),
    expires_at DATETIME,
    is_active BOOLEAN NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CONSTRAINT check_share_target CHECK (
        (shared_with_user_id IS NOT NULL AND shared_with_email IS NULL) OR
        (shared_with_user_id IS NULL AND shared_with_email IS NOT NULL)
    )
);

CREATE TABLE IF NOT EXISTS configuration_access_logs (
    id TEXT PRIMARY KEY,
    config_id TEXT NOT NULL REFERENCES configurations(id) ON DELETE CASCADE,
    accessed_by TEXT REFERENCES users(id) ON DELETE SET NULL,
    access_type TEXT NOT NULL,
    ip_address TEXT,
    user_agent TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`,
		Down: `
DROP TABLE IF EXISTS configuration_access_logs;
DROP TABLE IF EXISTS configuration_shares;
DROP TABLE IF EXISTS templates;
DROP TABLE IF EXISTS services;`,
	},
	{
		Version:     3,
		Description: "lookup indexes",
		Up: `
CREATE INDEX IF NOT EXISTS idx_projects_user_id ON projects(user_id);
CREATE INDEX IF NOT EXISTS idx_configurations_project_id ON configurations(project_id);
CREATE INDEX IF NOT EXISTS idx_configurations_share_token ON configurations(share_token);
CREATE INDEX IF NOT EXISTS idx_configuration_detail_config_id ON configuration_detail(configuration_id);
CREATE INDEX IF NOT EXISTS idx_configuration_detail_environment ON configuration_detail(environment);
CREATE INDEX IF NOT EXISTS idx_services_project_id ON services(project_id);
CREATE INDEX IF NOT EXISTS idx_user_sessions_user_id ON user_sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_config_shares_config_id ON configuration_shares(config_id);
CREATE INDEX IF NOT EXISTS idx_config_access_logs_config_id ON configuration_access_logs(config_id);`,
		Down: `
DROP INDEX IF EXISTS idx_config_access_logs_config_id;
DROP INDEX IF EXISTS idx_config_shares_config_id;
DROP INDEX IF EXISTS idx_user_sessions_user_id;
DROP INDEX IF EXISTS idx_services_project_id;
DROP INDEX IF EXISTS idx_configuration_detail_environment;
DROP INDEX IF EXISTS idx_configuration_detail_config_id;
DROP INDEX IF EXISTS idx_configurations_share_token;
DROP INDEX IF EXISTS idx_configurations_project_id;
DROP INDEX IF EXISTS idx_projects_user_id;`,
	},
}
