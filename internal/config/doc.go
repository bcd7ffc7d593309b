// Package config loads the server configuration from config.yaml.
//
// Secrets (DB DSN, JWT secret, broker credentials, channel URLs) are never
// stored in the file: the YAML names environment variables and the accessors
// resolve them at read time. Load(path) applies defaults before
// unmarshalling, then validates. Watch re-loads the file on change.
package config
