// Package config loads secretstore settings from SECRETSTORE_* environment
// variables, optionally seeded from a dotenv file, and builds the logger.
package config
