// Package config loads process-wide settings from an optional YAML file and
// the environment. File values override the built-in defaults; environment
// variables (CODESIFT_DB_PATH, CODESIFT_LOG_LEVEL, CODESIFT_MAX_RESULTS,
// CODESIFT_QUERY_TIMEOUT_MS, CODESIFT_SEARCH_MODE) override the file.
package config
