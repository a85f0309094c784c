// Package config loads and validates the TabStreams service configuration.
//
// Configuration is layered JSON: defaults, then one or more files, then
// environment overrides prefixed with TABSTREAMS_. Files are checked
// against a JSON Schema before merging so malformed configs fail fast
// with a field-level diagnostic instead of a zero-valued struct.
package config
