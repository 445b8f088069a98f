// Package config loads, normalizes, and validates CaptionTrans configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// OPENAI_API_KEY and MAX_UPLOAD_MB. The Config type is built once at startup
// and passed to the HTTP server, pipeline and CLI; request code never reads
// the environment directly.
package config
