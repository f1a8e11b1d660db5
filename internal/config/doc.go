// Package config loads, normalizes, and validates sitephoto configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// SITEPHOTO_LOG_LEVEL. The Config type centralizes the grouping, activity, and
// scene thresholds so every command sees the same values.
//
// The two grouping profiles (machine and activity) are kept as separate knobs
// on purpose: they cluster by different business keys and default to
// different gaps.
package config
