// Package config loads application settings from the environment.
//
// Settings are plain structs with caarlos0/env tags. LoadEnv reads .env files
// with joho/godotenv without overriding variables that are already set. Load
// parses the environment into a struct and caches the result per type, so
// packages can load their own Config wherever they need it:
//
//	var cfg session.Config
//	config.MustLoad(&cfg)
//
// ResetCache exists for tests that change the environment between loads.
package config
