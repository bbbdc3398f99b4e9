// Package config loads typed configuration from the environment.
//
// .env files are read with godotenv and never override variables already
// set by the process environment. Structs are populated by caarlos0/env
// and cached per type, so packages can each call Load for their own
// section without re-parsing:
//
//	var cfg tenant.Config
//	config.MustLoad(&cfg)
//
// Tests that change the environment should call Reset or Reload.
package config
