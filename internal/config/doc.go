// Package config loads and validates application settings. Values come from
// defaults, an optional config.yaml, an optional .env file and REPETIX_*
// environment variables, merged with viper and checked with validator tags.
package config
