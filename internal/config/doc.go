// Package config loads, normalizes, and validates fashionset configuration data.
package config
