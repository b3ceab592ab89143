// Package config defines the triton configuration tree: YAML file loading,
// defaults, validation, and TRITON_* environment overrides. Loading order is
// file, then defaults, then environment, then validation.
package config
