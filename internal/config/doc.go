// Package config loads the application configuration of the product-sync
// tool from a YAML file, with PRODUCT_SYNC_* environment variables taking
// precedence over file values.
package config
