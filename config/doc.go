// Package config loads and validates controller connection settings.
//
// A configuration document is a flat YAML or JSON object with four
// optional fields: host, port, connection_timeout and read_timeout.
// Every field has a default, so an empty document is valid. Validation
// is delegated to the schema package; this package adds host syntax
// checking and conversion of the timeout fields from seconds to
// time.Duration.
package config
