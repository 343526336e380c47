// Package errors provides standardized error handling patterns for ts-Dome
// components.
//
// # Overview
//
// The package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable), and
// Fatal (unrecoverable, stop processing).
//
// The classification drives retry decisions throughout the daemon: a lost
// TCP connection to the dome controller is transient and triggers a
// reconnect, a telemetry message that fails schema validation is invalid
// and gets quarantined, and a broken configuration is fatal at startup.
//
// # Error Classification
//
//   - Transient: network timeouts, connection loss, publish failures
//   - Invalid: malformed telemetry, rejected commands, parse failures
//   - Fatal: invalid or missing configuration
//
// The system integrates with Go's standard error handling, supporting
// errors.Is(), errors.As() and wrapping chains.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Client", "Connect", "dial")
//	errors.WrapInvalid(err, "Decoder", "DecodeLCS", "validate message")
//	errors.WrapFatal(err, "Config", "Load", "read config file")
//
// The generic Wrap() function preserves the original error's classification.
//
// # Standard Error Variables
//
// Pre-defined error variables cover the common conditions, organized by
// category: component lifecycle, controller link, commands, telemetry,
// configuration and publishing. Use these instead of ad-hoc error strings
// so classification and errors.Is checks keep working:
//
//	if closed {
//	    return errors.ErrConnectionLost
//	}
//
// # Context Cancellation
//
// context.DeadlineExceeded is classified as Transient, so context-based
// timeouts and socket timeouts are handled uniformly by retry logic.
package errors
