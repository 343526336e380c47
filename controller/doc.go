// Package controller implements the TCP client for a low-level dome
// controller.
//
// The wire protocol is newline-framed JSON: the client writes
// {"command": ..., "parameters": {...}} and reads one reply line per
// request. Motion commands are acknowledged with a response code;
// status commands return the raw subsystem document, which callers
// validate through the telemetry decoder. The client holds one
// connection and serializes exchanges, dropping the connection on any
// I/O error so a later ConnectWithRetry can re-establish it.
package controller
