// Package mock provides an in-process low-level dome controller for
// tests and local development.
//
// The controller listens on TCP and speaks the newline-framed JSON
// command protocol: each request is {"command": ..., "parameters":
// {...}}, each reply either a {"response", "timeout"} acknowledgement
// or, for the status commands, the subsystem status document. Louvre
// and thermal state is tracked just far enough that commands have a
// visible effect on subsequent status requests.
package mock
