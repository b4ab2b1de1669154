// Package logging configures structured slog output for evemt.
//
// Logs are JSON lines written to <data-dir>/logs/evemt.log with size-based
// rotation. With --debug the level drops to debug and records are mirrored
// to stderr. The viewer in this package backs `evemt logs`.
package logging
