// Package version contains information on the current version of the program.
// It is split from the main program for easy use.
package version

// Current is the string representing the current version of diceroll.
const Current = "0.1.0"

// Server is the string representing the current version of the HTTP API
// server build, tracked separately from the engine itself.
const Server = "0.1.0"
