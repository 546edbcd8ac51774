// Package main hosts the assetvault CLI entrypoint and command graph.
//
// Each command loads configuration once, opens the library for the duration
// of the call, and renders the result as a table or, with --json, as JSON on
// stdout. Logs go to the library log file; --verbose mirrors them to stderr.
package main
