// Package logs reads the library log file for the CLI "logs" command.
//
// Last returns the final matching lines with bounded memory. Follow streams
// lines appended afterwards, woken by fsnotify with a polling fallback.
// Filters narrow output to one request id or asset id, the correlation
// fields every library operation logs.
package logs
