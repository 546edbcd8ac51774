// Package preflight provides readiness checks for the filesystem paths and
// external tools assetvault depends on.
//
// The CLI "assetvault doctor" command runs RunAll and prints each result next
// to the database health check and the group consistency scan. Renderer
// checks only run when thumbnails are enabled.
package preflight
