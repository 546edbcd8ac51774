// Package library composes the asset store, the vault, and the thumbnail
// workers into the operations the CLI exposes.
//
// Every call is tagged with an operation name and a request id so log lines
// from the store, vault, and thumbnail workers can be correlated. Thumbnail
// work is queued after the database change commits and never affects the
// outcome of the call that queued it.
package library
