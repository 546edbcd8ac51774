// Package textutil normalizes user-supplied text for storage: vault file
// names and free-text metadata labels.
package textutil
