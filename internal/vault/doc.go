// Package vault manages the directory that holds asset content.
//
// Imported files are copied in under an eight character random prefix plus a
// sanitized form of the original name, so asset paths never collide and are
// always relative to the vault root. Version content is cloned next to the
// group root under the derived version path.
package vault
