// Package deps locates the external programs used for video and PDF
// thumbnails and reports which thumbnail kinds are unavailable without them.
package deps
