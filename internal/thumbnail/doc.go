// Package thumbnail renders JPEG previews for library assets.
//
// Images are resized in-process with the imaging package. Videos are sampled
// with ffmpeg and PDFs are rasterized with ImageMagick; both run as external
// processes bounded by the configured timeout. Generation never fails the
// calling operation: an asset simply has no thumbnail until a later
// regenerate pass succeeds.
package thumbnail
