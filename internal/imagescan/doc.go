// Package imagescan downloads image candidates found during a crawl and
// keeps the ones an external face detector accepts.
//
// The pipeline for one candidate is: download to a uuid-named temp file,
// sniff the dimensions from the file header, reject undersized images,
// run the detector, and either move the file into a per-uuid directory
// and record it in the database, or delete it. Dimension sniffing reads
// the container headers directly (PNG, JPEG, GIF, simple WebP) so no
// image decoding library is needed for a bounds check.
//
// Detection runs out of process. Face detection needs an ML model and
// the mature tooling for that lives outside Go, so the detector is any
// command that exits zero when the image contains a face.
package imagescan
