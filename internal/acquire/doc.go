// Package acquire turns resolved items into files on disk.
//
// For each part it fetches the DASH streams offered by the API, downloads them
// into the cache directory with resumable ranged requests, and hands them to
// ffmpeg for remuxing (video) or extraction (audio). Danmaku XML is saved per
// part; cover art and metadata JSON once per item. Output names come from the
// configured formatter templates and every output is moved into place only
// once complete, so an interrupted run never leaves a truncated file under the
// output directory.
package acquire
