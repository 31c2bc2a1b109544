// Command ytscribe downloads YouTube transcripts for a single video or a
// whole channel, with an optional speech recognition fallback for videos
// that publish no captions.
package main
