// Package captions retrieves existing YouTube caption tracks over HTTP. It
// scrapes the caption track list from the watch page player response and
// downloads the chosen track in json3 form, distinguishing "no transcript
// exists" from transient fetch failures so callers can decide whether the
// audio fallback applies.
package captions
