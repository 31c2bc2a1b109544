// Package ytdlp wraps the yt-dlp command line tool for channel enumeration,
// video metadata, audio download, and browser cookie extraction. yt-dlp is
// treated as a black box; this package only shapes its arguments and parses
// its JSON output.
package ytdlp
