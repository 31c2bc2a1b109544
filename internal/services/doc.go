// Package services defines the shared error taxonomy for the external
// services ytscribe orchestrates (yt-dlp, the caption endpoint, the speech
// recognizer) and helpers for classifying failures at the workflow level.
package services
