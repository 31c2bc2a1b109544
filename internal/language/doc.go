// Package language normalizes user-supplied language preferences.
//
// Caption track selection and Whisper both want ISO 639-1 codes; users type
// whatever they type ("en", "eng", "english", "en-US"). The conversions are
// consolidated here.
package language
