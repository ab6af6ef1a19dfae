// Package language normalizes the free-form language labels transcription
// collaborators report ("English", "eng", "en-US") into the ISO 639-1 codes
// the transcription cache stores, falling back to "unknown" when a label
// cannot be resolved.
package language
