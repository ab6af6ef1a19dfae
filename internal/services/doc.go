// Package services holds the shared error taxonomy and context plumbing for
// curator's external collaborators (OCR, transcription, and LLM bridges).
//
// Errors raised by collaborators are wrapped with sentinel markers so callers
// can classify a failure without string matching, and context helpers carry
// per-unit identifiers that the logging package turns into structured fields.
package services
