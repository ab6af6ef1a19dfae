// Package ollama wraps a local Ollama generate endpoint used to summarize
// extracted text. The core treats summarization as an opaque, possibly slow
// collaborator; this client only transports the materialized prompt and
// returns the generated text, with bounded retry on transient failures.
package ollama
