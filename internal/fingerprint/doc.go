// Package fingerprint derives stable content identities used as cache keys.
//
// A fingerprint is the hex-encoded 128-bit digest of the input bytes. File
// units are fingerprinted over their raw bytes (never text-decoded, so
// encoding ambiguity cannot change the key); summary units are fingerprinted
// over the exact bytes of the fully materialized prompt, so any change to
// prompt construction invalidates the cached entry.
package fingerprint
