package fingerprint

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Bytes returns the fingerprint of the given byte sequence. Deterministic,
// defined for every finite input including the empty one.
func Bytes(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Text fingerprints the exact byte encoding of a string.
func Text(text string) string {
	return Bytes([]byte(text))
}

// Reader fingerprints everything the reader yields.
func Reader(r io.Reader) (string, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File streams the complete file content through the digest without loading
// it into memory. An unreadable file surfaces as an error for the caller to
// report against that unit alone.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for fingerprint: %w", err)
	}
	defer f.Close()

	return Reader(bufio.NewReader(f))
}
