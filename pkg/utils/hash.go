package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// HashReader returns the hex encoded sha256 digest of everything read from r.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile returns the digest of the file at path. The router uses it to check
// committed target files against the bytes it rendered.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return HashReader(f)
}

// HashBytes returns the hex encoded sha256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
