package hashutil

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// FileDigest calculates the SHA256 digest of a file as a hex string.
// The digest is only used for equality comparison between two points in
// time, never for security.
func FileDigest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
