package digester

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// OfString returns the SHA256 hex digest of content.
func OfString(content string) string {
	sum := sha256.Sum256([]byte(content))

	return hex.EncodeToString(sum[:])
}

// OfFile computes the SHA256 hex digest of the file at
// path. Returns empty string with no error if the file does
// not exist.
func OfFile(path string) (result string, retErr error) {
	const errCtx = "calculating digest"

	fi, err := os.Open(path) //nolint:gosec // path is caller-provided
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("%s: %w", errCtx, closeErr)
		}
	}()

	ha := sha256.New()

	if _, err := io.Copy(ha, fi); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return hex.EncodeToString(ha.Sum(nil)), nil
}

// Unchanged reports whether the file at path exists and
// already holds exactly content.
func Unchanged(path string, content string) (bool, error) {
	const errCtx = "comparing digest"

	onDisk, err := OfFile(path)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return onDisk != "" && onDisk == OfString(content), nil
}
