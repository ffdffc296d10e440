package hashutil

import (
	"crypto/sha256"
	"fmt"

	"github.com/skhdtools/skhdctl/pkg/types"
)

// Checksum calculates the SHA256 checksum of data in "sha256:<hex>" form
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", sum)
}

// ChecksumFile calculates the SHA256 checksum of a file's content
func ChecksumFile(fs types.FS, path string) (string, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Checksum(data), nil
}
