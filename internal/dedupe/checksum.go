package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	"desktidy/internal/domain"
)

const readBufferSize = 64 * 1024

// Checksum streams the file at path through both digests in a single pass.
// Memory use is bounded by the copy buffer regardless of file size.
func Checksum(fsys afero.Fs, path string) (domain.ContentKey, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return domain.ContentKey{}, err
	}
	defer f.Close()

	fast := xxhash.New()
	strong := sha256.New()
	buf := make([]byte, readBufferSize)
	n, err := io.CopyBuffer(io.MultiWriter(fast, strong), f, buf)
	if err != nil {
		return domain.ContentKey{}, err
	}

	return domain.ContentKey{
		Size:   n,
		Fast:   fmt.Sprintf("%016x", fast.Sum64()),
		Strong: hex.EncodeToString(strong.Sum(nil)),
	}, nil
}
