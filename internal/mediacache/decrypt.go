package mediacache

import (
	"bytes"
	"io"
	"os"

	"github.com/untoldecay/goldenthread/internal/aead"
)

func byteReader(b []byte) io.Reader { return bytes.NewReader(b) }

// decryptToMemory fully decrypts a small AEAD container (thumbnails are
// always small) into memory.
func decryptToMemory(path string, key [32]byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := decryptFileTo(path, key, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decryptFileTo(path string, key [32]byte, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = aead.Decrypt(f, w, key)
	return err
}
