package mediacache

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"

	"github.com/untoldecay/goldenthread/internal/aead"
	"github.com/untoldecay/goldenthread/internal/archiveerr"
)

// State is the full media subsystem: the attachment/thumbnail directories,
// the attachment encryption key, and the bounded decrypted-file cache.
// Grounded on MediaState in the original media_ops.rs.
type State struct {
	Key            [32]byte
	AttachmentsDir string
	ThumbsDir      string
	MediaDir       string
	Cache          *Cache

	group singleflight.Group
}

// NewState creates the media working directories and returns a ready State.
func NewState(attachmentsDir, thumbsDir, mediaDir string, key [32]byte) (*State, error) {
	for _, d := range []string{thumbsDir, mediaDir} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return nil, fmt.Errorf("create media directory %s: %w", d, err)
		}
	}
	return &State{Key: key, AttachmentsDir: attachmentsDir, ThumbsDir: thumbsDir, MediaDir: mediaDir, Cache: New()}, nil
}

func (s *State) attachmentPath(sha256 string) string {
	return filepath.Join(s.AttachmentsDir, sha256)
}

// GenerateThumbnail returns a data: URL for a lossless WebP thumbnail of the
// attachment identified by sha256, generating and caching it on disk under
// thumbsDir if absent. Panics during generation are recovered and surfaced
// as an error, matching the catch_unwind boundary around
// generate_thumbnail_inner in the original.
func (s *State) GenerateThumbnail(sha256 string, maxSize int) (url string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = archiveerr.Crypto("thumbnail generation panicked: %v", r)
		}
	}()
	return s.generateThumbnailInner(sha256, maxSize)
}

func (s *State) generateThumbnailInner(sha256 string, maxSize int) (string, error) {
	thumbPath := filepath.Join(s.ThumbsDir, fmt.Sprintf("%s_%d.bin", sha256, maxSize))

	if _, err := os.Stat(thumbPath); err == nil {
		data, err := decryptToMemory(thumbPath, s.Key)
		if err != nil {
			return "", err
		}
		return dataURL("image/webp", data), nil
	}

	srcPath := s.attachmentPath(sha256)
	if _, err := os.Stat(srcPath); err != nil {
		return "", archiveerr.InvalidArgument("attachment %s not found", sha256)
	}
	raw, err := decryptToMemory(srcPath, s.Key)
	if err != nil {
		return "", err
	}

	img, _, err := image.Decode(byteReader(raw))
	if err != nil {
		return "", archiveerr.Wrap(archiveerr.KindCrypto, "decode image for thumbnail", err)
	}
	resized := resize(img, maxSize)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, toRGBA(resized), &webp.Options{Lossless: true}); err != nil {
		return "", archiveerr.Wrap(archiveerr.KindCrypto, "encode webp thumbnail", err)
	}
	encoded := buf.Bytes()

	tmp, err := os.CreateTemp(s.ThumbsDir, "thumb-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp thumbnail file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := aead.Encrypt(byteReader(encoded), tmp, s.Key, aead.DefaultChunkSize); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", err
	}
	tmp.Close()

	if err := os.Rename(tmpPath, thumbPath); err != nil && !os.IsExist(err) {
		os.Remove(tmpPath)
		return "", fmt.Errorf("persist thumbnail: %w", err)
	}
	return dataURL("image/webp", encoded), nil
}

func resize(src image.Image, maxSize int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSize && h <= maxSize {
		return src
	}
	scale := float64(maxSize) / float64(w)
	if hs := float64(maxSize) / float64(h); hs < scale {
		scale = hs
	}
	nw, nh := int(float64(w)*scale), int(float64(h)*scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func toRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}

func dataURL(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}
