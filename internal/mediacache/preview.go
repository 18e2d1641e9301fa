package mediacache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/untoldecay/goldenthread/internal/aead"
	"github.com/untoldecay/goldenthread/internal/archiveerr"
)

var mimeExtension = map[string]string{
	"image/jpeg": "jpg", "image/png": "png", "image/webp": "webp",
	"image/gif": "gif", "image/heic": "heic",
	"video/mp4": "mp4", "video/quicktime": "mov", "video/webm": "webm", "video/x-matroska": "mkv",
	"audio/mpeg": "mp3", "audio/mp4": "m4a", "audio/aac": "aac", "audio/ogg": "ogg", "audio/wav": "wav",
}

func extensionFor(mime string) string {
	if ext, ok := mimeExtension[mime]; ok {
		return ext
	}
	return "bin"
}

// DecryptToPreview returns a local filesystem path to the decrypted
// attachment content, decrypting (and caching) it on miss. Concurrent
// misses for the same key collapse into a single decrypt via singleflight.
// Panics during decryption are recovered and surfaced as an error,
// matching decrypt_to_preview_inner's catch_unwind boundary in the original.
func (s *State) DecryptToPreview(sha256, mime string) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = archiveerr.Crypto("preview generation panicked: %v", r)
		}
	}()

	key := sha256 + ":" + extensionFor(mime)
	if p, ok := s.Cache.Get(key); ok {
		return p, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		if p, ok := s.Cache.Get(key); ok {
			return p, nil
		}
		p, genErr := s.decryptToPreviewInner(sha256, key)
		if genErr != nil {
			return "", genErr
		}
		for _, evictedKey := range s.Cache.Insert(key, p) {
			_ = evictedKey
		}
		return p, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (s *State) decryptToPreviewInner(sha256, cacheKey string) (string, error) {
	srcPath := s.attachmentPath(sha256)
	plaintextLen, err := aead.PlaintextLen(srcPath)
	if err != nil {
		return "", err
	}

	dst, err := os.CreateTemp(s.MediaDir, "preview-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp preview file: %w", err)
	}
	tmpPath := dst.Name()

	if plaintextLen >= aead.ParallelDecryptThreshold {
		dst.Close()
		if _, err := aead.DecryptFileParallel(srcPath, tmpPath, s.Key, aead.DefaultParallelWorkers); err != nil {
			os.Remove(tmpPath)
			return "", err
		}
	} else {
		if err := dst.Truncate(plaintextLen); err != nil {
			dst.Close()
			os.Remove(tmpPath)
			return "", fmt.Errorf("pre-size preview file: %w", err)
		}
		if err := decryptFileTo(srcPath, s.Key, dst); err != nil {
			dst.Close()
			os.Remove(tmpPath)
			return "", err
		}
		dst.Close()
	}

	finalPath := filepath.Join(s.MediaDir, cacheKeyToFilename(cacheKey))
	if err := os.Rename(tmpPath, finalPath); err != nil && !os.IsExist(err) {
		os.Remove(tmpPath)
		return "", fmt.Errorf("persist decrypted preview: %w", err)
	}
	return finalPath, nil
}

func cacheKeyToFilename(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			out = append(out, '.')
			continue
		}
		out = append(out, key[i])
	}
	return string(out)
}

// GenerateDataURL returns a base64 data: URL for an attachment if its
// encrypted size stays within maxBytes, checked before decrypting.
func (s *State) GenerateDataURL(sha256, mime string, maxBytes int64) (string, error) {
	srcPath := s.attachmentPath(sha256)
	info, err := os.Stat(srcPath)
	if err != nil {
		return "", archiveerr.InvalidArgument("attachment %s not found", sha256)
	}
	if info.Size() > maxBytes {
		return "", archiveerr.InvalidArgument("attachment %s exceeds data URL size limit", sha256)
	}

	data, err := decryptToMemory(srcPath, s.Key)
	if err != nil {
		return "", err
	}
	return dataURL(mime, data), nil
}

// ClearCache empties the decrypted-file cache, deleting backing files.
func (s *State) ClearCache() { s.Cache.Clear() }

// DrainEvictions returns and clears the queue of keys evicted since the
// last drain.
func (s *State) DrainEvictions() []string { return s.Cache.DrainEvictions() }
