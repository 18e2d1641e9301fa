package aead

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
)

func randKey(t *testing.T) [32]byte {
	t.Helper()
	var k [32]byte
	if _, err := rand.Read(k[:]); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := randKey(t)
	plaintext := bytes.Repeat([]byte{0x07}, 2*DefaultChunkSize+123)

	var ct bytes.Buffer
	n, err := Encrypt(bytes.NewReader(plaintext), &ct, key, DefaultChunkSize)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if n != int64(len(plaintext)) {
		t.Fatalf("encrypted %d bytes, want %d", n, len(plaintext))
	}

	var pt bytes.Buffer
	n, err = Decrypt(&ct, &pt, key)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if n != int64(len(plaintext)) {
		t.Fatalf("decrypted %d bytes, want %d", n, len(plaintext))
	}
	if !bytes.Equal(pt.Bytes(), plaintext) {
		t.Fatal("round trip mismatch")
	}
}

func TestPlaintextLenMatchesActual(t *testing.T) {
	dir := t.TempDir()
	key := randKey(t)
	plaintext := bytes.Repeat([]byte{0x09}, 3*DefaultChunkSize+777)

	srcPath := filepath.Join(dir, "plain.bin")
	if err := os.WriteFile(srcPath, plaintext, 0o600); err != nil {
		t.Fatal(err)
	}
	ctPath := filepath.Join(dir, "ct.bin")
	if _, err := EncryptFile(srcPath, ctPath, key, DefaultChunkSize); err != nil {
		t.Fatal(err)
	}

	got, err := PlaintextLen(ctPath)
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(len(plaintext)) {
		t.Fatalf("PlaintextLen() = %d, want %d", got, len(plaintext))
	}
}

func TestDecryptFileParallelMatchesSerial(t *testing.T) {
	dir := t.TempDir()
	key := randKey(t)
	plaintext := bytes.Repeat([]byte{0x07}, 2*(1<<20)+123)

	srcPath := filepath.Join(dir, "plain.bin")
	if err := os.WriteFile(srcPath, plaintext, 0o600); err != nil {
		t.Fatal(err)
	}
	ctPath := filepath.Join(dir, "ct.bin")
	if _, err := EncryptFile(srcPath, ctPath, key, 1<<20); err != nil {
		t.Fatal(err)
	}

	serialPath := filepath.Join(dir, "serial.bin")
	if _, err := DecryptFile(ctPath, serialPath, key); err != nil {
		t.Fatal(err)
	}
	parallelPath := filepath.Join(dir, "parallel.bin")
	if _, err := DecryptFileParallel(ctPath, parallelPath, key, 4); err != nil {
		t.Fatal(err)
	}

	serial, err := os.ReadFile(serialPath)
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := os.ReadFile(parallelPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(serial, parallel) {
		t.Fatal("parallel decrypt diverges from serial decrypt")
	}
	if !bytes.Equal(parallel, plaintext) {
		t.Fatal("parallel decrypt diverges from original plaintext")
	}
}
