package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plain.db")
	enc := filepath.Join(dir, "plain.db.enc")
	dec := filepath.Join(dir, "restored.db")

	content := []byte("not actually a database, but bytes all the same")
	if err := os.WriteFile(src, content, 0600); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("failed to generate salt: %v", err)
	}
	if err := EncryptFile(src, enc, "pass phrase", salt); err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	encData, err := os.ReadFile(enc)
	if err != nil {
		t.Fatalf("failed to read encrypted file: %v", err)
	}
	if bytes.Contains(encData, content) {
		t.Error("ciphertext contains the plaintext")
	}
	if !bytes.Equal(encData[:saltSize], salt) {
		t.Error("expected the salt in the file header")
	}

	if err := DecryptFile(enc, dec, "pass phrase"); err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	restored, err := os.ReadFile(dec)
	if err != nil {
		t.Fatalf("failed to read restored file: %v", err)
	}
	if !bytes.Equal(restored, content) {
		t.Error("restored content differs from the original")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plain.db")
	enc := filepath.Join(dir, "plain.db.enc")

	if err := os.WriteFile(src, []byte("secret"), 0600); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("failed to generate salt: %v", err)
	}
	if err := EncryptFile(src, enc, "right", salt); err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	err = DecryptFile(enc, filepath.Join(dir, "out.db"), "wrong")
	if err == nil {
		t.Fatal("expected decryption to fail with the wrong passphrase")
	}
	if !strings.Contains(err.Error(), "wrong passphrase") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDecryptTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	enc := filepath.Join(dir, "short.enc")
	if err := os.WriteFile(enc, []byte("short"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if err := DecryptFile(enc, filepath.Join(dir, "out.db"), "pass"); err == nil {
		t.Fatal("expected an error for a truncated file")
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("failed to generate salt: %v", err)
	}

	k1 := DeriveKey("passphrase", salt)
	k2 := DeriveKey("passphrase", salt)
	if !bytes.Equal(k1, k2) {
		t.Error("same passphrase and salt must derive the same key")
	}

	other, err := GenerateSalt()
	if err != nil {
		t.Fatalf("failed to generate salt: %v", err)
	}
	if bytes.Equal(k1, DeriveKey("passphrase", other)) {
		t.Error("different salts must derive different keys")
	}
}
