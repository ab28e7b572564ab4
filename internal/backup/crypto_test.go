package backup

import (
	"bytes"
	"errors"
	"testing"
)

func TestDeriveKeyDeterminism(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	key2 := DeriveKey("mypassphrase", salt)

	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
	if bytes.Equal(key1, DeriveKey("other", salt)) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	original := []byte("SQLite format 3\x00 plus some event rows")

	sealed, err := Seal(original, "correct horse")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, []byte("event rows")) {
		t.Error("sealed output contains plaintext")
	}
	if !bytes.HasPrefix(sealed, magic) {
		t.Error("sealed output missing magic prefix")
	}

	opened, err := Open(sealed, "correct horse")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(opened, original) {
		t.Errorf("opened = %q, want %q", opened, original)
	}
}

func TestSealUsesFreshSalt(t *testing.T) {
	a, err := Seal([]byte("same"), "pass")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	b, err := Seal([]byte("same"), "pass")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("two seals of the same plaintext should differ")
	}
}

func TestOpenWrongPassphrase(t *testing.T) {
	sealed, err := Seal([]byte("secret"), "right")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := Open(sealed, "wrong"); err == nil {
		t.Error("expected error with wrong passphrase")
	}
}

func TestOpenTampered(t *testing.T) {
	sealed, err := Seal([]byte("secret data"), "pass")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := Open(sealed, "pass"); err == nil {
		t.Error("expected error for tampered ciphertext")
	}
}

func TestSealEmpty(t *testing.T) {
	sealed, err := Seal(nil, "pass")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	opened, err := Open(sealed, "pass")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(opened) != 0 {
		t.Errorf("opened %d bytes, want 0", len(opened))
	}
}

func TestOpenNotABackup(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("short"), bytes.Repeat([]byte("x"), 64)} {
		if _, err := Open(data, "pass"); !errors.Is(err, ErrNotABackup) {
			t.Errorf("Open(%d bytes) err = %v, want ErrNotABackup", len(data), err)
		}
	}
}
