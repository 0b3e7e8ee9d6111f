package secret

import (
	"bytes"
	"testing"
)

func testKey(b byte) []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = b
	}
	return key
}

func TestCodecRoundTrip(t *testing.T) {
	c, err := NewCodec(testKey(7))
	if err != nil {
		t.Fatal(err)
	}

	secret := []byte("giant crouch say spoon they fresh rubber fat quote inform car mind")
	sealed, err := c.Encrypt(secret)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(sealed, secret) {
		t.Fatal("ciphertext leaks plaintext")
	}

	opened, err := c.Decrypt(sealed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(opened, secret) {
		t.Errorf("round trip mismatch: %q", opened)
	}
}

func TestCodecWrongKey(t *testing.T) {
	a, _ := NewCodec(testKey(1))
	b, _ := NewCodec(testKey(2))

	sealed, err := a.Encrypt([]byte("seed material"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Decrypt(sealed); err != ErrCorruptData {
		t.Errorf("wrong key: got %v, want ErrCorruptData", err)
	}
}

func TestCodecTruncatedCiphertext(t *testing.T) {
	c, _ := NewCodec(testKey(3))
	if _, err := c.Decrypt([]byte{1, 2, 3}); err != ErrCorruptData {
		t.Errorf("truncated: got %v, want ErrCorruptData", err)
	}
}

func TestCodecBadKeySize(t *testing.T) {
	if _, err := NewCodec([]byte("short")); err != ErrBadKeySize {
		t.Errorf("got %v, want ErrBadKeySize", err)
	}
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3}
	Zero(b)
	if !bytes.Equal(b, []byte{0, 0, 0}) {
		t.Errorf("Zero left %v", b)
	}
}
