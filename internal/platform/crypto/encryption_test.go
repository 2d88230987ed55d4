package crypto

import (
	"encoding/base64"
	"strings"
	"testing"
)

const hexKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealStringRoundTrip(t *testing.T) {
	c, err := New(hexKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sealed, err := c.SealString("2200123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(sealed, "enc:v1:") || strings.Contains(sealed, "2200123456") {
		t.Fatalf("value not sealed: %q", sealed)
	}
	again, _ := c.SealString("2200123456")
	if again == sealed {
		t.Fatal("expected a fresh nonce per seal")
	}
	plain, err := c.OpenString(sealed)
	if err != nil || plain != "2200123456" {
		t.Fatalf("expected round trip, got %q, %v", plain, err)
	}
}

func TestOpenStringPassesLegacyValues(t *testing.T) {
	c, _ := New(hexKey)
	if plain, err := c.OpenString("2200123456"); err != nil || plain != "2200123456" {
		t.Fatalf("expected clear value unchanged, got %q, %v", plain, err)
	}
}

func TestUnconfiguredCipher(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Configured() {
		t.Fatal("empty key must not configure encryption")
	}
	if v, _ := c.SealString("123"); v != "123" {
		t.Fatalf("expected passthrough, got %q", v)
	}

	keyed, _ := New(hexKey)
	sealed, _ := keyed.SealString("123")
	if _, err := c.OpenString(sealed); err == nil {
		t.Fatal("expected error opening a sealed value without a key")
	}
}

func TestKeyFormats(t *testing.T) {
	raw := make([]byte, 32)
	if _, err := New(base64.StdEncoding.EncodeToString(raw)); err != nil {
		t.Fatalf("base64 key rejected: %v", err)
	}
	if _, err := New("c2hvcnQ="); err == nil {
		t.Fatal("expected short key to be rejected")
	}
	if _, err := New("not a key!"); err == nil {
		t.Fatal("expected garbage key to be rejected")
	}
}

func TestTamperedValueFails(t *testing.T) {
	c, _ := New(hexKey)
	sealed, _ := c.SealString("2200123456")
	raw, _ := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(sealed, "enc:v1:"))
	raw[len(raw)-1] ^= 0xff
	tampered := "enc:v1:" + base64.RawStdEncoding.EncodeToString(raw)
	if _, err := c.OpenString(tampered); err == nil {
		t.Fatal("expected authentication failure")
	}
	if _, err := c.OpenString("enc:v1:%%%"); err != ErrMalformed {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
