package employees

import (
	"errors"
	"strings"
	"testing"
)

type prefixCipher struct{ err error }

func (c prefixCipher) SealString(v string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return "sealed:" + v, nil
}

func (c prefixCipher) OpenString(v string) (string, error) {
	return strings.TrimPrefix(v, "sealed:"), nil
}

func TestSealAccount(t *testing.T) {
	account := "2200123456"

	plain := &Store{}
	if got, _ := plain.sealAccount(&account); got != &account {
		t.Fatal("expected passthrough without a cipher")
	}

	s := &Store{Cipher: prefixCipher{}}
	got, err := s.sealAccount(&account)
	if err != nil || *got != "sealed:2200123456" {
		t.Fatalf("unexpected sealed value %v, %v", got, err)
	}
	if got, _ := s.sealAccount(nil); got != nil {
		t.Fatal("nil account must stay nil so COALESCE keeps the stored value")
	}

	failing := &Store{Cipher: prefixCipher{err: errors.New("rand failed")}}
	if _, err := failing.sealAccount(&account); err == nil {
		t.Fatal("expected seal error")
	}
}
