package email

import (
	"context"
	"strings"
	"testing"
	"time"

	"rrhh/internal/platform/config"
)

func TestNewDisabledDiscards(t *testing.T) {
	if _, ok := New(config.Config{}).(Discard); !ok {
		t.Fatal("expected Discard when email is disabled")
	}
	if _, ok := New(config.Config{EmailEnabled: true}).(Discard); !ok {
		t.Fatal("expected Discard without an SMTP host")
	}
	m, ok := New(config.Config{EmailEnabled: true, SMTPHost: "smtp.test", SMTPPort: 2525, SMTPUseTLS: true}).(*SMTP)
	if !ok {
		t.Fatal("expected SMTP mailer")
	}
	if m.Settings.Port != 2525 || !m.Settings.StartTLS {
		t.Fatalf("unexpected settings: %+v", m.Settings)
	}
}

func TestSendWithoutRecipientIsNoop(t *testing.T) {
	m := &SMTP{Settings: Settings{Host: "127.0.0.1", Port: 1}}
	if err := m.Send(context.Background(), "a@test", " ", "hi", "body"); err != nil {
		t.Fatalf("expected no dial for empty recipient, got %v", err)
	}
}

func TestCompose(t *testing.T) {
	at := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	msg := string(Compose("rrhh@test", "ana@test", "Nómina pagada", "línea 1\nlínea 2", at))

	if !strings.Contains(msg, "Subject: =?utf-8?q?N=C3=B3mina_pagada?=\r\n") {
		t.Fatalf("subject not encoded: %q", msg)
	}
	if !strings.Contains(msg, "Date: Fri, 14 Mar 2025 10:00:00 +0000\r\n") {
		t.Fatalf("missing date header: %q", msg)
	}
	header, body, ok := strings.Cut(msg, "\r\n\r\n")
	if !ok {
		t.Fatal("missing header separator")
	}
	if !strings.HasPrefix(header, "From: rrhh@test\r\nTo: ana@test\r\n") {
		t.Fatalf("unexpected header: %q", header)
	}
	if body != "línea 1\r\nlínea 2" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestComposeASCIISubjectUnchanged(t *testing.T) {
	msg := string(Compose("a@test", "b@test", "Payroll paid", "", time.Unix(0, 0).UTC()))
	if !strings.Contains(msg, "Subject: Payroll paid\r\n") {
		t.Fatalf("unexpected subject: %q", msg)
	}
}
