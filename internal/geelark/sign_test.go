package geelark

import (
	"strings"
	"testing"
)

func TestComputeSignatureDeterminism(t *testing.T) {
	t.Parallel()

	a, err := computeSignature("app", "key", "ABCDEF0123456789ABCDEF0123456789", "1700000000000")
	if err != nil {
		t.Fatalf("computeSignature: %v", err)
	}
	b, err := computeSignature("app", "key", "ABCDEF0123456789ABCDEF0123456789", "1700000000000")
	if err != nil {
		t.Fatalf("computeSignature: %v", err)
	}
	if a.Sign != b.Sign {
		t.Errorf("signature not deterministic: %s vs %s", a.Sign, b.Sign)
	}
	if a.Nonce != "ABCDEF" {
		t.Errorf("nonce should be first 6 chars of trace id, got %q", a.Nonce)
	}
	if len(a.Sign) != 64 || a.Sign != strings.ToUpper(a.Sign) {
		t.Errorf("signature should be 64 uppercase hex chars, got %q", a.Sign)
	}
}

func TestComputeSignatureInputSensitivity(t *testing.T) {
	t.Parallel()

	base, err := computeSignature("app", "key", "ABCDEF0123456789ABCDEF0123456789", "1700000000000")
	if err != nil {
		t.Fatalf("computeSignature: %v", err)
	}

	variants := []struct {
		name                       string
		appID, apiKey, traceID, ts string
	}{
		{"appId", "app2", "key", "ABCDEF0123456789ABCDEF0123456789", "1700000000000"},
		{"apiKey", "app", "key2", "ABCDEF0123456789ABCDEF0123456789", "1700000000000"},
		{"traceId", "app", "key", "BBCDEF0123456789ABCDEF0123456789", "1700000000000"},
		{"ts", "app", "key", "ABCDEF0123456789ABCDEF0123456789", "1700000000001"},
	}

	for _, tc := range variants {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sig, err := computeSignature(tc.appID, tc.apiKey, tc.traceID, tc.ts)
			if err != nil {
				t.Fatalf("computeSignature: %v", err)
			}
			if sig.Sign == base.Sign {
				t.Errorf("changing %s did not change signature", tc.name)
			}
		})
	}
}

func TestComputeSignatureShortTraceID(t *testing.T) {
	t.Parallel()

	if _, err := computeSignature("app", "key", "ABC", "1700000000000"); err == nil {
		t.Fatal("expected error for short trace id")
	}
}

func TestNewTraceIDFormat(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		id := newTraceID()
		if len(id) != 32 {
			t.Fatalf("trace id should be 32 chars, got %d (%q)", len(id), id)
		}
		for _, r := range id {
			if !strings.ContainsRune("0123456789ABCDEF", r) {
				t.Fatalf("trace id contains non-hex char %q: %s", r, id)
			}
		}
		if seen[id] {
			t.Fatalf("trace id repeated: %s", id)
		}
		seen[id] = true
	}
}
