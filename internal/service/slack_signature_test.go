package service

import (
	"strconv"
	"testing"
	"time"
)

// flipAt cambia el byte i por otro distinto; los dígitos siguen siendo dígitos.
func flipAt(s string, i int) string {
	b := []byte(s)
	switch {
	case b[i] >= '0' && b[i] <= '9':
		b[i] = '0' + (b[i]-'0'+1)%10
	case b[i] == 'a':
		b[i] = 'b'
	default:
		b[i] = 'a'
	}
	return string(b)
}

func TestVerifySlackSignature_ValidSignature(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	body := `{"type":"url_verification","challenge":"abc"}`
	sig := ComputeSlackSignature("secret", ts, body)

	if !verifySlackSignatureAt(now, "secret", ts, body, sig) {
		t.Fatalf("expected signature to verify")
	}
	if !VerifySlackSignature("secret", strconv.FormatInt(time.Now().Unix(), 10), body,
		ComputeSlackSignature("secret", strconv.FormatInt(time.Now().Unix(), 10), body)) {
		t.Fatalf("expected signature to verify against wall clock")
	}
}

func TestVerifySlackSignature_SingleCharacterChanges(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	body := `{"event":{"text":"hello"}}`
	sig := ComputeSlackSignature("secret", ts, body)

	for i := range body {
		if verifySlackSignatureAt(now, "secret", ts, flipAt(body, i), sig) {
			t.Fatalf("expected body change at %d to fail", i)
		}
	}
	for i := range "secret" {
		if verifySlackSignatureAt(now, flipAt("secret", i), ts, body, sig) {
			t.Fatalf("expected secret change at %d to fail", i)
		}
	}
	for i := range ts {
		if verifySlackSignatureAt(now, "secret", flipAt(ts, i), body, sig) {
			t.Fatalf("expected timestamp change at %d to fail", i)
		}
	}
	for i := range sig {
		if verifySlackSignatureAt(now, "secret", ts, body, flipAt(sig, i)) {
			t.Fatalf("expected signature change at %d to fail", i)
		}
	}
	// Un segundo de diferencia sigue dentro de la ventana; solo falla el HMAC.
	if verifySlackSignatureAt(now, "secret", strconv.FormatInt(now.Unix()+1, 10), body, sig) {
		t.Fatalf("expected timestamp change to fail")
	}
}

func TestVerifySlackSignature_StaleTimestamp(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	body := "payload"

	for _, offset := range []int64{-301, 301, -3600, 86400} {
		ts := strconv.FormatInt(now.Unix()+offset, 10)
		sig := ComputeSlackSignature("secret", ts, body)
		if verifySlackSignatureAt(now, "secret", ts, body, sig) {
			t.Fatalf("expected offset %d to be rejected", offset)
		}
	}

	for _, offset := range []int64{-300, 300} {
		ts := strconv.FormatInt(now.Unix()+offset, 10)
		sig := ComputeSlackSignature("secret", ts, body)
		if !verifySlackSignatureAt(now, "secret", ts, body, sig) {
			t.Fatalf("expected offset %d to be accepted", offset)
		}
	}
}

func TestVerifySlackSignature_MalformedInput(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cases := []struct {
		name, ts, sig string
	}{
		{name: "empty timestamp", ts: "", sig: "v0=00"},
		{name: "non numeric timestamp", ts: "abc", sig: "v0=00"},
		{name: "empty signature", ts: "1700000000", sig: ""},
	}
	for _, tc := range cases {
		if verifySlackSignatureAt(now, "secret", tc.ts, "body", tc.sig) {
			t.Fatalf("%s: expected false", tc.name)
		}
	}
}
