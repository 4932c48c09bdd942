package web

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"testing"

	"github.com/bookmarkhive/hive/activitypub"
	"github.com/bookmarkhive/hive/util"
)

func TestWebfingerRejectsForeignResources(t *testing.T) {
	conf := &util.AppConfig{}
	conf.Conf.Domain = "hive.example"
	server := &Server{conf: conf}

	cases := []string{
		"",
		"https://hive.example/profile/alice",
		"acct:alice@other.example",
	}

	for _, resource := range cases {
		if _, err := server.Webfinger(resource); err == nil {
			t.Errorf("Expected error for resource %q", resource)
		}
	}
}

func TestVerifySignatureDigestMismatch(t *testing.T) {
	server := &Server{}

	req, _ := http.NewRequest("POST", "https://hive.example/ap/inbox", nil)
	req.Header.Set("Digest", "SHA-256=bogus")

	err := server.verifySignature(req, []byte(`{"type":"Follow"}`), "https://remote.example/users/bob", "")
	if err == nil {
		t.Error("Expected error for digest mismatch")
	}
}

func TestVerifySignatureKeyActorMismatch(t *testing.T) {
	server := &Server{}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	payload := []byte(`{"type":"Follow"}`)
	headers, err := activitypub.SignedHeaders("https://hive.example/ap/inbox",
		"https://remote.example/users/mallory#main-key", key, payload)
	if err != nil {
		t.Fatalf("SignedHeaders failed: %v", err)
	}

	req, _ := http.NewRequest("POST", "https://hive.example/ap/inbox", nil)
	req.Header = headers

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("Failed to marshal public key: %v", err)
	}
	pubPem := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes}))

	// the signature itself verifies, but the key belongs to a
	// different actor than the one named in the activity
	verifyErr := server.verifySignature(req, payload, "https://remote.example/users/bob", pubPem)
	if verifyErr == nil {
		t.Error("Expected error when the signing key belongs to another actor")
	}
}
