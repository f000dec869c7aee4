package sami

import (
	"crypto/rsa"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// 1024-bit keys keep the tests fast. The key length is a config value,
// so the verifiers do not care.
const testKeysLength = 1024

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

func testPrivateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		privateKey, err := GenerateRSAPrivateKey(testKeysLength)
		if err != nil {
			t.Fatalf("generate test key failed: %v", err)
		}
		testKey = privateKey
	})
	return testKey
}

func newTestConfigs() Configs {
	return Configs{
		PollInterval:           10 * time.Millisecond,
		PrivateKeyWaitInterval: 10 * time.Millisecond,
		RSAKeysLength:          testKeysLength,
		ContactDelimiter:       ":",
		MaxRequestLifespan:     time.Hour,
		OwnAddress:             "127.0.0.1:62355",
	}
}

func newTestNode(t *testing.T) *Node {
	t.Helper()
	cfg := newTestConfigs()
	rawRequests, err := NewRawRequests(filepath.Join(t.TempDir(), "raw_requests"))
	if err != nil {
		t.Fatalf("open raw requests store failed: %v", err)
	}
	t.Cleanup(func() { rawRequests.Close() })

	networks := NewNetworks()
	return &Node{
		cfg:         cfg,
		networks:    networks,
		rawRequests: rawRequests,
		handler:     NewRequestsHandler(cfg, rawRequests, networks),
		ownContact:  Contact{Address: cfg.OwnAddress},
	}
}

func buildNodeDict(t *testing.T, privateKey *rsa.PrivateKey) map[string]any {
	t.Helper()
	profile := NodeProfile{PublicKey: &privateKey.PublicKey}
	dic, err := profile.ExportSigned(privateKey)
	if err != nil {
		t.Fatalf("export signed node failed: %v", err)
	}
	return dic
}

func buildAESKeyEnvelope(t *testing.T, privateKey *rsa.PrivateKey, value string) map[string]any {
	t.Helper()
	digest := HashBytes([]byte(value))
	sig, err := GetRSASignature(privateKey, digest)
	if err != nil {
		t.Fatalf("sign envelope digest failed: %v", err)
	}
	return map[string]any{
		"value": value,
		"hash":  HexDigest(digest),
		"sig":   SerializeBytes(sig),
	}
}

func buildReceivedMessageDict(t *testing.T, privateKey *rsa.PrivateKey) map[string]any {
	t.Helper()
	content := "hello from the other side"
	return map[string]any{
		"content": content,
		"meta": map[string]any{
			"time_sent": 1700000000,
			"digest":    HexDigest(HashBytes([]byte(content))),
		},
		"author": buildNodeDict(t, privateKey),
	}
}
