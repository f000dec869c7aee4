package sami

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFields(t *testing.T) {
	assert := assert.New(t)

	structure := Structure{
		"content": strField(),
		"meta": nested(Structure{
			"time_sent": intField(),
			"digest":    strField(),
		}),
	}
	data := map[string]any{
		"content": "hi",
		"meta": map[string]any{
			"time_sent": 1700000000,
			"digest":    "abc",
		},
	}
	assert.True(ValidateFields(data, structure), "well-formed data should validate")

	// removing any single field flips the result
	for field := range data {
		partial := map[string]any{}
		for k, v := range data {
			if k != field {
				partial[k] = v
			}
		}
		assert.False(ValidateFields(partial, structure), "missing field %q should invalidate", field)
	}

	// extra field
	data["extra"] = 1
	assert.False(ValidateFields(data, structure), "extra field should invalidate")
	delete(data, "extra")

	// wrong types
	assert.False(ValidateFields(map[string]any{
		"content": 42,
		"meta":    data["meta"],
	}, structure), "int where string expected should invalidate")
	assert.False(ValidateFields(map[string]any{
		"content": "hi",
		"meta":    "not a mapping",
	}, structure), "string where nested mapping expected should invalidate")

	// nil and empty inputs never panic
	assert.False(ValidateFields(nil, structure))
	assert.False(ValidateFields(data, nil))
	assert.True(ValidateFields(map[string]any{}, Structure{}), "two empty mappings match")
	assert.False(ValidateFields(map[string]any{}, structure))
}

func TestValidateFieldsDictKind(t *testing.T) {
	assert := assert.New(t)
	assert.True(ValidateFields(map[string]any{"data": map[string]any{"anything": 1.5}}, Structure{"data": dictField()}),
		"dict fields accept any mapping without recursing")
	assert.False(ValidateFields(map[string]any{"data": []any{1, 2}}, Structure{"data": dictField()}),
		"sequences are not mappings")
}

func TestIsIntegerLike(t *testing.T) {
	assert := assert.New(t)
	structure := Structure{"n": intField()}

	assert.True(ValidateFields(map[string]any{"n": 42}, structure))
	assert.True(ValidateFields(map[string]any{"n": int64(42)}, structure))
	assert.True(ValidateFields(map[string]any{"n": "42"}, structure), "digit string is integer-like")
	assert.True(ValidateFields(map[string]any{"n": json.Number("42")}, structure))
	assert.True(ValidateFields(map[string]any{"n": "-7"}, structure))

	assert.False(ValidateFields(map[string]any{"n": 3.14}, structure), "float is not integer-like")
	assert.False(ValidateFields(map[string]any{"n": json.Number("3.14")}, structure))
	assert.False(ValidateFields(map[string]any{"n": "abc"}, structure))
	assert.False(ValidateFields(map[string]any{"n": "4.2"}, structure))
	assert.False(ValidateFields(map[string]any{"n": nil}, structure))
}

func TestIsValidContact(t *testing.T) {
	assert := assert.New(t)

	valid := func(address string) bool {
		return IsValidContact(map[string]any{"address": address}, ":")
	}

	assert.True(valid("198.51.100.7:9001"))
	assert.True(valid("node1.example.com:443"))
	assert.True(valid("node1.example.com.:443"), "one trailing dot is allowed")
	assert.False(valid("2001:db8::1:9001"), "IPv6 with colon delimiter splits into too many parts")

	assert.False(valid("198.51.100.7"), "no delimiter")
	assert.False(valid("198.51.100.7:70000"), "port out of range")
	assert.False(valid("198.51.100.7:0"), "port zero")
	assert.False(valid("198.51.100.7:abc"), "port not an integer")
	assert.False(valid("-bad-.com:9001"), "label cannot start with hyphen")
	assert.False(valid(strings.Repeat("a", 300)+".com:9001"), "hostname too long")

	assert.False(IsValidContact(map[string]any{"address": 42}, ":"), "address must be a string")
	assert.False(IsValidContact(map[string]any{}, ":"))
	assert.False(IsValidContact(nil, ":"))
}

func TestVerifyReceivedAESKey(t *testing.T) {
	assert := assert.New(t)
	privateKey := testPrivateKey(t)
	publicKey := &privateKey.PublicKey

	envelope := buildAESKeyEnvelope(t, privateKey, "0123456789abcdef0123456789abcdef")
	assert.True(VerifyReceivedAESKey(envelope, publicKey), "untampered envelope should verify")

	// one hex character flipped in the hash
	tampered := map[string]any{}
	for k, v := range envelope {
		tampered[k] = v
	}
	h := envelope["hash"].(string)
	flipped := "0"
	if h[0] == '0' {
		flipped = "1"
	}
	tampered["hash"] = flipped + h[1:]
	assert.False(VerifyReceivedAESKey(tampered, publicKey), "tampered hash should fail")

	// valid hash but signature over a different digest
	other := buildAESKeyEnvelope(t, privateKey, "another value entirely")
	tampered["hash"] = h
	tampered["sig"] = other["sig"]
	assert.False(VerifyReceivedAESKey(tampered, publicKey), "signature over wrong digest should fail")

	// garbage signature encoding
	tampered["sig"] = "%%% not base64 %%%"
	assert.False(VerifyReceivedAESKey(tampered, publicKey))

	// structural failure short-circuits
	assert.False(VerifyReceivedAESKey(map[string]any{"value": "x"}, publicKey))
}

func TestIsValidReceivedMessage(t *testing.T) {
	assert := assert.New(t)
	privateKey := testPrivateKey(t)

	message := buildReceivedMessageDict(t, privateKey)
	assert.True(IsValidReceivedMessage(message, testKeysLength))

	message["author"].(map[string]any)["hash"] = "deadbeef"
	assert.False(IsValidReceivedMessage(message, testKeysLength), "bad author should invalidate the message")

	assert.False(IsValidReceivedMessage(map[string]any{"content": "x"}, testKeysLength))
}

func TestValidateExportStructure(t *testing.T) {
	assert := assert.New(t)

	export, err := ValidateExportStructure("simple_contact_structure", func() map[string]any {
		return map[string]any{"address": "198.51.100.7:9001"}
	})
	if err != nil {
		t.Fatalf("wrapping a known structure failed: %v", err)
	}
	dic, err := export()
	assert.Nil(err)
	assert.Equal("198.51.100.7:9001", dic["address"])

	// producer building an invalid mapping is a reported error
	broken, err := ValidateExportStructure("simple_contact_structure", func() map[string]any {
		return map[string]any{"address": 42}
	})
	if err != nil {
		t.Fatalf("wrapping should not fail for a known structure: %v", err)
	}
	_, err = broken()
	assert.NotNil(err, "invalid produced mapping should error")

	// unknown structure name fails at wrap time, not at call time
	_, err = ValidateExportStructure("no_such_structure", func() map[string]any { return nil })
	assert.NotNil(err, "unknown struct name should fail fast")
}

func TestMustExportValidatorPanicsOnUnknownName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an unknown structure name")
		}
	}()
	MustExportValidator("no_such_structure")
}
