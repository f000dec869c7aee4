package sami

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"math/big"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// All the verifiers in this file are pure predicates: hostile input of
// any shape collapses to false, never to a panic or an error. Callers
// only ever learn admit/reject.

// ValidateFields checks that dictionary carries exactly the fields the
// structure declares, with matching types. Recursive in nested
// structures only; sequences are not iterated through.
func ValidateFields(dictionary map[string]any, structure Structure) bool {
	if dictionary == nil || structure == nil {
		return false
	}
	if len(dictionary) != len(structure) {
		return false
	}
	for fieldName, spec := range structure {
		fieldValue, found := dictionary[fieldName]
		if !found {
			return false
		}
		if spec.Nested != nil {
			nestedValue, ok := fieldValue.(map[string]any)
			if !ok {
				return false
			}
			if !ValidateFields(nestedValue, spec.Nested) {
				return false
			}
			continue
		}
		switch spec.Kind {
		case Integer:
			if !isIntegerLike(fieldValue) {
				return false
			}
		case String:
			if _, ok := fieldValue.(string); !ok {
				return false
			}
		case Dict:
			if _, ok := fieldValue.(map[string]any); !ok {
				return false
			}
		}
	}
	return true
}

// isIntegerLike reports whether a value can be losslessly read as an
// integer. Digit-only strings count; floats do not, whether they arrive
// as float64 or as a fractional JSON number token.
func isIntegerLike(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		_, ok := new(big.Int).SetString(v.String(), 10)
		return ok
	case string:
		_, ok := new(big.Int).SetString(v, 10)
		return ok
	default:
		return false
	}
}

// asBigInt reads an integer-like value at arbitrary precision.
// RSA moduli do not fit in an int64.
func asBigInt(value any) (*big.Int, bool) {
	switch v := value.(type) {
	case int:
		return big.NewInt(int64(v)), true
	case int64:
		return big.NewInt(v), true
	case uint64:
		return new(big.Int).SetUint64(v), true
	case json.Number:
		return new(big.Int).SetString(v.String(), 10)
	case string:
		return new(big.Int).SetString(v, 10)
	default:
		return nil, false
	}
}

func asInt(value any) (int, bool) {
	b, ok := asBigInt(value)
	if !ok || !b.IsInt64() {
		return 0, false
	}
	n := b.Int64()
	if n > int64(^uint(0)>>1) || n < -int64(^uint(0)>>1)-1 {
		return 0, false
	}
	return int(n), true
}

// VerifyReceivedAESKey verifies the AES key envelope received as a
// mapping: the hash field must be the hex digest of the value field, and
// the sig field must sign that digest under the author's key.
func VerifyReceivedAESKey(key map[string]any, rsaPublicKey *rsa.PublicKey) bool {
	if !ValidateFields(key, AESKeyStructure) {
		return false
	}
	value := key["value"].(string)
	hStr := key["hash"].(string)
	sig, err := DeserializeString(key["sig"].(string))
	if err != nil {
		return false
	}
	digest := HashBytes([]byte(value))
	if hStr != HexDigest(digest) {
		return false
	}
	return IsSignatureValid(rsaPublicKey, digest, sig)
}

// IsValidRequest checks the standard request envelope.
// Valid does not mean trustworthy.
func IsValidRequest(request map[string]any) bool {
	return ValidateFields(request, RequestStandardStructure)
}

// IsValidContact checks that the mapping holds a well-formed contact:
// "<ip-or-hostname><delimiter><port>".
func IsValidContact(contactData map[string]any, delimiter string) bool {
	if !ValidateFields(contactData, SimpleContactStructure) {
		return false
	}

	address := strings.Split(contactData["address"].(string), delimiter)
	if len(address) != 2 {
		return false
	}

	ipAddress, port := address[0], address[1]

	if !isAddressValid(ipAddress) {
		return false
	}
	return isNetworkPortValid(port)
}

// IsValidNode validates all the fields of a node: structure, key
// reconstruction, key size, self-hash and self-signature, in that order.
func IsValidNode(nodeData map[string]any, keysLength int) bool {
	if !ValidateFields(nodeData, NodeStructure) {
		return false
	}

	n, ok := asBigInt(nodeData["rsa_n"])
	if !ok {
		return false
	}
	e, ok := asInt(nodeData["rsa_e"])
	if !ok {
		return false
	}
	// Invalid modulus and/or exponent -> invalid RSA key, not an error.
	nodePubkey, err := ConstructRSAPublicKey(n, e)
	if err != nil {
		return false
	}

	// With L being the key length in bits, 2**(L-1) <= N < 2**L.
	if nodePubkey.N.BitLen() != keysLength {
		return false
	}

	digest := PublicKeyHash(nodePubkey)
	if HexDigest(digest) != nodeData["hash"].(string) {
		return false
	}

	sig, err := DeserializeString(nodeData["sig"].(string))
	if err != nil {
		return false
	}
	return IsSignatureValid(nodePubkey, digest, sig)
}

// IsValidReceivedMessage checks the structure of a received message and
// the admissibility of its author.
//
// The content digest in meta is not checked against the content: peers
// do not fill it canonically, so enforcing it would reject every message
// on the network. Known gap.
func IsValidReceivedMessage(messageData map[string]any, keysLength int) bool {
	if !ValidateFields(messageData, ReceivedMessageStructure) {
		return false
	}
	return IsValidNode(messageData["author"].(map[string]any), keysLength)
}

// ValidateExportStructure wraps a producer of outbound mappings with a
// structural check, so a bug in the producer surfaces as an error
// instead of leaking an invalid mapping onto the wire. The structure
// name is resolved here, once; an unknown name is a configuration error.
func ValidateExportStructure(structName string, producer func() map[string]any) (func() (map[string]any, error), error) {
	structure := StructureMapping(structName)
	if structure == nil {
		return nil, errors.Errorf("invalid struct name: %q", structName)
	}
	return func() (map[string]any, error) {
		dic := producer()
		if !ValidateFields(dic, structure) {
			return nil, errors.Errorf("invalid export structure for %q", structName)
		}
		return dic, nil
	}, nil
}

// MustExportValidator is the fail-fast form of ValidateExportStructure
// for exporters wired at startup: resolving an unknown structure name is
// a configuration error, so it panics instead of returning it.
func MustExportValidator(structName string) func(map[string]any) (map[string]any, error) {
	structure := StructureMapping(structName)
	if structure == nil {
		panic(fmt.Sprintf("invalid struct name: %q", structName))
	}
	return func(dic map[string]any) (map[string]any, error) {
		if !ValidateFields(dic, structure) {
			return nil, errors.Errorf("invalid export structure for %q", structName)
		}
		return dic, nil
	}
}

// Network section

var fqdnLabelPattern = regexp.MustCompile(`(?i)^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

func isIPAddressValid(address string) bool {
	return net.ParseIP(address) != nil
}

// isAddressValid accepts an IP address or a fully-qualified domain name.
func isAddressValid(address string) bool {
	if isIPAddressValid(address) {
		return true
	}
	return isFQDN(address)
}

// https://en.m.wikipedia.org/wiki/Fully_qualified_domain_name
func isFQDN(hostname string) bool {
	if len(hostname) <= 1 || len(hostname) >= 253 {
		return false
	}
	hostname = strings.TrimSuffix(hostname, ".")
	for _, label := range strings.Split(hostname, ".") {
		if !fqdnLabelPattern.MatchString(label) {
			return false
		}
	}
	return true
}

func isNetworkPortValid(port string) bool {
	p, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return 0 < p && p < 65536
}
