package sami

import (
	"crypto/rsa"
	"encoding/json"
)

// NodeProfile is another peer's identity: their RSA public key, as
// admitted by IsValidNode.
type NodeProfile struct {
	PublicKey *rsa.PublicKey
}

// NodeProfileFromData reconstructs a node identity from wire data.
// Returns false unless the self-attestation holds.
func NodeProfileFromData(nodeData map[string]any, keysLength int) (*NodeProfile, bool) {
	if !IsValidNode(nodeData, keysLength) {
		return nil, false
	}
	// IsValidNode already proved these fields reconstruct.
	n, _ := asBigInt(nodeData["rsa_n"])
	e, _ := asInt(nodeData["rsa_e"])
	publicKey, err := ConstructRSAPublicKey(n, e)
	if err != nil {
		return nil, false
	}
	return &NodeProfile{PublicKey: publicKey}, true
}

var exportNode = MustExportValidator("node_structure")

// ExportSigned produces the self-attested wire form of this node:
// modulus, exponent, public key hash, and a signature over that hash.
// privateKey must be the counterpart of PublicKey or peers will reject
// the result.
func (p *NodeProfile) ExportSigned(privateKey *rsa.PrivateKey) (map[string]any, error) {
	digest := PublicKeyHash(p.PublicKey)
	sig, err := GetRSASignature(privateKey, digest)
	if err != nil {
		return nil, err
	}
	return exportNode(map[string]any{
		"rsa_n": json.Number(p.PublicKey.N.Text(10)),
		"rsa_e": p.PublicKey.E,
		"hash":  HexDigest(digest),
		"sig":   SerializeBytes(sig),
	})
}
