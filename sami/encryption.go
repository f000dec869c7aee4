package sami

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"math/big"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Thin wrappers around the RSA/SHA primitives so that the verifiers in
// validation.go never touch crypto libraries directly.

func HashBytes(data []byte) []byte {
	digest := sha256.Sum256(data)
	return digest[:]
}

func HexDigest(digest []byte) string {
	return hex.EncodeToString(digest)
}

// SerializeBytes encodes binary material (signatures, encrypted blobs)
// into the string form used on the wire.
func SerializeBytes(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func DeserializeString(data string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to deserialize string")
	}
	return decoded, nil
}

// ConstructRSAPublicKey rebuilds a public key from its wire components.
// Peers send garbage, so a bad modulus or exponent is an error result,
// never a panic.
func ConstructRSAPublicKey(n *big.Int, e int) (*rsa.PublicKey, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, errors.New("invalid RSA modulus")
	}
	// Exponent must be odd and at least 3. An upper bound keeps
	// maliciously huge exponents from reaching the verifier.
	if e < 3 || e%2 == 0 || e > 1<<31-1 {
		return nil, errors.New("invalid RSA public exponent")
	}
	return &rsa.PublicKey{N: n, E: e}, nil
}

// PublicKeyHash digests the key's modulus and exponent, both in decimal.
// Signers and verifiers must agree on this exact input.
func PublicKeyHash(publicKey *rsa.PublicKey) []byte {
	payload := publicKey.N.Text(10) + "," + strconv.Itoa(publicKey.E)
	return HashBytes([]byte(payload))
}

func IsSignatureValid(publicKey *rsa.PublicKey, digest []byte, sig []byte) bool {
	err := rsa.VerifyPKCS1v15(publicKey, crypto.SHA256, digest, sig)
	return err == nil
}

func GetRSASignature(privateKey *rsa.PrivateKey, digest []byte) ([]byte, error) {
	sig, err := rsa.SignPKCS1v15(rand.Reader, privateKey, crypto.SHA256, digest)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign digest")
	}
	return sig, nil
}

func GenerateRSAPrivateKey(bits int) (*rsa.PrivateKey, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate RSA key pair")
	}
	return privateKey, nil
}

// ImportRSAPrivateKeyFromFile reads a PKCS#1 DER private key from disk.
func ImportRSAPrivateKeyFromFile(fileLocation string) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(fileLocation)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read private key file %s", fileLocation)
	}
	privateKey, err := x509.ParsePKCS1PrivateKey(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse private key file %s", fileLocation)
	}
	return privateKey, nil
}
