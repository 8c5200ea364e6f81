package infra

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log"
	"strings"

	"github.com/cockroachdb/errors"
)

// ParseSigningKey reads the PKCS1 RSA private key used to sign security
// event tokens. Docker-compose escapes the newlines of multi-line env
// variables, so literal "\n" sequences are unescaped first.
func ParseSigningKey(privateKeyPem string) (*rsa.PrivateKey, error) {
	privateKeyPem = strings.ReplaceAll(privateKeyPem, "\\n", "\n")

	block, _ := pem.Decode([]byte(privateKeyPem))
	if block == nil || block.Type != "RSA PRIVATE KEY" {
		return nil, errors.New("no PEM block containing an RSA private key")
	}
	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

func MustParseSigningKey(privateKeyPem string) *rsa.PrivateKey {
	privateKey, err := ParseSigningKey(privateKeyPem)
	if err != nil {
		log.Fatalf("can't load the notification signing key: %v", err)
	}
	return privateKey
}
