package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
)

// LoadRSAPrivateKeyFromPEM decodes a PEM block and returns an RSA private key.
func LoadRSAPrivateKeyFromPEM(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		key2, err2 := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err2 != nil {
			return nil, err
		}
		var ok bool
		key, ok = key2.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("PEM is not an RSA private key")
		}
	}
	return key, nil
}

// LoadRSAPublicKeyFromPEM accepts a PKIX or PKCS1 public key, a certificate, or a private key
// whose public half is used.
func LoadRSAPublicKeyFromPEM(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}
	switch block.Type {
	case "CERTIFICATE":
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		return asRSAPublicKey(cert.PublicKey)
	case "RSA PRIVATE KEY", "PRIVATE KEY":
		key, err := LoadRSAPrivateKeyFromPEM(pemBytes)
		if err != nil {
			return nil, err
		}
		return &key.PublicKey, nil
	}
	if pub, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		return asRSAPublicKey(pub)
	}
	return x509.ParsePKCS1PublicKey(block.Bytes)
}

func asRSAPublicKey(pub interface{}) (*rsa.PublicKey, error) {
	key, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("PEM is not an RSA public key")
	}
	return key, nil
}
