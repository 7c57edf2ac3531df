package chain

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer is an account able to authorise deployments and transactions.
type Signer struct {
	Address common.Address
	key     *ecdsa.PrivateKey
}

// NewSigner parses a hex encoded private key; the 0x prefix is optional.
func NewSigner(privateKeyHex string) (Signer, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return Signer{}, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKeyECDSA, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return Signer{}, fmt.Errorf("failed to cast public key to ECDSA")
	}

	return Signer{
		Address: crypto.PubkeyToAddress(*publicKeyECDSA),
		key:     privateKey,
	}, nil
}

// ParseSigners parses every key; the position of a key is its account index.
func ParseSigners(privateKeys []string) ([]Signer, error) {
	signers := make([]Signer, 0, len(privateKeys))

	var errs []error
	for i, key := range privateKeys {
		signer, err := NewSigner(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("account %d: %w", i, err))
			continue
		}
		signers = append(signers, signer)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return signers, nil
}
