package security

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/secrets"
)

// PrivateKeyEnv is the environment variable holding the signing key,
// supplied out-of-band (via .env file or otherwise) as 0x-prefixed hex.
const PrivateKeyEnv = "VERTEX_PRIVATE_KEY"

// subaccountName is the fixed subaccount this adapter trades under,
// padded to the 12-byte name field of the 32-byte sender.
const subaccountName = "default"

// Signer holds the secp256k1 credential used to sign venue payloads.
type Signer struct {
	key        *ecdsa.PrivateKey
	address    common.Address
	subaccount string
}

// LoadSigner initializes the signing credential. The key is read from the
// environment; if a secret name is configured, AWS Secrets Manager is tried
// first and the environment is the fallback.
func LoadSigner(ctx context.Context, provider secrets.Provider, secretName string, logger *zap.Logger) (*Signer, error) {
	if secretName != "" && provider != nil {
		logger.Info("loading signing key from secrets manager", zap.String("secret", secretName))
		values, err := provider.GetSecret(ctx, secretName)
		if err != nil {
			return nil, fmt.Errorf("fetch signing key secret: %w", err)
		}
		if hexKey, ok := values["private_key"]; ok && hexKey != "" {
			return newSigner(hexKey)
		}
		return nil, fmt.Errorf("secret %s has no private_key field", secretName)
	}

	logger.Info("loading signing key from environment")
	hexKey := os.Getenv(PrivateKeyEnv)
	if hexKey == "" {
		return nil, errors.New(PrivateKeyEnv + " is not set")
	}
	return newSigner(hexKey)
}

func newSigner(hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}
	address := crypto.PubkeyToAddress(key.PublicKey)

	// 32-byte sender: 20-byte address followed by the 12-byte subaccount name.
	var sender [32]byte
	copy(sender[:20], address.Bytes())
	copy(sender[20:], subaccountName)

	return &Signer{
		key:        key,
		address:    address,
		subaccount: hexutil.Encode(sender[:]),
	}, nil
}

// Address returns the signer's account address.
func (s *Signer) Address() common.Address {
	return s.address
}

// Subaccount returns the hex-encoded 32-byte sender identity.
func (s *Signer) Subaccount() string {
	return s.subaccount
}

// SignPayload signs the keccak digest of a serialized venue payload and
// returns the 65-byte recoverable signature.
func (s *Signer) SignPayload(payload []byte) ([]byte, error) {
	digest := crypto.Keccak256Hash(payload)
	return crypto.Sign(digest.Bytes(), s.key)
}
