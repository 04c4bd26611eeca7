package security

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// throwaway key, never funded
const testKey = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

type fakeProvider struct {
	values map[string]string
	err    error
}

func (f *fakeProvider) GetSecret(ctx context.Context, key string) (map[string]string, error) {
	return f.values, f.err
}

func TestLoadSignerFromEnv(t *testing.T) {
	t.Setenv(PrivateKeyEnv, testKey)

	signer, err := LoadSigner(context.Background(), nil, "", zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", signer.Address().Hex())

	// 32-byte sender: address then the padded subaccount name
	sub := signer.Subaccount()
	require.True(t, strings.HasPrefix(sub, "0x"))
	assert.Len(t, sub, 2+64)
	assert.True(t, strings.HasPrefix(strings.ToLower(sub), strings.ToLower(signer.Address().Hex())))
}

func TestLoadSignerEnvUnset(t *testing.T) {
	t.Setenv(PrivateKeyEnv, "")

	_, err := LoadSigner(context.Background(), nil, "", zap.NewNop())
	assert.Error(t, err)
}

func TestLoadSignerBadKey(t *testing.T) {
	t.Setenv(PrivateKeyEnv, "0xnothex")

	_, err := LoadSigner(context.Background(), nil, "", zap.NewNop())
	assert.ErrorContains(t, err, "parse signing key")
}

func TestLoadSignerFromSecretsManager(t *testing.T) {
	provider := &fakeProvider{values: map[string]string{"private_key": testKey}}

	signer, err := LoadSigner(context.Background(), provider, "vertex/signing-key", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", signer.Address().Hex())
}

func TestLoadSignerSecretsManagerErrors(t *testing.T) {
	t.Run("fetch failed", func(t *testing.T) {
		provider := &fakeProvider{err: errors.New("access denied")}
		_, err := LoadSigner(context.Background(), provider, "vertex/signing-key", zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("missing field", func(t *testing.T) {
		provider := &fakeProvider{values: map[string]string{"other": "x"}}
		_, err := LoadSigner(context.Background(), provider, "vertex/signing-key", zap.NewNop())
		assert.ErrorContains(t, err, "private_key")
	})
}

func TestSignPayload(t *testing.T) {
	t.Setenv(PrivateKeyEnv, testKey)
	signer, err := LoadSigner(context.Background(), nil, "", zap.NewNop())
	require.NoError(t, err)

	payload := []byte(`{"type":"place_order"}`)
	sig, err := signer.SignPayload(payload)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	// the signature must recover to the signing key
	digest := crypto.Keccak256Hash(payload)
	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), crypto.PubkeyToAddress(*pub))
}
