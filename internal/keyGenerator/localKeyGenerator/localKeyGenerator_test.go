package localKeyGenerator

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/filswan/swan-tx-runner/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anvil account #0
const testPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func setup() (*LocalKeyGenerator, error) {
	l, err := logger.NewLogger(&logger.LoggerConfig{
		Debug: true,
	})
	if err != nil {
		return nil, err
	}

	return NewLocalKeyGenerator(l), nil
}

func Test_LocalKeyGenerator(t *testing.T) {
	generator, err := setup()
	if err != nil {
		t.Fatalf("Failed to setup test: %v", err)
	}

	t.Run("Should generate ECDSA key successfully", func(t *testing.T) {
		result, err := generator.GenerateECDSAKey(context.Background(), "test-key-1", "test-alias-1")
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.NotNil(t, result.PublicKey)
		assert.True(t, strings.HasPrefix(result.KeyId, "local-key-"))
		assert.Regexp(t, "^0x[0-9a-fA-F]{40}$", result.Address)

		pubHex, err := result.GetPublicKeyHex()
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(pubHex, "0x"))
	})

	t.Run("Should generate unique keys", func(t *testing.T) {
		keyIds := make(map[string]bool)
		addresses := make(map[string]bool)
		for i := 0; i < 5; i++ {
			result, err := generator.GenerateECDSAKey(context.Background(), "test-key", "test-alias")
			require.NoError(t, err)
			assert.False(t, keyIds[result.KeyId])
			assert.False(t, addresses[result.Address])
			keyIds[result.KeyId] = true
			addresses[result.Address] = true
		}
	})

	t.Run("Should retrieve key by ID", func(t *testing.T) {
		generatedKey, err := generator.GenerateECDSAKey(context.Background(), "test-key-retrieve", "test-alias-retrieve")
		require.NoError(t, err)

		retrievedKey, err := generator.GetECDSAKeyById(context.Background(), generatedKey.KeyId)
		require.NoError(t, err)
		assert.Equal(t, generatedKey.Address, retrievedKey.Address)
		assert.Equal(t, generatedKey.PublicKey.X, retrievedKey.PublicKey.X)
	})

	t.Run("Should return error for non-existent key ID", func(t *testing.T) {
		retrievedKey, err := generator.GetECDSAKeyById(context.Background(), "non-existent-key-id")
		assert.Error(t, err)
		assert.Nil(t, retrievedKey)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("Should sign digest recoverable to the key address", func(t *testing.T) {
		generatedKey, err := generator.GenerateECDSAKey(context.Background(), "test-key-sign", "test-alias-sign")
		require.NoError(t, err)

		digest := crypto.Keccak256([]byte("test message to sign"))
		signature, err := generator.SignDigest(context.Background(), generatedKey.KeyId, digest)
		require.NoError(t, err)
		require.Len(t, signature, 65)
		assert.LessOrEqual(t, signature[64], byte(1))

		pub, err := crypto.SigToPub(digest, signature)
		require.NoError(t, err)
		assert.Equal(t, generatedKey.GetAddress(), crypto.PubkeyToAddress(*pub))
	})

	t.Run("Should reject non-digest input", func(t *testing.T) {
		generatedKey, err := generator.GenerateECDSAKey(context.Background(), "k", "a")
		require.NoError(t, err)

		_, err = generator.SignDigest(context.Background(), generatedKey.KeyId, []byte("short"))
		require.Error(t, err)
	})

	t.Run("Should return error when signing with non-existent key", func(t *testing.T) {
		signature, err := generator.SignDigest(context.Background(), "non-existent-signing-key", crypto.Keccak256([]byte("m")))
		assert.Error(t, err)
		assert.Nil(t, signature)
	})
}

func Test_HelperFunctions(t *testing.T) {
	generator, err := setup()
	require.NoError(t, err)

	t.Run("Should load private key from hex", func(t *testing.T) {
		err := generator.LoadPrivateKeyFromHex("anvil-0", testPrivateKey, "anvil", "anvil")
		require.NoError(t, err)
		assert.True(t, generator.KeyExists("anvil-0"))

		key, err := generator.GetECDSAKeyById(context.Background(), "anvil-0")
		require.NoError(t, err)
		assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", key.GetAddress().Hex())
	})

	t.Run("Should reject duplicate key IDs", func(t *testing.T) {
		err := generator.LoadPrivateKeyFromHex("anvil-0", testPrivateKey, "anvil", "anvil")
		require.Error(t, err)
		assert.Equal(t, 1, generator.GetKeyCount())
	})

	t.Run("Should reject nil and malformed keys", func(t *testing.T) {
		require.Error(t, generator.LoadPrivateKey("nil", nil, "", ""))
		require.Error(t, generator.LoadPrivateKeyFromHex("bad", "0x1234", "", ""))
	})
}

func Benchmark_SignDigest(b *testing.B) {
	generator, err := setup()
	if err != nil {
		b.Fatalf("Failed to setup benchmark: %v", err)
	}

	ctx := context.Background()
	key, err := generator.GenerateECDSAKey(ctx, "benchmark-key", "benchmark-alias")
	if err != nil {
		b.Fatalf("Failed to generate key: %v", err)
	}
	digest := crypto.Keccak256([]byte("benchmark"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := generator.SignDigest(ctx, key.KeyId, digest); err != nil {
			b.Fatalf("Failed to sign: %v", err)
		}
	}
}
