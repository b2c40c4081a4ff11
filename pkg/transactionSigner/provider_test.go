package transactionSigner

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"net/http"
	"testing"

	"github.com/99designs/keyring"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/internal/keyGenerator"
	"github.com/filswan/swan-tx-runner/internal/keyGenerator/localKeyGenerator"
	"github.com/filswan/swan-tx-runner/internal/tests"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/txerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeWeb3Signer signs eth_signTransaction requests with a local key
type fakeWeb3Signer struct {
	key      *ecdsa.PrivateKey
	accounts []string
	down     bool
	requests []map[string]interface{}
	tamper   func(*types.DynamicFeeTx)
}

func (f *fakeWeb3Signer) SetHttpClient(client *http.Client) {}

func (f *fakeWeb3Signer) EthAccounts(ctx context.Context) ([]string, error) {
	return f.accounts, nil
}

func (f *fakeWeb3Signer) Upcheck(ctx context.Context) error {
	if f.down {
		return errors.New("connection refused")
	}
	return nil
}

func (f *fakeWeb3Signer) EthSignTransaction(ctx context.Context, from string, tx map[string]interface{}) (string, error) {
	f.requests = append(f.requests, tx)
	field := func(name string) string { return tx[name].(string) }

	chainID := hexutil.MustDecodeBig(field("chainId"))
	to := common.HexToAddress(field("to"))
	inner := &types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     hexutil.MustDecodeUint64(field("nonce")),
		GasTipCap: hexutil.MustDecodeBig(field("maxPriorityFeePerGas")),
		GasFeeCap: hexutil.MustDecodeBig(field("maxFeePerGas")),
		Gas:       hexutil.MustDecodeUint64(field("gas")),
		To:        &to,
		Value:     hexutil.MustDecodeBig(field("value")),
		Data:      hexutil.MustDecode(field("data")),
	}
	if f.tamper != nil {
		f.tamper(inner)
	}
	signed, err := types.SignNewTx(f.key, types.LatestSignerForChainID(chainID), inner)
	if err != nil {
		return "", err
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return "", err
	}
	return hexutil.Encode(raw), nil
}

func Test_Web3TransactionSigner_SendTransaction(t *testing.T) {
	chain := tests.NewSimulatedChain(t, 2)
	ctx := context.Background()

	fake := &fakeWeb3Signer{key: chain.Keys[0], accounts: []string{chain.Addresses[0].Hex()}}
	signer, err := NewWeb3TransactionSigner(fake, chain.Addresses[0], chain.Client, zaptest.NewLogger(t))
	require.NoError(t, err)

	tx := types.NewTransaction(0, chain.Addresses[1], big.NewInt(1), 0, big.NewInt(0), []byte{})
	sent, err := signer.SignAndSendTransaction(ctx, tx)
	require.NoError(t, err)
	require.Len(t, fake.requests, 1)
	assert.Equal(t, "0x2", fake.requests[0]["type"])

	receipt := mineAndGetReceipt(t, chain, sent)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
}

func Test_Web3TransactionSigner_RejectsAlteredTransaction(t *testing.T) {
	chain := tests.NewSimulatedChain(t, 2)
	ctx := context.Background()

	cases := []struct {
		name   string
		key    *ecdsa.PrivateKey
		tamper func(*types.DynamicFeeTx)
		want   string
	}{
		{"value", chain.Keys[0], func(tx *types.DynamicFeeTx) { tx.Value = big.NewInt(1_000_000) }, "value"},
		{"data", chain.Keys[0], func(tx *types.DynamicFeeTx) { tx.Data = []byte{0xde, 0xad} }, "call data"},
		{"gas", chain.Keys[0], func(tx *types.DynamicFeeTx) { tx.Gas++ }, "gas"},
		{"sender", chain.Keys[1], nil, "signed by"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeWeb3Signer{key: tt.key, accounts: []string{chain.Addresses[0].Hex()}, tamper: tt.tamper}
			signer, err := NewWeb3TransactionSigner(fake, chain.Addresses[0], chain.Client, zaptest.NewLogger(t))
			require.NoError(t, err)

			before, err := chain.Client.PendingNonceAt(ctx, chain.Addresses[0])
			require.NoError(t, err)

			tx := types.NewTransaction(0, chain.Addresses[1], big.NewInt(1), 0, big.NewInt(0), []byte{})
			_, err = signer.SignAndSendTransaction(ctx, tx)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "does not match the request")
			assert.Contains(t, err.Error(), tt.want)

			after, err := chain.Client.PendingNonceAt(ctx, chain.Addresses[0])
			require.NoError(t, err)
			assert.Equal(t, before, after, "nothing may be broadcast")
		})
	}
}

func Test_ConfigSignerProvider(t *testing.T) {
	chain := tests.NewSimulatedChain(t, 2)
	ctx := context.Background()
	l := zaptest.NewLogger(t)

	assertUnavailable := func(t *testing.T, err error) {
		t.Helper()
		require.Error(t, err)
		assert.True(t, txerrors.Is(err, txerrors.KindSignerUnavailable), "got %v", err)
	}

	t.Run("nil config", func(t *testing.T) {
		_, err := NewConfigSignerProvider(nil, chain.Client, l).GetSigner(ctx)
		assertUnavailable(t, err)
		assert.ErrorIs(t, err, txerrors.ErrNoSigner)
	})

	t.Run("empty private key", func(t *testing.T) {
		cfg := &config.SignerConfig{Type: config.SignerType_PrivateKey}
		_, err := NewConfigSignerProvider(cfg, chain.Client, l).GetSigner(ctx)
		assertUnavailable(t, err)
	})

	t.Run("malformed private key", func(t *testing.T) {
		cfg := &config.SignerConfig{Type: config.SignerType_PrivateKey, PrivateKey: "0xzz"}
		_, err := NewConfigSignerProvider(cfg, chain.Client, l).GetSigner(ctx)
		assertUnavailable(t, err)
	})

	t.Run("private key", func(t *testing.T) {
		cfg := &config.SignerConfig{Type: config.SignerType_PrivateKey, PrivateKey: chain.PrivateKeyHex(1)}
		signer, err := NewConfigSignerProvider(cfg, chain.Client, l).GetSigner(ctx)
		require.NoError(t, err)
		assert.Equal(t, chain.Addresses[1], signer.GetFromAddress())
	})

	t.Run("keyring", func(t *testing.T) {
		source := NewKeyringKeySource(keyring.NewArrayKeyring(nil))
		require.NoError(t, source.Store("payer", chain.PrivateKeyHex(0)))
		require.Error(t, source.Store("bad", "0x1234"))

		cfg := &config.SignerConfig{Type: config.SignerType_Keyring, KeyringItem: "payer"}
		signer, err := NewConfigSignerProvider(cfg, chain.Client, l, WithKeyring(source)).GetSigner(ctx)
		require.NoError(t, err)
		assert.Equal(t, chain.Addresses[0], signer.GetFromAddress())

		cfg = &config.SignerConfig{Type: config.SignerType_Keyring, KeyringItem: "missing"}
		_, err = NewConfigSignerProvider(cfg, chain.Client, l, WithKeyring(source)).GetSigner(ctx)
		assertUnavailable(t, err)
		assert.ErrorIs(t, err, txerrors.ErrNoSigner)

		_, err = NewConfigSignerProvider(cfg, chain.Client, l).GetSigner(ctx)
		assertUnavailable(t, err)
	})

	t.Run("web3signer picks first account", func(t *testing.T) {
		fake := &fakeWeb3Signer{key: chain.Keys[1], accounts: []string{chain.Addresses[1].Hex(), chain.Addresses[0].Hex()}}
		cfg := &config.SignerConfig{Type: config.SignerType_Web3Signer, Remote: &config.RemoteSignerConfig{Url: "http://unused"}}
		signer, err := NewConfigSignerProvider(cfg, chain.Client, l, WithWeb3SignerClient(fake)).GetSigner(ctx)
		require.NoError(t, err)
		assert.Equal(t, chain.Addresses[1], signer.GetFromAddress())
	})

	t.Run("web3signer without the configured key", func(t *testing.T) {
		fake := &fakeWeb3Signer{accounts: []string{chain.Addresses[1].Hex()}}
		cfg := &config.SignerConfig{Type: config.SignerType_Web3Signer, Remote: &config.RemoteSignerConfig{
			Url:         "http://unused",
			FromAddress: chain.Addresses[0].Hex(),
		}}
		_, err := NewConfigSignerProvider(cfg, chain.Client, l, WithWeb3SignerClient(fake)).GetSigner(ctx)
		assertUnavailable(t, err)
	})

	t.Run("web3signer down", func(t *testing.T) {
		fake := &fakeWeb3Signer{down: true}
		cfg := &config.SignerConfig{Type: config.SignerType_Web3Signer, Remote: &config.RemoteSignerConfig{Url: "http://unused"}}
		_, err := NewConfigSignerProvider(cfg, chain.Client, l, WithWeb3SignerClient(fake)).GetSigner(ctx)
		assertUnavailable(t, err)
	})

	t.Run("key manager", func(t *testing.T) {
		keyGen := localKeyGenerator.NewLocalKeyGenerator(l)
		require.NoError(t, keyGen.LoadPrivateKey("kms-key", chain.Keys[0], "payer", "payer"))
		factory := func(ctx context.Context, cfg *config.KMSSignerConfig) (keyGenerator.IKeyGenerator, error) {
			return keyGen, nil
		}

		cfg := &config.SignerConfig{Type: config.SignerType_AWSKMS, KMS: &config.KMSSignerConfig{KeyId: "kms-key"}}
		signer, err := NewConfigSignerProvider(cfg, chain.Client, l, WithKeyGeneratorFactory(factory)).GetSigner(ctx)
		require.NoError(t, err)
		assert.Equal(t, chain.Addresses[0], signer.GetFromAddress())
	})
}

func Test_StaticSignerProvider(t *testing.T) {
	var p *StaticSignerProvider
	_, err := p.GetSigner(context.Background())
	assert.True(t, txerrors.Is(err, txerrors.KindSignerUnavailable))

	_, err = (&StaticSignerProvider{}).GetSigner(context.Background())
	assert.True(t, txerrors.Is(err, txerrors.KindSignerUnavailable))
}
