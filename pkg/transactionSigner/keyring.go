package transactionSigner

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/99designs/keyring"
	"github.com/filswan/swan-tx-runner/pkg/txerrors"
	"github.com/filswan/swan-tx-runner/pkg/util"
)

// KeyringKeySource stores hex private keys in the OS keychain so they do not
// have to live in .env files.
type KeyringKeySource struct {
	ring keyring.Keyring
}

func NewKeyringKeySource(ring keyring.Keyring) *KeyringKeySource {
	return &KeyringKeySource{ring: ring}
}

// OpenDefaultKeyring opens the OS keychain for serviceName. On Linux hosts
// without a desktop session it falls back to an encrypted file store.
func OpenDefaultKeyring(serviceName string) (*KeyringKeySource, error) {
	cfg := keyring.Config{
		ServiceName:              serviceName,
		KeychainTrustApplication: true,
	}
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring %s: %w", serviceName, err)
	}
	return NewKeyringKeySource(ring), nil
}

// Store validates and saves a private key under name
func (k *KeyringKeySource) Store(name string, privateKey string) error {
	if _, err := util.StringToECDSAPrivateKey(privateKey); err != nil {
		return err
	}
	err := k.ring.Set(keyring.Item{
		Key:         name,
		Data:        []byte(privateKey),
		Label:       name,
		Description: "transaction signing key",
	})
	if err != nil {
		return fmt.Errorf("keyring store: %w", err)
	}
	return nil
}

// PrivateKey returns the stored private key. A missing item reports no signer.
func (k *KeyringKeySource) PrivateKey(name string) (string, error) {
	item, err := k.ring.Get(name)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", fmt.Errorf("keyring item %q: %w", name, txerrors.ErrNoSigner)
		}
		return "", fmt.Errorf("keyring retrieve: %w", err)
	}
	return string(item.Data), nil
}

func (k *KeyringKeySource) Remove(name string) error {
	return k.ring.Remove(name)
}
