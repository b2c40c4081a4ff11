package keyGenerator

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/crypto-libs/pkg/ecdsa"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DigestLength is the size of the hashes signers are asked to sign
const DigestLength = 32

type GeneratedECDSAKey struct {
	PublicKey *ecdsa.PublicKey
	Address   string
	KeyId     string
}

func (gek *GeneratedECDSAKey) GetPublicKeyHex() (string, error) {
	if gek.PublicKey == nil {
		return "", fmt.Errorf("public key is nil")
	}
	return hexutil.Encode(gek.PublicKey.Bytes()), nil
}

func (gek *GeneratedECDSAKey) GetAddress() common.Address {
	return common.HexToAddress(gek.Address)
}

type IKeyGenerator interface {
	GenerateECDSAKey(ctx context.Context, keyName string, aliasName string) (*GeneratedECDSAKey, error)
	GetECDSAKeyById(ctx context.Context, keyId string) (*GeneratedECDSAKey, error)

	// SignDigest signs a 32 byte hash and returns a 65 byte [R || S || V]
	// signature with V in {0, 1}, the layout go-ethereum's transaction
	// signers expect.
	SignDigest(ctx context.Context, keyId string, digest []byte) ([]byte, error)
}
