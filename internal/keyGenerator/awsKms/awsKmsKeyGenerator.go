package awsKms

import (
	"context"
	cryptoEcdsa "crypto/ecdsa"
	"encoding/asn1"
	"fmt"
	"math/big"
	"strings"

	"github.com/Layr-Labs/crypto-libs/pkg/ecdsa"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/filswan/swan-tx-runner/internal/keyGenerator"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// KMSAPI is the subset of the AWS KMS client used for key management and signing
type KMSAPI interface {
	CreateKey(ctx context.Context, params *kms.CreateKeyInput, optFns ...func(*kms.Options)) (*kms.CreateKeyOutput, error)
	CreateAlias(ctx context.Context, params *kms.CreateAliasInput, optFns ...func(*kms.Options)) (*kms.CreateAliasOutput, error)
	GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
	Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error)
}

type AWSKMSKeyGenerator struct {
	logger    *zap.Logger
	kmsClient KMSAPI
	awsRegion string
	chainName config.ChainName
}

func NewAWSKMSKeyGenerator(awsCfg aws.Config, awsRegion string, chainName config.ChainName, logger *zap.Logger) *AWSKMSKeyGenerator {
	return NewAWSKMSKeyGeneratorWithClient(kms.NewFromConfig(awsCfg), awsRegion, chainName, logger)
}

func NewAWSKMSKeyGeneratorWithClient(client KMSAPI, awsRegion string, chainName config.ChainName, logger *zap.Logger) *AWSKMSKeyGenerator {
	return &AWSKMSKeyGenerator{
		logger:    logger,
		kmsClient: client,
		awsRegion: awsRegion,
		chainName: chainName,
	}
}

func (a *AWSKMSKeyGenerator) SignDigest(ctx context.Context, keyId string, digest []byte) ([]byte, error) {
	sig, err := a.getSignatureFromKms(ctx, keyId, digest)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to sign digest with key %s in region %s", keyId, a.awsRegion)
	}
	return sig, nil
}

// GenerateECDSAKey provisions a new secp256k1 signing key for the runner and
// points aliasName at it. The alias may be given with or without "alias/".
func (a *AWSKMSKeyGenerator) GenerateECDSAKey(ctx context.Context, keyName string, aliasName string) (*keyGenerator.GeneratedECDSAKey, error) {
	if keyName == "" {
		return nil, fmt.Errorf("key name is required")
	}
	created, err := a.kmsClient.CreateKey(ctx, &kms.CreateKeyInput{
		KeyUsage:    types.KeyUsageTypeSignVerify,
		KeySpec:     types.KeySpecEccSecgP256k1,
		Description: aws.String(fmt.Sprintf("swan-tx-runner signer %s on %s", keyName, a.chainName)),
		Tags:        signerKeyTags(keyName, a.chainName),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create signing key %s in region %s", keyName, a.awsRegion)
	}
	if created.KeyMetadata == nil || created.KeyMetadata.KeyId == nil {
		return nil, fmt.Errorf("KMS returned no key id for %s", keyName)
	}
	keyId := *created.KeyMetadata.KeyId

	if aliasName != "" {
		alias := KeyAlias(aliasName)
		if _, err := a.kmsClient.CreateAlias(ctx, &kms.CreateAliasInput{
			AliasName:   aws.String(alias),
			TargetKeyId: aws.String(keyId),
		}); err != nil {
			return nil, errors.Wrapf(err, "failed to alias signing key %s as %s", keyId, alias)
		}
		a.logger.Sugar().Infow("Aliased signing key", "alias", alias, "keyId", keyId)
	}

	return a.GetECDSAKeyById(ctx, keyId)
}

// KeyAlias returns the KMS alias form of name
func KeyAlias(name string) string {
	if strings.HasPrefix(name, "alias/") {
		return name
	}
	return "alias/" + name
}

func signerKeyTags(keyName string, chainName config.ChainName) []types.Tag {
	tag := func(k, v string) types.Tag {
		return types.Tag{TagKey: aws.String(k), TagValue: aws.String(v)}
	}
	return []types.Tag{
		tag("Name", keyName),
		tag("Chain", string(chainName)),
		tag("Application", "swan-tx-runner"),
	}
}

func (a *AWSKMSKeyGenerator) GetECDSAKeyById(ctx context.Context, keyId string) (*keyGenerator.GeneratedECDSAKey, error) {
	kmsPubKey, err := a.getPublicKey(ctx, keyId)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get public key for key %s in region %s", keyId, a.awsRegion)
	}

	ecdsaPubKey, err := parseECDSAPublicKey(kmsPubKey.PublicKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse public key for key %s in region %s", keyId, a.awsRegion)
	}

	pk := &ecdsa.PublicKey{
		X: ecdsaPubKey.X,
		Y: ecdsaPubKey.Y,
	}

	addr, err := pk.DeriveAddress()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to derive Ethereum address from public key for key %s in region %s", keyId, a.awsRegion)
	}

	return &keyGenerator.GeneratedECDSAKey{
		PublicKey: pk,
		Address:   addr.String(),
		KeyId:     keyId,
	}, nil
}

// getPublicKey retrieves the public key for verification
func (k *AWSKMSKeyGenerator) getPublicKey(ctx context.Context, keyId string) (*kms.GetPublicKeyOutput, error) {
	input := &kms.GetPublicKeyInput{
		KeyId: aws.String(keyId),
	}

	result, err := k.kmsClient.GetPublicKey(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}

	return result, nil
}

// parseECDSAPublicKey parses the DER-encoded public key from KMS
func parseECDSAPublicKey(derBytes []byte) (*cryptoEcdsa.PublicKey, error) {
	var asn1pubk asn1EcPublicKey
	_, err := asn1.Unmarshal(derBytes, &asn1pubk)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ASN.1 public key: %w", err)
	}

	return crypto.UnmarshalPubkey(asn1pubk.PublicKey.Bytes)
}

// ASN.1 structures matching the reference implementation
type asn1EcSig struct {
	R asn1.RawValue
	S asn1.RawValue
}

type asn1EcPublicKey struct {
	EcPublicKeyInfo asn1EcPublicKeyInfo
	PublicKey       asn1.BitString
}

type asn1EcPublicKeyInfo struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.ObjectIdentifier
}

func (k *AWSKMSKeyGenerator) getSignatureFromKms(ctx context.Context, keyId string, txHashBytes []byte) ([]byte, error) {
	if len(txHashBytes) != keyGenerator.DigestLength {
		return nil, fmt.Errorf("hash must be exactly 32 bytes, got %d", len(txHashBytes))
	}

	// Get the expected public key from KMS first
	kmsPubKey, err := k.getPublicKey(ctx, keyId)
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}

	expectedPubKey, err := parseECDSAPublicKey(kmsPubKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	signInput := &kms.SignInput{
		KeyId:            aws.String(keyId),
		Message:          txHashBytes,
		SigningAlgorithm: types.SigningAlgorithmSpecEcdsaSha256,
		MessageType:      types.MessageTypeDigest,
	}

	signOutput, err := k.kmsClient.Sign(ctx, signInput)
	if err != nil {
		return nil, err
	}

	var sigAsn1 asn1EcSig
	_, err = asn1.Unmarshal(signOutput.Signature, &sigAsn1)
	if err != nil {
		return nil, err
	}

	// Convert raw bytes to big.Int
	r := new(big.Int).SetBytes(sigAsn1.R.Bytes)
	s := new(big.Int).SetBytes(sigAsn1.S.Bytes)

	// secp256k1 curve order for malleability protection
	curveOrder, _ := new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
	halfOrder := new(big.Int).Rsh(curveOrder, 1)

	// Apply malleability protection (low-S canonicalization)
	if s.Cmp(halfOrder) > 0 {
		s = new(big.Int).Sub(curveOrder, s)
	}

	// Convert to 32-byte arrays
	rBytes := r.FillBytes(make([]byte, 32))
	sBytes := s.FillBytes(make([]byte, 32))

	// only 0 and 1 are valid for secp256k1 in practice; 2 and 3 need r >= n
	for recoveryId := 0; recoveryId < 2; recoveryId++ {
		// Create signature with recovery ID for crypto.Ecrecover (0-3 range)
		signature := make([]byte, 65)
		copy(signature[0:32], rBytes)
		copy(signature[32:64], sBytes)
		signature[64] = byte(recoveryId) // Use 0-3 for crypto.Ecrecover

		// Test recovery with crypto.Ecrecover
		recoveredPubKeyBytes, err := crypto.Ecrecover(txHashBytes, signature)
		if err != nil {
			k.logger.Debug("Ecrecover failed",
				zap.Int("recoveryId", recoveryId),
				zap.Error(err))
			continue
		}

		// Convert recovered public key bytes to *ecdsa.PublicKey
		recoveredPubKey, err := crypto.UnmarshalPubkey(recoveredPubKeyBytes)
		if err != nil {
			k.logger.Warn("Failed to unmarshal recovered public key",
				zap.Int("recoveryId", recoveryId),
				zap.Error(err))
			continue
		}

		// Compare with expected public key
		if recoveredPubKey.X.Cmp(expectedPubKey.X) == 0 && recoveredPubKey.Y.Cmp(expectedPubKey.Y) == 0 {
			// transaction signers want the raw 0/1 recovery id, not 27/28
			return signature, nil
		}
	}

	return nil, fmt.Errorf("could not determine valid recovery ID - signature recovery failed")
}
