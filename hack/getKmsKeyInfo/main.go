package main

import (
	"context"
	"os"

	"github.com/filswan/swan-tx-runner/internal/aws"
	"github.com/filswan/swan-tx-runner/internal/keyGenerator"
	"github.com/filswan/swan-tx-runner/internal/keyGenerator/awsKms"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/logger"
)

// Prints the Ethereum address behind a KMS signing key so it can be funded
// before it is used as SWAN_KMS_KEY_ID.
//
//	getKmsKeyInfo                  reads the key named by SWAN_KMS_KEY_ID
//	getKmsKeyInfo create <name>    provisions a new signing key aliased swan-tx-runner-<name>
func main() {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	ctx := context.Background()
	region := os.Getenv(config.EnvKMSRegion)

	awsCfg, err := aws.LoadAWSConfig(ctx, region)
	if err != nil {
		l.Sugar().Fatalw("failed to load AWS config", "error", err)
	}
	keyGen := awsKms.NewAWSKMSKeyGenerator(awsCfg, region, config.ChainName_PolygonMumbai, l)

	var key *keyGenerator.GeneratedECDSAKey
	if len(os.Args) > 1 && os.Args[1] == "create" {
		if len(os.Args) < 3 {
			l.Sugar().Fatal("usage: getKmsKeyInfo create <name>")
		}
		name := os.Args[2]
		key, err = keyGen.GenerateECDSAKey(ctx, name, "swan-tx-runner-"+name)
		if err != nil {
			l.Sugar().Fatalw("failed to create signing key", "error", err)
		}
	} else {
		keyId := os.Getenv(config.EnvKMSKeyID)
		if keyId == "" {
			l.Sugar().Fatalf("%s environment variable is not set", config.EnvKMSKeyID)
		}
		key, err = keyGen.GetECDSAKeyById(ctx, keyId)
		if err != nil {
			l.Sugar().Fatalw("failed to get ECDSA key", "error", err)
		}
	}

	pubKeyHex, err := key.GetPublicKeyHex()
	if err != nil {
		l.Sugar().Fatalw("failed to get public key hex", "error", err)
	}

	l.Sugar().Infow("KMS signing key",
		"keyId", key.KeyId,
		"publicKeyHex", pubKeyHex,
		"address", key.GetAddress().Hex(),
	)
}
