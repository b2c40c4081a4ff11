package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsHelpers "github.com/filswan/swan-tx-runner/internal/aws"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/logger"
)

// Shows which AWS identity the KMS signer will run as
func main() {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	awsCfg, err := awsHelpers.LoadAWSConfig(context.Background(), os.Getenv(config.EnvKMSRegion))
	if err != nil {
		l.Sugar().Fatalw("failed to load AWS config", "error", err)
	}

	identity, err := awsHelpers.GetCallerIdentity(context.Background(), awsCfg)
	if err != nil {
		l.Sugar().Fatalw("failed to get caller identity", "error", err)
	}
	l.Sugar().Infow("AWS caller identity",
		"account", aws.ToString(identity.Account),
		"arn", aws.ToString(identity.Arn),
		"region", awsCfg.Region,
	)
}
