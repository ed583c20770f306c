package notifiers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// loadAWSConfig resolves region and credentials for the AWS sinks.
func loadAWSConfig(ctx context.Context, opts AWSOptions) (aws.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	loadOpts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// endpointOverride returns the custom endpoint (LocalStack, VPC endpoint) or nil.
func endpointOverride(opts AWSOptions) *string {
	if opts.Endpoint == "" {
		return nil
	}
	return aws.String(opts.Endpoint)
}
