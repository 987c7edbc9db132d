// Package awsboot holds the Lambda cold-start bootstrap: AWS config, the S3
// artifact store and the Gemini API key from SSM Parameter Store.
package awsboot

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/daily-panda/internal/storage"
)

// DefaultAPIKeyParam is the SSM parameter read when SSM_API_KEY_PARAM is unset.
const DefaultAPIKeyParam = "/daily-panda/prod/gemini-api-key"

// ParameterGetter is the subset of the SSM client used here.
type ParameterGetter interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// AWSClients holds the AWS config and the clients built from it.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
	S3     *s3.Client
}

// InitAWS loads the default AWS config and creates the SSM and S3 clients.
func InitAWS(ctx context.Context) (AWSClients, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return AWSClients{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
		S3:     s3.NewFromConfig(cfg),
	}, nil
}

// NewS3Store returns the artifact store for bucket. An empty bucket is an
// error since the Lambda has no local filesystem to fall back to.
func NewS3Store(client storage.S3API, bucket, prefix string) (*storage.S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required (set PANDA_S3_BUCKET)")
	}
	log.Debug().Str("bucket", bucket).Str("prefix", prefix).Msg("S3 artifact store configured")
	return storage.NewS3Store(client, bucket, prefix), nil
}

// APIKeyParam returns the SSM parameter holding the Gemini API key.
func APIKeyParam() string {
	if p := os.Getenv("SSM_API_KEY_PARAM"); p != "" {
		return p
	}
	return DefaultAPIKeyParam
}

// LoadGeminiKey fetches the Gemini API key from SSM into GEMINI_API_KEY
// unless it is already set, so auth.GetAPIKey finds it.
func LoadGeminiKey(ctx context.Context, client ParameterGetter) error {
	if os.Getenv("GEMINI_API_KEY") != "" {
		return nil
	}
	paramName := APIKeyParam()
	start := time.Now()
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to read API key from SSM parameter %s: %w", paramName, err)
	}
	if result.Parameter == nil || aws.ToString(result.Parameter.Value) == "" {
		return fmt.Errorf("SSM parameter %s is empty", paramName)
	}
	if err := os.Setenv("GEMINI_API_KEY", aws.ToString(result.Parameter.Value)); err != nil {
		return fmt.Errorf("failed to export API key: %w", err)
	}
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(start)).Msg("Gemini API key loaded from SSM")
	return nil
}
