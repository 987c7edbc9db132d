// Package main is the Lambda entry point for the daily panda run. An
// EventBridge schedule invokes it once a day; the event's scheduled time
// decides the generation date and all artifacts live in S3.
//
// Environment:
//
//	PANDA_S3_BUCKET     artifact bucket (required)
//	PANDA_S3_PREFIX     object key prefix (optional)
//	PANDA_CONFIG        YAML config file bundled with the function (optional)
//	SSM_API_KEY_PARAM   SSM parameter holding the Gemini API key
package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fpang/daily-panda/internal/auth"
	"github.com/fpang/daily-panda/internal/awsboot"
	"github.com/fpang/daily-panda/internal/chat"
	"github.com/fpang/daily-panda/internal/config"
	"github.com/fpang/daily-panda/internal/logging"
	"github.com/fpang/daily-panda/internal/params"
	"github.com/fpang/daily-panda/internal/pipeline"
	"github.com/fpang/daily-panda/internal/storage"
)

// Set via -ldflags at build time.
var (
	commitHash = ""
	buildTime  = ""
)

var coldStart = true

// Collaborators built at cold start.
var (
	runDeps dependencies
	timeout time.Duration
)

type dependencies struct {
	text    pipeline.TextGenerator
	image   pipeline.ImageGenerator
	store   storage.Store
	metrics io.Writer
}

// Response is returned to the invoker and shows up in the Lambda console.
type Response struct {
	RunID  string   `json:"runId"`
	Date   string   `json:"date"`
	Prompt string   `json:"prompt"`
	Entry  string   `json:"entry"`
	Keys   []string `json:"keys"`
}

// setup builds the collaborators once per container.
func setup() {
	initStart := time.Now()
	logging.InitJSON()
	ctx := context.Background()

	cfg, err := config.Load(logging.EnvOrDefault("PANDA_CONFIG", config.DefaultPath))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	timeout = cfg.Timeout

	clients, err := awsboot.InitAWS(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("AWS init failed")
	}
	s3Store, err := awsboot.NewS3Store(clients.S3, cfg.S3.Bucket, cfg.S3.Prefix)
	if err != nil {
		log.Fatal().Err(err).Msg("S3 store init failed")
	}
	if err := awsboot.LoadGeminiKey(ctx, clients.SSM); err != nil {
		log.Fatal().Err(err).Msg("Gemini API key init failed")
	}
	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Fatal().Err(err).Msg("Gemini API key unavailable")
	}

	genaiClient, err := chat.NewGeminiClient(ctx, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	image, err := chat.NewImageClient(cfg.Image.Backend, apiKey, cfg.ImageModel())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create image client")
	}

	runDeps = dependencies{
		text:    chat.NewTextClient(genaiClient, cfg.Text.Model),
		image:   image,
		store:   s3Store,
		metrics: os.Stdout,
	}

	logging.NewStartupLogger("panda-lambda").
		CommitHash(commitHash).
		BuildTime(buildTime).
		Storage("s3Bucket", cfg.S3.Bucket).
		Storage("s3Prefix", cfg.S3.Prefix).
		SSMParam("geminiApiKey", awsboot.APIKeyParam()).
		Model("text", cfg.Text.Model).
		Model("image", cfg.ImageModel()).
		Config("imageBackend", cfg.Image.Backend).
		Config("timeout", cfg.Timeout.String()).
		InitDuration(time.Since(initStart)).
		Log()
}

func main() {
	setup()
	lambda.Start(handler)
}

func handler(ctx context.Context, event events.CloudWatchEvent) (Response, error) {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "panda-lambda").Msg("Cold start, first invocation")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return run(ctx, runDeps, event)
}

// run generates the panda for the event's scheduled day.
func run(ctx context.Context, d dependencies, event events.CloudWatchEvent) (Response, error) {
	log.Info().
		Str("eventId", event.ID).
		Str("detailType", event.DetailType).
		Time("scheduledTime", event.Time).
		Msg("Panda Lambda invoked")

	runner := pipeline.NewRunner(d.text, d.image, d.store)
	runner.Metrics = d.metrics
	if !event.Time.IsZero() {
		scheduled := event.Time
		runner.Clock = func() time.Time { return scheduled }
	}

	result, err := runner.Run(ctx)
	if err != nil {
		return Response{RunID: result.RunID}, err
	}
	return Response{
		RunID:  result.RunID,
		Date:   result.Artifact.Date.Format(params.ISODate),
		Prompt: result.Artifact.Prompt,
		Entry:  result.Entry,
		Keys:   result.Keys,
	}, nil
}
