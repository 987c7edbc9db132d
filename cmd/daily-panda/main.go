package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/daily-panda/internal/auth"
	"github.com/fpang/daily-panda/internal/awsboot"
	"github.com/fpang/daily-panda/internal/chat"
	"github.com/fpang/daily-panda/internal/config"
	"github.com/fpang/daily-panda/internal/logging"
	"github.com/fpang/daily-panda/internal/pipeline"
	"github.com/fpang/daily-panda/internal/storage"
)

// Set via -ldflags at build time.
var (
	commitHash = ""
	buildTime  = ""
)

// CLI flags
var (
	configFlag       string
	rootFlag         string
	dryRunFlag       bool
	imageBackendFlag string
	metricsFlag      bool
)

var rootCmd = &cobra.Command{
	Use:   "daily-panda",
	Short: "Generate today's panda image",
	Long: `daily-panda asks Gemini for an image prompt featuring a panda taking part in
a historical or cultural event from today's date, renders it as an image, and
stores the image, the prompt, the event ledger and the README annotation.

Events already in events/past_events.txt are never reused.

Examples:
  daily-panda
  daily-panda --root ~/src/daily-panda
  daily-panda --dry-run
  daily-panda --image-backend imagen
  daily-panda check-key`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

var checkKeyCmd = &cobra.Command{
	Use:   "check-key",
	Short: "Verify the Gemini API key with a minimal request",
	RunE:  runCheckKey,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", config.DefaultPath, "Path to YAML config file (optional)")
	rootCmd.Flags().StringVarP(&rootFlag, "root", "r", "", "Project directory holding images/, prompts/, events/ and README.md")
	rootCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Generate and print the prompt without rendering or writing anything")
	rootCmd.Flags().StringVar(&imageBackendFlag, "image-backend", "", "Image backend: gemini or imagen")
	rootCmd.Flags().BoolVar(&metricsFlag, "metrics", false, "Print a CloudWatch EMF metrics line to stdout after the run (ignored with --dry-run)")
	rootCmd.AddCommand(checkKeyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("root") {
		cfg.Root = rootFlag
	}
	if cmd.Flags().Changed("image-backend") {
		cfg.Image.Backend = imageBackendFlag
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logging.Init()
	initStart := time.Now()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	apiKey, err := auth.GetAPIKey()
	if err != nil {
		return err
	}

	genaiClient, err := chat.NewGeminiClient(ctx, apiKey)
	if err != nil {
		return err
	}
	image, err := chat.NewImageClient(cfg.Image.Backend, apiKey, cfg.ImageModel())
	if err != nil {
		return err
	}
	store, location, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	startup := logging.NewStartupLogger("daily-panda").
		CommitHash(commitHash).
		BuildTime(buildTime).
		Model("text", cfg.Text.Model).
		Model("image", cfg.ImageModel()).
		Feature("dryRun", dryRunFlag).
		Config("imageBackend", cfg.Image.Backend).
		Config("timeout", cfg.Timeout.String())
	for label, value := range location {
		startup.Storage(label, value)
	}
	startup.InitDuration(time.Since(initStart)).Log()

	runner := pipeline.NewRunner(chat.NewTextClient(genaiClient, cfg.Text.Model), image, store)
	runner.DryRun = dryRunFlag
	runner.Metrics = metricsOutput(metricsFlag, dryRunFlag, os.Stdout)

	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if result.DryRun {
		fmt.Println(result.Artifact.Prompt)
		return nil
	}
	log.Info().
		Str("run_id", result.RunID).
		Strs("keys", result.Keys).
		Str("entry", result.Entry).
		Msg("Daily panda ready")
	return nil
}

// metricsOutput returns where EMF lines go. Dry runs print the bare prompt on
// stdout, so they never emit metrics.
func metricsOutput(enabled, dryRun bool, stdout io.Writer) io.Writer {
	if !enabled || dryRun {
		return nil
	}
	return stdout
}

// openStore picks S3 when a bucket is configured and the project directory
// otherwise. The returned map describes the location for the startup log.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, map[string]string, error) {
	if cfg.S3.Bucket == "" {
		return storage.NewLocalStore(cfg.Root), map[string]string{"root": cfg.Root}, nil
	}
	clients, err := awsboot.InitAWS(ctx)
	if err != nil {
		return nil, nil, err
	}
	s3Store, err := awsboot.NewS3Store(clients.S3, cfg.S3.Bucket, cfg.S3.Prefix)
	if err != nil {
		return nil, nil, err
	}
	return s3Store, map[string]string{"s3Bucket": cfg.S3.Bucket, "s3Prefix": cfg.S3.Prefix}, nil
}

func runCheckKey(cmd *cobra.Command, args []string) error {
	logging.Init()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	apiKey, err := auth.GetAPIKey()
	if err != nil {
		return err
	}
	client, err := chat.NewGeminiClient(ctx, apiKey)
	if err != nil {
		return err
	}

	if err := auth.ValidateAPIKey(ctx, client, cfg.Text.Model); err != nil {
		var vErr *auth.ValidationError
		if errors.As(err, &vErr) {
			switch vErr.Type {
			case auth.ErrTypeInvalidKey:
				return fmt.Errorf("invalid API key, check GEMINI_API_KEY or ~/.daily-panda/credentials.gpg: %w", err)
			case auth.ErrTypeNetworkError:
				return fmt.Errorf("network error, check your internet connection: %w", err)
			case auth.ErrTypeQuotaExceeded:
				return fmt.Errorf("API quota exceeded, try again later: %w", err)
			}
		}
		return err
	}
	fmt.Println("API key OK")
	return nil
}
