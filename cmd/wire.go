package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	chainsource "github.com/bnema/pdfmcp/internal/adapters/credentials/chain"
	"github.com/bnema/pdfmcp/internal/adapters/pdfapi"
	statusadapter "github.com/bnema/pdfmcp/internal/adapters/render/status"
	"github.com/bnema/pdfmcp/internal/application"
	"github.com/bnema/pdfmcp/internal/config"
	"github.com/bnema/pdfmcp/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// keyAPIKey is read from --api-key or PDFMCP_API_KEY. It never reaches the
// config file or the config dump.
const keyAPIKey = "api_key"

var errMissingAPIKey = errors.New("no API key: pass --api-key, set PDFMCP_API_KEY, or use --api-key-ref")

type rootOptions struct {
	configFile string
	apiKey     string
	apiKeyRef  string
}

// cli carries the state shared by every command. The app is wired on first
// use, once flags are parsed.
type cli struct {
	viper *viper.Viper
	opts  rootOptions
	app   *app
}

type app struct {
	cfg            config.Config
	logger         *slog.Logger
	api            ports.PDFAPI
	tracker        *application.Tracker
	dispatcher     *application.Dispatcher
	credentials    ports.CredentialSource
	statusRenderer func([]statusadapter.Job, statusadapter.RenderOptions) (string, error)
}

func (c *cli) load(cmd *cobra.Command) (*app, error) {
	if c.app != nil {
		return c.app, nil
	}

	if err := c.viper.BindPFlag(keyAPIKey, cmd.Flag("api-key")); err != nil {
		return nil, fmt.Errorf("bind api key flag: %w", err)
	}

	wired, err := wireApp(c.viper, c.opts, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	c.app = wired
	return wired, nil
}

func wireApp(v *viper.Viper, opts rootOptions, logOutput io.Writer) (*app, error) {
	cfg, err := config.Load(v, config.LoadOptions{ConfigFile: opts.configFile})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log, logOutput)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	credentials, err := chainsource.NewPassFirstWithFileFallback(filepath.Join(homeDir, ".config", "pdfmcp", "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire credential chain: %w", err)
	}

	api := pdfapi.Client{
		BaseURL:        cfg.API.BaseURL,
		RequestTimeout: cfg.API.Timeout,
		Logger:         logger,
	}
	tracker := application.NewTracker(api, ports.SystemClock{}, application.Backoff{
		MaxAttempts:  cfg.Poll.MaxAttempts,
		InitialDelay: cfg.Poll.InitialDelay,
		MaxDelay:     cfg.Poll.MaxDelay,
		Factor:       cfg.Poll.Factor,
		Jitter:       cfg.Poll.Jitter,
	}, logger)

	return &app{
		cfg:            cfg,
		logger:         logger,
		api:            api,
		tracker:        tracker,
		dispatcher:     application.NewDispatcher(api, tracker, logger),
		credentials:    credentials,
		statusRenderer: statusadapter.Render,
	}, nil
}

// resolveAPIKey picks the CLI credential: flag or env first, then a named
// credential from the chain.
func (c *cli) resolveAPIKey(ctx context.Context, app *app) (string, error) {
	if key := strings.TrimSpace(c.viper.GetString(keyAPIKey)); key != "" {
		return key, nil
	}

	ref := strings.TrimSpace(c.opts.apiKeyRef)
	if ref == "" {
		return "", errMissingAPIKey
	}

	key, err := app.credentials.Get(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("resolve api key %q: %w", ref, err)
	}
	return key, nil
}
