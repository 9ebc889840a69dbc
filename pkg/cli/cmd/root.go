package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/telekom/doc-reminder/pkg/config"
	"github.com/telekom/doc-reminder/pkg/mail"
	"github.com/telekom/doc-reminder/pkg/output"
	"github.com/telekom/doc-reminder/pkg/system"
)

type SenderFactory func(cfg config.Mail, log *zap.SugaredLogger) mail.Sender

type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
	Context      context.Context
	// Logger replaces the logger built from --debug.
	Logger *zap.SugaredLogger
	// Now replaces the wall clock used by check and list.
	Now func() time.Time
	// NewSender replaces the SMTP sender used by check.
	NewSender SenderFactory
}

type runtimeState struct {
	configPath   string
	storePath    string
	outputFormat string
	debug        bool
	cfg          *config.Config
	log          *zap.SugaredLogger
	now          func() time.Time
	newSender    SenderFactory
	writer       io.Writer
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		OutputWriter: os.Stdout,
		Context:      context.Background(),
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{
		configPath: cfg.ConfigPath,
		writer:     cfg.OutputWriter,
		log:        cfg.Logger,
		now:        cfg.Now,
		newSender:  cfg.NewSender,
	}
	if rt.now == nil {
		rt.now = time.Now
	}
	if rt.newSender == nil {
		rt.newSender = mail.NewSender
	}

	root := &cobra.Command{
		Use:          "docreminder",
		Short:        "Track document expiry dates and email renewal reminders",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if _, err := output.ParseFormat(rt.outputFormat); err != nil {
				return err
			}
			if cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}

			cfg, err := config.Load(rt.configPath)
			if err != nil {
				return err
			}
			if rt.storePath != "" {
				cfg.Store.Path = rt.storePath
			}
			if rt.debug {
				cfg.Debug = true
			}
			rt.cfg = &cfg

			if rt.log == nil {
				logger, err := system.NewLogger(cfg.Debug)
				if err != nil {
					return err
				}
				rt.log = logger.Sugar()
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if rt.log != nil {
				_ = rt.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file (default "+config.DefaultConfigPath+")")
	root.PersistentFlags().StringVar(&rt.storePath, "store", "", "Path to the documents CSV file")
	root.PersistentFlags().StringVarP(&rt.outputFormat, "output", "o", "", "Output format: table, wide, json, yaml")
	root.PersistentFlags().BoolVar(&rt.debug, "debug", false, "Enable debug logging")

	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	root.SetContext(context.WithValue(ctx, runtimeKey{}, rt))

	root.AddCommand(
		NewAddCommand(),
		NewCheckCommand(),
		NewListCommand(),
		NewCredentialCommand(),
		NewCompletionCommand(),
		NewVersionCommand(),
	)

	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) OutputFormat() output.Format {
	f, err := output.ParseFormat(rt.outputFormat)
	if err != nil {
		return output.FormatTable
	}
	return f
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

// Config returns the loaded configuration.
func (rt *runtimeState) Config() (*config.Config, error) {
	if rt.cfg == nil {
		return nil, errors.New("config not loaded")
	}
	return rt.cfg, nil
}
