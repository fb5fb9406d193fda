package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/teamcutter/keeper/internal/cache"
	"github.com/teamcutter/keeper/internal/config"
	"github.com/teamcutter/keeper/internal/dispatcher"
	"github.com/teamcutter/keeper/internal/domain"
	"github.com/teamcutter/keeper/internal/extractor"
	"github.com/teamcutter/keeper/internal/fetcher"
	"github.com/teamcutter/keeper/internal/logging"
	"go.uber.org/zap"
)

type globalFlags struct {
	verbosity string
	quiet     bool
	color     string
	noColor   bool
	dryRun    bool

	cfg *config.Config
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "keeper",
		Short:         "Unpack tar, zip, rar, 7z and gzip archives",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			g.cfg = cfg

			mode := cfg.Color
			if cmd.Flags().Changed("color") {
				mode = g.color
			}
			if g.noColor {
				mode = "off"
			}
			return applyColor(mode)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.verbosity, "verbosity", "", "Log level: "+strings.Join(logging.Levels, "|"))
	flags.BoolVarP(&g.quiet, "quiet", "q", false, "Only print errors and warnings")
	flags.StringVar(&g.color, "color", "auto", "Colour output: auto|on|off")
	flags.BoolVar(&g.noColor, "no-color", false, "Disable colour output")
	flags.BoolVarP(&g.dryRun, "dry-run", "d", false, "Resolve everything but write nothing")

	rootCmd.AddCommand(
		newXtractCmd(g),
		newFormatsCmd(),
		newCacheCmd(g),
		newConfigCmd(g),
		newVersionCmd(),
	)
	return rootCmd
}

func applyColor(mode string) error {
	switch mode {
	case "", "auto":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid colour mode %q (want auto, on or off)", mode)
	}
	return nil
}

// logLevel picks the effective level: --verbosity, then --quiet, then config.
func (g *globalFlags) logLevel() string {
	switch {
	case g.verbosity != "":
		return g.verbosity
	case g.quiet:
		return "error"
	default:
		return g.cfg.LogLevel
	}
}

type app struct {
	cfg        *config.Config
	log        *zap.Logger
	dispatcher *dispatcher.Dispatcher
}

// newApp wires the dispatcher. The download cache is only opened when remote
// archives are involved so local runs never touch it.
func newApp(g *globalFlags, remote bool) (*app, error) {
	log, err := logging.New(g.logLevel())
	if err != nil {
		return nil, err
	}

	cfg := g.cfg
	ex := extractor.New(extractor.Config{
		BufferSize: cfg.BufferSize,
		StagingDir: cfg.StagingDir,
		Logger:     log,
	})

	var (
		f domain.Fetcher
		c domain.Cache
	)
	if remote {
		dc, err := cache.New(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		var opts []fetcher.Option
		if g.quiet {
			opts = append(opts, fetcher.WithoutProgress())
		}
		f = fetcher.New(cfg.CacheDir, cfg.FetchTimeout.Duration, opts...)
		c = dc
	}

	return &app{
		cfg:        cfg,
		log:        log,
		dispatcher: dispatcher.New(ex, f, c, log),
	}, nil
}
