// Package cli wires the cobra command tree: the root command launches the interactive
// shell, the subcommands run the same vault flows headlessly.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dpshade/prompt-vault/internal/clipboard"
	"github.com/dpshade/prompt-vault/internal/config"
	"github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/logger"
	"github.com/dpshade/prompt-vault/internal/service"
	"github.com/dpshade/prompt-vault/internal/ui"
)

// DefaultVersion is reported when the binary is built without a version stamp.
const DefaultVersion = "1.0.0"

// TUIFunc runs the interactive shell.
type TUIFunc func(svc *service.Service, log *zap.SugaredLogger) error

// Options customizes the command tree, mostly for tests.
type Options struct {
	Version   string
	Clipboard clipboard.Clipboard
	RunTUI    TUIFunc
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
}

// app carries state from the persistent pre-run to the command bodies
type app struct {
	opts Options
	cfg  *config.Config
	svc  *service.Service
	log  *zap.SugaredLogger
}

// NewRootCommand builds the prompts command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.RunTUI == nil {
		opts.RunTUI = ui.Run
	}
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:   "prompts",
		Short: "Manage versioned prompt templates and their outputs",
		Long: `prompts - versioned prompt templates and the output files made from them.

Run without a command to browse the vault interactively. Each template is a
directory holding prompt.toml; outputs live in <template>/outputs.

Examples:
  prompts                          # Browse the default vault
  prompts -m opus4                 # Capture outputs tagged with claude-opus-4
  prompts --vault ./my-vault       # Use a custom vault directory
  prompts create blog "Go generics" # Start a topic file without the TUI`,
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a.log.Infow("starting interactive shell", "vault", a.cfg.Vault, "model", a.svc.Model())
			return a.opts.RunTUI(a.svc, a.log)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringP("model", "m", "", "Model recorded on captured outputs (sonnet4, opus4) [default: claude-sonnet-4]")
	flags.String("vault", "", "Vault directory path [default: vault]")
	flags.String("config", "", "Config file [default: ~/.prompts/config.toml]")
	flags.Count("verbose", "Increase log verbosity (repeat for more detail)")

	root.AddCommand(
		a.listCmd(),
		a.filesCmd(),
		a.createCmd(),
		a.fillCmd(),
		a.selectCmd(),
		a.resetCmd(),
		a.deleteCmd(),
		a.captureCmd(),
		a.versionsCmd(),
		a.newCmd(),
		a.bumpCmd(),
	)
	tolerateUnknownFlags(root)

	if opts.Stdin != nil {
		root.SetIn(opts.Stdin)
	}
	if opts.Stdout != nil {
		root.SetOut(opts.Stdout)
	}
	if opts.Stderr != nil {
		root.SetErr(opts.Stderr)
	}
	return root
}

// tolerateUnknownFlags makes every command ignore flags it does not define.
func tolerateUnknownFlags(cmd *cobra.Command) {
	cmd.FParseErrWhitelist.UnknownFlags = true
	for _, sub := range cmd.Commands() {
		tolerateUnknownFlags(sub)
	}
}

// setup loads configuration, initializes logging and builds the service.
func (a *app) setup(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	v, err := config.New(configPath)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	verbose, _ := cmd.Flags().GetCount("verbose")
	opts := logger.Options{File: cfg.Log.File, Verbosity: cfg.Log.Verbosity + verbose, JSON: cfg.Log.JSON}
	if cmd == cmd.Root() && opts.File == "" {
		// the interactive shell owns the terminal
		opts.File = config.DefaultLogPath()
	}
	if err := logger.Initialize(opts); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	a.log = logger.Logger

	svc, err := service.NewService(service.Options{
		VaultPath: cfg.Vault,
		Model:     cfg.Model,
		Clipboard: a.opts.Clipboard,
		Logger:    a.log,
	})
	if err != nil {
		return err
	}
	a.svc = svc
	return nil
}

// bindFlags lets flags given on the command line override config and environment.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, name := range map[string]string{config.KeyModel: "model", config.KeyVault: "vault"} {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Wrapf(err, "bind --%s", name)
		}
	}
	return nil
}

// Execute runs the command tree and returns the process exit code. Errors are formatted
// for the terminal on stderr.
func Execute(args []string, opts Options) int {
	root := NewRootCommand(opts)
	root.SetArgs(NormalizeArgs(args))

	err := root.Execute()
	defer logger.Sync()
	if err == nil {
		return 0
	}

	verbose, _ := root.PersistentFlags().GetCount("verbose")
	handler := errors.NewCLIErrorHandler(verbose > 0, logger.Logger)
	fmt.Fprintln(root.ErrOrStderr(), handler.HandleError(err).Error())
	return 1
}

// Main is the entry point used by main.go.
func Main(version string) {
	os.Exit(Execute(os.Args[1:], Options{Version: version}))
}
