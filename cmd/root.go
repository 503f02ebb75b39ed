package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/khanhnv2901/seca-scan/internal/checker"
)

const (
	envPrefix      = "SECA"
	configBaseName = ".seca-scan"
)

// app holds the state shared by every command of one invocation.
type app struct {
	cfgFile string
	v       *viper.Viper
	config  *CLIConfig
	logger  *zap.SugaredLogger
	closeFn func()

	// newScanner builds the scanner for scan and serve; tests swap it.
	newScanner func(cfg ScanConfig, opts ...checker.ScannerOption) *checker.Scanner
}

func newApp() *app {
	return &app{
		v:       viper.New(),
		config:  newCLIConfig(),
		logger:  zap.NewNop().Sugar(),
		closeFn: func() {},

		newScanner: defaultScanner,
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "seca-scan",
		Short: "Passive web security posture scanner",
		Long: `seca-scan requests a single URL the way a browser would and reports on
HTTPS, HSTS, CSRF, CORS, form validation, security headers, XSS protection
and the TLS certificate. It never sends attack payloads.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(); err != nil {
				return err
			}
			applyConfigDefaults(a.v, cmd.Flags(), a.config)
			if err := a.config.validate(); err != nil {
				return err
			}
			return a.initLogger(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.closeFn()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/"+configBaseName+".yaml)")
	flags.StringVar(&a.config.Log.Level, "log-level", "", "log level: debug, info, warn, error (default warn, info for serve)")
	flags.StringVar(&a.config.Log.File, "log-file", "", "also write JSON logs to this file, rotated")

	rootCmd.AddCommand(
		newScanCmd(a),
		newServeCmd(a),
		newChecksCmd(),
		newInfoCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// initConfig loads the config file and binds SECA_* environment variables.
func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath("$HOME")
		a.v.SetConfigName(configBaseName)
		a.v.SetConfigType("yaml")
	}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func (a *app) initLogger(cmd *cobra.Command) error {
	defaultLevel := "warn"
	if cmd.Name() == "serve" {
		defaultLevel = "info"
	}
	l, closeFn, err := newLogger(a.config.Log, defaultLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = l.Sugar()
	a.closeFn = closeFn
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debugw("config loaded", "file", used)
	}
	return nil
}

// execute runs the command tree with args and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	return executeApp(newApp(), args, stdout, stderr)
}

func executeApp(a *app, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return ExitOK
	}
	a.closeFn()

	code := exitCodeFor(err)
	fmt.Fprintf(stderr, "%s %v\n", colorForExit(code)("Error:"), err)
	return code
}

func Execute() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
