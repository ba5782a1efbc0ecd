package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/josephcopenhaver/rfc4648"
	"github.com/josephcopenhaver/rfc4648/internal/config"
	"github.com/josephcopenhaver/rfc4648/internal/logger"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logger.Get()

// app carries the state shared by every command of one invocation.
type app struct {
	v          *viper.Viper
	configFile string

	cfg   *config.Config
	alpha rfc4648.Alphabet
}

// NewRootCmd builds the rfc4648 command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "rfc4648",
		Short: "Base16, Base32 and Base64 encoding and decoding utility",
		Long: `A command-line utility for the RFC 4648 encodings: hex, base32,
base32hex, base64 and base64url. Input is read from a file or stdin and the
result is written to stdout unless --output is given.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "path to a YAML config file")
	flags.StringP("alphabet", "a", "", "alphabet: hex, base32, base32hex, base64 or base64url")
	flags.String("log-level", "", "log to stderr at this level (debug, info, warn, error)")

	mustBind(a.v, config.KeyAlphabet, flags.Lookup("alphabet"))
	mustBind(a.v, config.KeyLogLevel, flags.Lookup("log-level"))

	root.AddCommand(
		a.encodeCmd(),
		a.decodeCmd(),
		a.convertCmd(),
		a.serveCmd(),
		a.configCmd(),
	)

	return root
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}

	if err := log.Configure(cfg.Log.Level); err != nil {
		log.WithError(err).Warn("Unknown log level, using debug.")
	}

	alpha, err := cfg.Codec()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.alpha = alpha

	log.WithField("command", cmd.Name()).WithField("alphabet", alpha.String()).Debug("Configuration loaded.")

	return nil
}

// input opens the named file, or returns stdin when no file is named.
func input(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, oops.Wrapf(err, "error reading file %s", args[0])
	}

	return f, nil
}

// output creates the named file, or returns stdout when no file is named.
func output(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, oops.Wrapf(err, "error creating file %s", path)
	}

	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

// Execute runs the command tree against the process arguments and returns
// the exit code.
func Execute() int {
	cmd := NewRootCmd()

	if err := cmd.Execute(); err != nil {
		log.WithError(err).Error("Command failed.")
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}

	return 0
}
