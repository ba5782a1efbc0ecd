package cli

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/josephcopenhaver/rfc4648"
	"github.com/josephcopenhaver/rfc4648/internal/config"
	"github.com/josephcopenhaver/rfc4648/internal/server"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func mustBind(v *viper.Viper, key string, f *pflag.Flag) {
	if err := v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}

func (a *app) encodeCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode data",
		Long:  `Encode data from stdin or a file with the configured alphabet.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.stream(cmd, args, out, func(dst io.Writer, src io.Reader, buf []byte) error {
				w := rfc4648.NewWriter(a.alpha, dst)

				if _, err := io.CopyBuffer(w, src, buf); err != nil {
					return oops.Wrapf(err, "encoding %s", a.alpha)
				}

				if err := w.Close(); err != nil {
					return oops.Wrapf(err, "encoding %s", a.alpha)
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "write to this file instead of stdout")

	return cmd
}

func (a *app) decodeCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode data",
		Long: `Decode data from stdin or a file with the configured alphabet.
Whitespace between symbols is ignored and decoding stops after the first
padded group.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.stream(cmd, args, out, func(dst io.Writer, src io.Reader, buf []byte) error {
				r := rfc4648.NewReader(a.alpha, src)

				if _, err := io.CopyBuffer(dst, r, buf); err != nil {
					return oops.Wrapf(err, "decoding %s", a.alpha)
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "write to this file instead of stdout")

	return cmd
}

// stream opens the command's input and output, runs fn over them with a
// buffer of the configured size and closes both.
func (a *app) stream(cmd *cobra.Command, args []string, out string, fn func(io.Writer, io.Reader, []byte) error) (err error) {
	src, err := input(cmd, args)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := output(cmd, out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = oops.Wrapf(cerr, "error closing file %s", out)
		}
	}()

	return fn(writerOnly{dst}, readerOnly{src}, make([]byte, a.cfg.BufferSize))
}

// writerOnly and readerOnly hide ReadFrom and WriteTo so io.CopyBuffer uses
// the configured buffer size.
type writerOnly struct {
	io.Writer
}

type readerOnly struct {
	io.Reader
}

func (a *app) convertCmd() *cobra.Command {
	var from, to, out string

	cmd := &cobra.Command{
		Use:   "convert --to ALPHABET [file]",
		Short: "Re-encode data from one alphabet to another",
		Long: `Decode data from stdin or a file with --from (the configured alphabet
by default) and encode it again with --to.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := a.alpha
			if from != "" {
				var err error
				if src, err = rfc4648.ParseAlphabet(from); err != nil {
					return oops.Wrapf(err, "invalid --from")
				}
			}

			dst, err := rfc4648.ParseAlphabet(to)
			if err != nil {
				return oops.Wrapf(err, "invalid --to")
			}

			in, err := input(cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			data, err := io.ReadAll(in)
			if err != nil {
				return oops.Wrapf(err, "error reading input")
			}

			converted, err := src.Convert(dst, data)
			if err != nil {
				return oops.Wrapf(err, "converting %s to %s", src, dst)
			}

			w, err := output(cmd, out)
			if err != nil {
				return err
			}

			if _, err := w.Write(converted); err != nil {
				w.Close()
				return oops.Wrapf(err, "error writing output")
			}

			if err := w.Close(); err != nil {
				return oops.Wrapf(err, "error closing file %s", out)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "alphabet of the input (defaults to --alphabet)")
	cmd.Flags().StringVar(&to, "to", "", "alphabet of the output")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to this file instead of stdout")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the TCP encode/decode server",
		Long: `Accept TCP connections and stream each one through the encoder or the
decoder, sending the result back. A client ends its input by closing its
write side.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(a.alpha, a.cfg.Server, a.cfg.BufferSize).ListenAndServe(ctx)
		},
	}

	flags := cmd.Flags()
	flags.String("listen", "", "TCP address to listen on")
	flags.String("mode", "", "encode or decode")

	mustBind(a.v, config.KeyServerListen, flags.Lookup("listen"))
	mustBind(a.v, config.KeyServerMode, flags.Lookup("mode"))

	return cmd
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.cfg.YAML()
			if err != nil {
				return err
			}

			if _, err := cmd.OutOrStdout().Write(b); err != nil {
				return oops.Wrapf(err, "error writing output")
			}

			return nil
		},
	}
}
