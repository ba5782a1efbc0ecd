package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/josephcopenhaver/rfc4648"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliTC struct {
	when   string
	args   []string
	stdin  string
	expOut string
	expErr error
	// expErrStr is matched as a substring of the returned error
	expErrStr string
}

func run(t *testing.T, args []string, stdin string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	return stdout.String(), err
}

func TestCommands(t *testing.T) {
	t.Parallel()

	tcs := []cliTC{
		{
			when:   "encoding stdin with the default alphabet",
			args:   []string{"encode"},
			stdin:  "foobar",
			expOut: "Zm9vYmFy",
		},
		{
			when:   "encoding stdin with base32",
			args:   []string{"encode", "-a", "base32"},
			stdin:  "foob",
			expOut: "MZXW6YQ=",
		},
		{
			when:   "encoding with url-safe base64",
			args:   []string{"--alphabet", "base64url", "encode", "-"},
			stdin:  "fo?ba?",
			expOut: "Zm8_YmE_",
		},
		{
			when:   "decoding whitespace separated hex",
			args:   []string{"decode", "-a", "hex"},
			stdin:  "\t66 6f\r\n 6f",
			expOut: "foo",
		},
		{
			when:   "decoding stops at padding",
			args:   []string{"decode"},
			stdin:  "Zg==Zm9v",
			expOut: "f",
		},
		{
			when:      "decoding malformed input",
			args:      []string{"decode", "-a", "base32hex"},
			stdin:     "CPNMUOJ1WWWWWWWW",
			expErr:    rfc4648.ErrInvalidSymbol,
			expErrStr: "decoding base32hex",
		},
		{
			when:   "decoding truncated input",
			args:   []string{"decode"},
			stdin:  "Zm9",
			expErr: rfc4648.ErrTruncatedInput,
		},
		{
			when:   "converting base64 to hex",
			args:   []string{"convert", "--from", "base64", "--to", "hex"},
			stdin:  "Zm9v\nYmFy\n",
			expOut: "666F6F626172",
		},
		{
			when:   "converting from the configured alphabet",
			args:   []string{"-a", "base32hex", "convert", "--to", "base32"},
			stdin:  "CPNMUOG=",
			expOut: "MZXW6YQ=",
		},
		{
			when:      "converting without a target",
			args:      []string{"convert"},
			stdin:     "Zm9v",
			expErrStr: `required flag(s) "to" not set`,
		},
		{
			when:   "converting to an unknown alphabet",
			args:   []string{"convert", "--to", "base58"},
			stdin:  "Zm9v",
			expErr: rfc4648.ErrUnknownAlphabet,
		},
		{
			when:   "the alphabet is unknown",
			args:   []string{"encode", "-a", "base85"},
			stdin:  "foo",
			expErr: rfc4648.ErrUnknownAlphabet,
		},
		{
			when:      "the input file does not exist",
			args:      []string{"encode", filepath.Join(os.TempDir(), "rfc4648-absent", "input")},
			expErrStr: "error reading file",
		},
		{
			when:      "too many files are named",
			args:      []string{"encode", "a", "b"},
			expErrStr: "accepts at most 1 arg(s)",
		},
	}

	for i, tc := range tcs {
		t.Run(strconv.Itoa(i)+"/when "+tc.when, func(t *testing.T) {
			t.Parallel()

			is := assert.New(t)

			out, err := run(t, tc.args, tc.stdin)

			if tc.expErr == nil && tc.expErrStr == "" {
				is.NoError(err)
				is.Equal(tc.expOut, out)
				return
			}

			is.Error(err)
			if tc.expErr != nil {
				is.ErrorIs(err, tc.expErr)
			}
			if tc.expErrStr != "" {
				is.ErrorContains(err, tc.expErrStr)
			}
		})
	}
}

func TestEncodeDecodeFiles(t *testing.T) {
	t.Parallel()

	is := assert.New(t)

	dir := t.TempDir()
	raw := filepath.Join(dir, "raw.bin")
	enc := filepath.Join(dir, "raw.b32")
	dec := filepath.Join(dir, "raw.out")

	payload := bytes.Repeat([]byte("\x00\x01binary\xfe\xff"), 1000)
	require.NoError(t, os.WriteFile(raw, payload, 0o600))

	out, err := run(t, []string{"encode", "-a", "base32", "-o", enc, raw}, "")
	is.NoError(err)
	is.Empty(out)

	encoded, err := os.ReadFile(enc)
	is.NoError(err)
	is.Equal(rfc4648.Base32Std.Encode(payload), encoded)

	out, err = run(t, []string{"decode", "-a", "base32", "--output", dec, enc}, "")
	is.NoError(err)
	is.Empty(out)

	decoded, err := os.ReadFile(dec)
	is.NoError(err)
	is.Equal(payload, decoded)
}

func TestConfigCommand(t *testing.T) {
	t.Parallel()

	is := assert.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("alphabet: hex\nbuffer_size: 7\nserver:\n  mode: decode\n"), 0o600))

	out, err := run(t, []string{"--config", path, "config"}, "")
	is.NoError(err)
	is.Contains(out, "alphabet: hex\n")
	is.Contains(out, "buffer_size: 7\n")
	is.Contains(out, "mode: decode\n")

	// flags win over the file
	out, err = run(t, []string{"--config", path, "-a", "base64url", "config"}, "")
	is.NoError(err)
	is.Contains(out, "alphabet: base64url\n")

	// the file's alphabet and tiny buffer still encode correctly
	out, err = run(t, []string{"--config", path, "encode"}, "foo")
	is.NoError(err)
	is.Equal("666F6F", out)
}

func TestServeCommandStops(t *testing.T) {
	t.Parallel()

	is := assert.New(t)

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"serve", "--listen", "127.0.0.1:0", "--mode", "decode"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		is.NoError(err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServeCommandRejectsMode(t *testing.T) {
	t.Parallel()

	_, err := run(t, []string{"serve", "--listen", "127.0.0.1:0", "--mode", "shout"}, "")
	assert.ErrorContains(t, err, `invalid server.mode "shout"`)
}
