/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package cli builds the abtool command tree: one spf13/cobra subcommand per
// operation in spec.md §6, wired to the envelope/tarstream/splitter/listing
// core packages. The layer is deliberately thin — it resolves passphrases,
// opens byte streams, and hands option records to the core, then renders
// whatever error comes back in the one-line taxonomy format spec.md §7
// requires.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"github.com/spf13/pflag"
	"github.com/sirupsen/logrus"

	"github.com/nabbar/abtool/envelope"
	"github.com/nabbar/abtool/internal/config"
	"github.com/nabbar/abtool/internal/obslog"
	"github.com/nabbar/abtool/internal/passphrase"
)

// Version is overridden at build time via -ldflags, following the teacher
// packages' own convention of a build-injected string.
var Version = "dev"

type rootFlags struct {
	markdown string
}

// New assembles the complete abtool command tree.
func New() *cobra.Command {
	rf := &rootFlags{}

	root := &cobra.Command{
		Use:           "abtool",
		Short:         "Inspect, convert, and re-encrypt Android Backup (.ab/.adb) archives",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&rf.markdown, "markdown", "", "write command help as Markdown to the given directory and exit")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if rf.markdown == "" {
			return nil
		}
		if err := os.MkdirAll(rf.markdown, 0o755); err != nil {
			return ErrorBadArgs.Error(err)
		}
		if err := doc.GenMarkdownTree(root, rf.markdown); err != nil {
			return ErrorBadArgs.Error(err)
		}
		os.Exit(0)
		return nil
	}

	root.AddCommand(
		newLsCommand(),
		newRewrapCommand(),
		newSplitCommand(),
		newMergeCommand(),
		newUnwrapCommand(),
		newWrapCommand(),
	)

	return root
}

// ioFlags is the set of input-decryption / output-encryption flags common
// to every subcommand that reads an existing envelope (spec.md §6).
type ioFlags struct {
	passphrase       string
	passfile         string
	ignoreChecksum   bool
	outputPassphrase string
	outputPassfile   string
	outputSaltBytes  int
	outputIterations int
}

func addInputPassphraseFlags(fs *pflag.FlagSet, f *ioFlags) {
	fs.StringVarP(&f.passphrase, "passphrase", "p", "", "input archive passphrase")
	fs.StringVar(&f.passfile, "passfile", "", "read input passphrase from this file")
	fs.BoolVar(&f.ignoreChecksum, "ignore-checksum", false, "accept a master-key checksum that matches neither known encoding")
}

func addOutputPassphraseFlags(fs *pflag.FlagSet, f *ioFlags) {
	fs.StringVar(&f.outputPassphrase, "output-passphrase", "", "output archive passphrase")
	fs.StringVar(&f.outputPassfile, "output-passfile", "", "read output passphrase from this file")
	fs.IntVar(&f.outputSaltBytes, "output-salt-bytes", envelope.DefaultSaltBytes, "PBKDF2 salt length for a newly encrypted output")
	fs.IntVar(&f.outputIterations, "output-iterations", envelope.DefaultIterations, "PBKDF2 iteration count for a newly encrypted output")
}

// inputPassphrase resolves the input-side passphrase for archivePath,
// falling back to an interactive prompt when neither a flag, a passfile,
// nor a sibling ".passphrase.txt" file supplied one.
func inputPassphrase(f *ioFlags, archivePath string) (envelope.PassphraseProvider, error) {
	var explicit *string
	if f.passphrase != "" {
		explicit = &f.passphrase
	}
	var file *string
	if f.passfile != "" {
		file = &f.passfile
	}

	p, ok, err := passphrase.Resolve(archivePath, explicit, file)
	if err != nil {
		return nil, ErrorBadArgs.Error(err)
	}
	if ok {
		return envelope.StaticPassphrase(p), nil
	}

	return func() (string, error) {
		return passphrase.Prompt(fmt.Sprintf("passphrase for %s", archivePath))
	}, nil
}

// outputPassphrase mirrors inputPassphrase for the --output-* flags; there
// is no sibling-file convention for an output that does not exist yet, so
// archivePath is only used to label the interactive prompt.
func outputPassphrase(f *ioFlags, archivePath string) (envelope.PassphraseProvider, error) {
	var explicit *string
	if f.outputPassphrase != "" {
		explicit = &f.outputPassphrase
	}
	var file *string
	if f.outputPassfile != "" {
		file = &f.outputPassfile
	}

	p, ok, err := passphrase.Resolve("", explicit, file)
	if err != nil {
		return nil, ErrorBadArgs.Error(err)
	}
	if ok {
		return envelope.StaticPassphrase(p), nil
	}

	return func() (string, error) {
		return passphrase.Prompt(fmt.Sprintf("output passphrase for %s", archivePath))
	}, nil
}

// writeOptions resolves the output salt/iteration knobs through
// internal/config so an ABTOOL_OUTPUT_SALT_BYTES / ABTOOL_OUTPUT_ITERATIONS
// environment variable can override the flag default without the caller
// having passed --output-salt-bytes/--output-iterations explicitly.
func (f *ioFlags) writeOptions(cmd *cobra.Command) envelope.WriteOptions {
	o, err := config.New(cmd.Flags())
	if err != nil {
		return envelope.WriteOptions{SaltBytes: f.outputSaltBytes, Iterations: f.outputIterations}
	}
	return o.WriteOptions()
}

// runLogger builds the *logrus.Entry threaded into the core packages for a
// single invocation, tagged with the operation name. ABTOOL_LOG_LEVEL (read
// directly from the environment, not through internal/config's viper
// instance) controls verbosity; invalid or unset values fall back to
// logrus.InfoLevel.
func runLogger(cmd *cobra.Command, op string) *logrus.Entry {
	lvl, err := logrus.ParseLevel(os.Getenv(config.EnvLogLevel))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	return obslog.New(cmd.ErrOrStderr(), lvl).WithField("operation", op)
}

// contextFor returns a ctx that cancels on SIGINT/SIGTERM, so a long-running
// copy can be interrupted cleanly (spec.md §7's Interrupted kind).
func contextFor(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithCancel(cmd.Context())
}

func exitWith(cmd *cobra.Command, file string, err error) error {
	if err == nil {
		return nil
	}
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), formatError(file, err))
	return err
}

// resolveDefaultOutput applies spec.md §6's default-output-filename rule and
// then enforces RefuseOverwrite before anything is opened.
func resolveDefaultOutput(in, out, suffix string) (string, error) {
	if out == "" {
		out = defaultOutput(in, suffix)
	}
	if err := refuseOverwrite(in, out); err != nil {
		return "", err
	}
	return out, nil
}
