// generate.go implements the root command: collect the phrases, render the
// card, compile it and publish the PDF.
//
// Orchestration steps:
//  1. Load the config file and apply flag overrides
//  2. Collect the inputs from flags or interactive prompts
//  3. Format and render the card document
//  4. Resolve the output target (disk or stream)
//  5. Write the .tex source and run the compiler
//  6. Publish the PDF and clean up
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/recovery-card/internal/card"
	"github.com/shinji-kodama/recovery-card/internal/config"
	"github.com/shinji-kodama/recovery-card/internal/docker"
	"github.com/shinji-kodama/recovery-card/internal/model"
	"github.com/shinji-kodama/recovery-card/internal/output"
	"github.com/shinji-kodama/recovery-card/internal/phrase"
	"github.com/shinji-kodama/recovery-card/internal/tex"
)

// generateFlags holds the flag values of the root command.
type generateFlags struct {
	proton          string // --proton: Proton recovery phrase
	bitwarden       string // --bitwarden: Bitwarden recovery code
	metamaskPhrase  string // --metamask-phrase: MetaMask seed phrase
	metamaskAccount string // --metamask-account: account label on the card
	output          string // --output: job name, path, or "-" for stdout

	engine    string // --engine: local or docker
	compiler  string // --compiler: pdflatex binary for the local engine
	image     string // --image: TeX Live image for the docker engine
	assetsDir string // --assets-dir: directory holding the logo images

	configPath string // --config: explicit config file
}

// generateResult is the --json summary of a successful run.
type generateResult struct {
	Source   string           `json:"source,omitempty"`
	PDF      *output.Artifact `json:"pdf"`
	Mode     string           `json:"mode"`
	Engine   string           `json:"engine"`
	Warnings []string         `json:"warnings,omitempty"`
}

// registerGenerateFlags binds the generate flags to cmd.
func registerGenerateFlags(cmd *cobra.Command, flags *generateFlags) {
	cmd.Flags().StringVar(&flags.proton, "proton", "", "Proton recovery phrase")
	cmd.Flags().StringVar(&flags.bitwarden, "bitwarden", "", "Bitwarden recovery code")
	cmd.Flags().StringVar(&flags.metamaskPhrase, "metamask-phrase", "", "MetaMask 12-word seed phrase")
	cmd.Flags().StringVar(&flags.metamaskAccount, "metamask-account", model.DefaultMetaMaskAccount, "MetaMask account name")
	cmd.Flags().StringVarP(&flags.output, "output", "o", output.DefaultName, `Output file name, absolute path, or "-" for stdout`)

	cmd.Flags().StringVar(&flags.engine, "engine", "", "Compile engine: local or docker (default: local)")
	cmd.Flags().StringVar(&flags.compiler, "compiler", "", "pdflatex executable for the local engine (default: pdflatex)")
	cmd.Flags().StringVar(&flags.image, "image", "", "TeX Live image for the docker engine (default: "+docker.DefaultImage+")")
	cmd.Flags().StringVar(&flags.assetsDir, "assets-dir", "", "Directory containing the logo images (default: executable directory)")
}

// runGenerate is the main orchestration function of the root command.
func runGenerate(cmd *cobra.Command, flags *generateFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	// Step 1: Load the config file; flags that were set explicitly win.
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to load configuration", err)
	}
	applyFlagOverrides(cmd, cfg, flags)

	engine, err := model.ParseEngine(cfg.Engine)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid --engine", err)
	}
	VerboseLog("Engine: %s", engine)

	// Step 2: Collect the inputs. Any credential flag switches to
	// non-interactive mode, which needs all three.
	interactive := flags.proton == "" && flags.bitwarden == "" && flags.metamaskPhrase == ""
	var inputs *model.RecoveryInputs
	if interactive {
		inputs, err = promptInputs(newPrompter(cmd.InOrStdin(), stderr), cfg.MetaMaskAccount)
		if err != nil {
			return err
		}
	} else {
		if flags.proton == "" || flags.bitwarden == "" || flags.metamaskPhrase == "" {
			return model.NewCLIError(model.ExitGeneralError,
				"when using command-line arguments, all of --proton, --bitwarden, and --metamask-phrase are required")
		}
		inputs = &model.RecoveryInputs{
			ProtonPhrase:    flags.proton,
			BitwardenCode:   flags.bitwarden,
			MetaMaskPhrase:  flags.metamaskPhrase,
			MetaMaskAccount: cfg.MetaMaskAccount,
		}
	}
	if err := inputs.Validate(); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid input", err)
	}

	// Step 3: Render. A wrong seed word count is only a warning.
	doc, warning := card.Render(inputs)
	var warnings []string
	if warning != nil {
		fmt.Fprintf(stderr, "⚠ Warning: %s\n", warning.Error())
		warnings = append(warnings, warning.Error())
	}
	if verbose {
		formatted, _ := card.Format(inputs)
		VerboseLog("Proton phrase: %d line(s)", len(phrase.SplitLines(formatted.Proton)))
		VerboseLog("MetaMask phrase: %d word(s)", len(strings.Fields(inputs.MetaMaskPhrase)))
	}
	if left := card.Leftover(doc); len(left) > 0 {
		VerboseLog("Unreplaced placeholders: %s", strings.Join(left, ", "))
	}

	resourceDir, err := cfg.ResourceDir()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to locate resource directory", err)
	}
	VerboseLog("Resource directory: %s", resourceDir)
	if missing := tex.MissingAssets(resourceDir); len(missing) > 0 {
		msg := fmt.Sprintf("missing images in %s: %s", resourceDir, strings.Join(missing, ", "))
		fmt.Fprintf(stderr, "⚠ Warning: %s\n", msg)
		warnings = append(warnings, msg)
	}

	// Step 4: Resolve where the files go.
	target, err := output.Resolve(cfg.Output, resourceDir)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to prepare output directory", err)
	}
	VerboseLog("Output: mode=%s dir=%s job=%s", target.Mode, target.WorkDir, target.JobName)

	// Step 5: Write the source and compile it.
	sourcePath, err := tex.WriteSource(target, doc)
	if err != nil {
		output.Discard(target)
		return model.WrapCLIError(model.ExitGeneralError, "failed to write LaTeX source", err)
	}
	if !target.IsStream() {
		fmt.Fprintf(stderr, "✓ Generated %s\n", sourcePath)
		fmt.Fprintln(stderr, "⏳ Compiling PDF...")
	}

	compiler := newCompiler(engine, cfg, stderr)
	result, err := compiler.Compile(ctx, tex.NewJob(target, resourceDir))
	if err != nil {
		return handleCompileError(stderr, target, sourcePath, engine, cfg, err)
	}

	// Step 6: Publish.
	artifact, cleanupErrs, err := output.Publish(target, result, stdout)
	for _, w := range cleanupErrs {
		fmt.Fprintf(stderr, "⚠ Warning: %v\n", w)
		warnings = append(warnings, w.Error())
	}
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to publish PDF", err)
	}
	VerboseLog("PDF: %d bytes, blake3 %s", artifact.Size, artifact.Digest)

	if !target.IsStream() {
		fmt.Fprintf(stderr, "✓ Generated %s\n", artifact.Path)
		if len(cleanupErrs) == 0 {
			fmt.Fprintln(stderr, "✓ Cleaned up auxiliary files")
		}
	}

	if jsonOutput {
		// Stdout belongs to the PDF in stream mode.
		w := stdout
		if target.IsStream() {
			w = stderr
		}
		res := generateResult{PDF: artifact, Mode: target.Mode.String(), Engine: engine.String(), Warnings: warnings}
		if !target.IsStream() {
			res.Source = sourcePath
		}
		if err := printJSON(w, res); err != nil {
			return err
		}
	}

	if interactive {
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "🎉 Done!")
	}
	return nil
}

// applyFlagOverrides copies the flags the user set explicitly into cfg.
// Flags left at their defaults do not override the config file.
//
// cobra's Changed is used rather than comparing against the default, so
// "--metamask-account 'Main Account'" still overrides a config file that
// sets a different label.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config, flags *generateFlags) {
	changed := func(name string) bool { return cmd.Flags().Changed(name) }

	if changed("metamask-account") {
		cfg.MetaMaskAccount = flags.metamaskAccount
	}
	if changed("output") {
		cfg.Output = flags.output
	}
	if changed("engine") {
		cfg.Engine = flags.engine
	}
	if changed("compiler") {
		cfg.Compiler = flags.compiler
	}
	if changed("image") {
		cfg.Image = flags.image
	}
	if changed("assets-dir") {
		cfg.AssetsDir = flags.assetsDir
	}
}

// newCompiler returns the Compiler for engine. Image pull progress is
// only shown in verbose mode.
func newCompiler(engine model.Engine, cfg *config.Config, stderr io.Writer) tex.Compiler {
	if engine == model.EngineDocker {
		var progress io.Writer
		if verbose {
			progress = stderr
		}
		return docker.NewCompiler(cfg.Image, progress)
	}
	return tex.NewLocalCompiler(cfg.Compiler)
}

// handleCompileError reports a failed compile and converts it to a
// CLIError. A stream-mode working directory is removed; in disk mode the
// source is kept for inspection.
//
// Three cases are distinguished:
//   - tex.ErrCompilerNotFound: pdflatex is not installed, or the Docker
//     daemon is unreachable. The message names the missing toolchain and,
//     in disk mode, where the .tex was left so it can be compiled by hand.
//   - *tex.CompileError: pdflatex ran and failed. Its complete stdout and
//     stderr are relayed, since LaTeX errors are only readable in context.
//   - anything else: Docker API failures and the like, wrapped as-is.
func handleCompileError(stderr io.Writer, target *model.OutputTarget, sourcePath string, engine model.Engine, cfg *config.Config, err error) error {
	for _, w := range output.Discard(target) {
		fmt.Fprintf(stderr, "⚠ Warning: %v\n", w)
	}

	if errors.Is(err, tex.ErrCompilerNotFound) {
		if !target.IsStream() {
			fmt.Fprintf(stderr, "  The .tex file has been generated at: %s\n", sourcePath)
		}
		if engine == model.EngineDocker {
			return model.WrapCLIError(model.ExitGeneralError,
				"Docker is not available. Start Docker or use --engine local", err)
		}
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("%s not found. %s", cfg.Compiler, tex.InstallHint), err)
	}

	var compileErr *tex.CompileError
	if errors.As(err, &compileErr) {
		fmt.Fprintln(stderr, "✗ PDF compilation failed:")
		fmt.Fprint(stderr, compileErr.Diagnostics())
		if !target.IsStream() {
			fmt.Fprintf(stderr, "  The .tex file has been kept at: %s\n", sourcePath)
		}
		return model.WrapCLIError(model.ExitGeneralError, "PDF compilation failed", err)
	}

	return model.WrapCLIError(model.ExitGeneralError, "failed to run the LaTeX compiler", err)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to marshal JSON output", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
