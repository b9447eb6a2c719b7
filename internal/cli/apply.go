package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/autotest-tools/devlabel/internal/branding"
	"github.com/autotest-tools/devlabel/internal/category"
	"github.com/autotest-tools/devlabel/internal/config"
	"github.com/autotest-tools/devlabel/internal/relabel"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	applyJobs        int
	applyFailFast    bool
	applyDryRun      bool
	applyStrict      bool
	applyInteractive bool
	applyExclude     []string
	applyExt         string
	applyFormat      string
)

var applyCmd = &cobra.Command{
	Use:   "apply [selector] [root]",
	Short: "Retag every manifest under root for a device category",
	Long: `Set the "label" of every environment entry in every manifest under root to
the selected device category, rewriting each file in place.

The selector is a menu number (1-6), a label (phone, car, tv, watch, tablet,
2in1), or a display name (pc). When omitted it is read from DEVLABEL_CATEGORY
or the "category" config key, and otherwise prompted for on a terminal.

Root defaults to the "root" config key, or "testcases".

A manifest that cannot be parsed or written is reported and the run goes on
with the remaining files; pass --fail-fast to stop at the first failure.`,
	Example: `  devlabel apply 1
  devlabel apply pc suites/power --dry-run
  devlabel apply tv --exclude 'draft/**' --jobs 4 --format json`,
	Args: cobra.MaximumNArgs(2),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().IntVarP(&applyJobs, "jobs", "j", 1, "Number of manifests processed concurrently")
	applyCmd.Flags().BoolVar(&applyFailFast, "fail-fast", false, "Stop at the first manifest that fails")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Report what would change without writing")
	applyCmd.Flags().BoolVar(&applyStrict, "strict", false, "Exit non-zero when the root directory is missing")
	applyCmd.Flags().BoolVarP(&applyInteractive, "interactive", "i", false, "Prompt for the category even when stdin is not a terminal")
	applyCmd.Flags().StringSliceVar(&applyExclude, "exclude", nil, "Glob of paths to skip, relative to root (repeatable)")
	applyCmd.Flags().StringVar(&applyExt, "ext", branding.ManifestExt(), "Manifest file extension")
	applyCmd.Flags().StringVarP(&applyFormat, "format", "f", relabel.FormatText, "Report format: text, json, or yaml")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	if err := relabel.CheckFormat(applyFormat); err != nil {
		return err
	}

	config.Load()

	cat, err := resolveCategory(cmd, args)
	if err != nil {
		return err
	}

	root := config.Get(config.KeyRoot)
	if len(args) > 1 {
		root = args[1]
	}

	opts := relabel.Options{
		Extension: applyExt,
		Jobs:      applyJobs,
		FailFast:  applyFailFast,
		DryRun:    applyDryRun,
		Exclude:   applyExclude,
		Logger:    logger,
	}
	flags := cmd.Flags()
	if !flags.Changed("jobs") {
		opts.Jobs = config.GetInt(config.KeyJobs)
	}
	if !flags.Changed("fail-fast") {
		opts.FailFast = config.GetBool(config.KeyFailFast)
	}
	if !flags.Changed("exclude") {
		opts.Exclude = config.GetStringSlice(config.KeyExclude)
	}

	out := cmd.OutOrStdout()
	report, err := relabel.Run(cmd.Context(), root, cat, opts)
	if err != nil {
		if !errors.Is(err, relabel.ErrPathNotFound) {
			return err
		}
		if renderErr := report.Render(out, applyFormat); renderErr != nil {
			return renderErr
		}
		if applyStrict {
			return err
		}
		return nil
	}

	if err := report.Render(out, applyFormat); err != nil {
		return err
	}

	if failErr := report.Err(); failErr != nil {
		return fmt.Errorf("%d of %d manifests failed: %w", len(report.Failures), report.Discovered, failErr)
	}
	if report.Skipped > 0 {
		return fmt.Errorf("%d manifests were not processed", report.Skipped)
	}

	if applyFormat == "" || applyFormat == relabel.FormatText {
		fmt.Fprintf(out, "Select Test %s successfully!\n", cat.Name)
	}
	return nil
}

// resolveCategory picks the selector from the argument, then configuration,
// then an interactive prompt.
func resolveCategory(cmd *cobra.Command, args []string) (category.Category, error) {
	if len(args) > 0 {
		return category.Select(args[0])
	}
	if sel := config.Get(config.KeyCategory); sel != "" && !applyInteractive {
		return category.Select(sel)
	}
	if !applyInteractive && !stdinIsTerminal(cmd) {
		return category.Category{}, fmt.Errorf("%w: no selector given; pass one as an argument or set %s",
			category.ErrInvalidSelection, branding.EnvVar(config.KeyCategory))
	}
	return category.Prompt(cmd.InOrStdin(), cmd.ErrOrStderr())
}

func stdinIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
