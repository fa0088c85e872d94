package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"phpc/internal/diag"
	"phpc/internal/diagfmt"
	"phpc/internal/driver"
	"phpc/internal/emit"
)

var cfgCmd = &cobra.Command{
	Use:   "cfg [flags] <file.php|directory>...",
	Short: "Print the control flow graph of every routine",
	Long:  `Cfg analyzes the given scripts and prints each routine's blocks with the variable types inferred at their entry`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCFG,
}

func init() {
	cfgCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
}

func runCFG(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	bag := diag.NewBag(0)
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	fs, ids, err := driver.LoadFiles(args, rep)
	if err != nil {
		return err
	}
	comp, err := driver.Compile(cmd.Context(), fs, ids, rep, jobs, nil)
	if err != nil {
		return err
	}
	emitter := emit.NewTextEmitter(comp.Table, false)
	session := driver.NewSession(comp, rep, driver.Options{Jobs: jobs, Emitter: emitter})
	if err := session.Run(cmd.Context()); err != nil {
		return err
	}
	if _, err := emitter.WriteTo(cmd.OutOrStdout()); err != nil {
		return err
	}

	bag.Sort()
	return diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, diagfmt.PrettyOpts{
		Color:     !color.NoColor,
		Context:   true,
		ShowNotes: true,
	})
}
