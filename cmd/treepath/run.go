package main

import (
	"github.com/spf13/cobra"

	"github.com/jward/treepath/internal/script"
)

var flagRunFiles []string

var runCmd = &cobra.Command{
	Use:   "run <script.risor>",
	Short: "Execute a Risor automation script against loaded files",
	Long:  "Runs a Risor script with the treepath host functions (load, find, stable_path, nesting_depth, mark, markers). Files passed with --load are parsed before the script starts; scripts may load more.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringSliceVar(&flagRunFiles, "load", nil, "source files to parse before running the script")
}

func runRun(cmd *cobra.Command, args []string) error {
	session, persist, err := openSession()
	if err != nil {
		return outputError(err)
	}
	defer persist.close()

	rt, err := script.NewRuntime(session)
	if err != nil {
		return outputError(err)
	}
	defer rt.Close()

	for _, file := range flagRunFiles {
		if err := rt.LoadFile(cmd.Context(), file); err != nil {
			return outputError(err)
		}
	}
	if err := rt.RunScript(cmd.Context(), args[0]); err != nil {
		return outputError(err)
	}
	return persist.save(session)
}
