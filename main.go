package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("harmonix")

func main() {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:          "harmonix",
		Short:        "Classify and structure chord sheets",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbosity, nil)
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newNormalizeCmd())
	rootCmd.AddCommand(newTokenizeCmd())
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newExportMidiCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
