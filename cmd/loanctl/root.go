package main

import (
	"github.com/spf13/cobra"

	"github.com/mikey/loan-predictor/internal/di"
)

const app = "loanctl"

var (
	flags = &di.CLIFlags{}

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "loanctl trains the loan approval model and runs predictions against it",
		SilenceUsage: true,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.ConfigFile, "config", "", "a config file (default is configs/config.yaml)")
	pf.BoolVarP(&flags.Verbose, "debug", "d", false, "verbose/debug output")
	pf.BoolVarP(&flags.JSONLog, "json", "j", false, "json format for logging")
	pf.StringVar(&flags.Backend, "backend", "", "artifact backend override (memory, filesystem, sqlite, mysql, s3)")
	pf.StringVar(&flags.Root, "root", "", "artifact root override for the filesystem backend")
}
