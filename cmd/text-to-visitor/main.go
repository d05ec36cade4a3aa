package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sha1n/text-to-visitor/internal/app"
	"github.com/sha1n/text-to-visitor/internal/ruleindex"
	"github.com/spf13/cobra"
)

var (
	// Version is injected at build time
	Version = "dev"
	// Build is injected at build time
	Build = "unknown"
	// ProgramName is injected at build time
	ProgramName = "text-to-visitor"
)

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(Version, Build, ProgramName, args[1:]); err != nil {
		exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing
func Execute(version, build, programName string, args []string) error {
	rootCmd := &cobra.Command{
		Use:     programName,
		Short:   "Rule visitor dataset extractor",
		Long:    "Pairs static analysis rule visitors with their natural-language rule titles and writes them as a dataset",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			return app.RunWithDeps(ctx, app.DefaultRunParams(), cmd.Flags(), version)
		},
	}

	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	app.RegisterFlags(rootCmd.Flags())
	rootCmd.AddCommand(newSearchCommand(), newServeCommand(version))
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

func newSearchCommand() *cobra.Command {
	var ruleType string
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search the rule index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			filters := ruleindex.Filters{RuleType: ruleType}
			return app.RunSearchWithDeps(ctx, app.DefaultSearchParams(), cmd.Flags(), args, filters)
		},
	}

	cmd.Flags().StringVarP(&ruleType, "rule-type", "t", "", "Only return rules of this type")
	app.RegisterIndexFlags(cmd.Flags())
	return cmd
}

func newServeCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rule index as an MCP stdio server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			return app.RunServeWithDeps(ctx, app.DefaultServeParams(), cmd.Flags(), version)
		},
	}

	app.RegisterIndexFlags(cmd.Flags())
	return cmd
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
