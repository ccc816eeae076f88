// Package main provides the entry point for the cognitcode CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognitcode/cognitcode/cmd/cognitcode/commands"
	"github.com/cognitcode/cognitcode/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cognitcode",
		Short: "CognitCode - AI-assisted Python code smell detection and refactoring",
		Long: `CognitCode analyzes Python snippets for code smells and refactors them
with AI assistance.

Commands:
  analyze   Detect code smells in a Python snippet
  refactor  Detect smells and refactor the snippet with an LLM
  serve     Start the web UI and HTTP API
  mcp       Start an MCP server for AI agent integration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewRefactorCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "cognitcode %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
