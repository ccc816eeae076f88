package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cognitcode/cognitcode/internal/config"
	"github.com/cognitcode/cognitcode/pkg/analyzers/smells"
	"github.com/cognitcode/cognitcode/pkg/pyast"
	"github.com/cognitcode/cognitcode/pkg/refactor"
)

// RefactorCommand holds the flags for the refactor command.
type RefactorCommand struct {
	output   string
	goal     string
	model    string
	baseURL  string
	maxInput string
	showDiff bool
	noColor  bool
}

// NewRefactorCommand creates and configures the refactor command.
func NewRefactorCommand() *cobra.Command {
	cmd := &RefactorCommand{}

	cobraCmd := &cobra.Command{
		Use:   "refactor [file]",
		Short: "Detect smells and refactor the snippet with an LLM",
		Long: `Detect code smells in a Python snippet and send them, together with the
snippet, to the Gemini API for refactoring.

Requires the GOOGLE_API_KEY environment variable (GEMINI_API_KEY is accepted
as a fallback alias).`,
		Args: cobra.MaximumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.output, "output", "o", "", "Output file (default: stdout)")
	cobraCmd.Flags().StringVarP(&cmd.goal, "goal", "g", refactor.DefaultGoal, "Refactoring goal passed to the model")
	cobraCmd.Flags().StringVar(&cmd.model, "model", config.DefaultLLMModel, "Gemini model identifier")
	cobraCmd.Flags().StringVar(&cmd.baseURL, "base-url", config.DefaultLLMBaseURL, "Gemini API base URL")
	cobraCmd.Flags().StringVar(&cmd.maxInput, "max-input", "1MB", "Maximum snippet size (e.g. 64KB, 1MB)")
	cobraCmd.Flags().BoolVar(&cmd.showDiff, "diff", true, "Show a diff between the original and refactored code")
	cobraCmd.Flags().BoolVar(&cmd.noColor, "no-color", false, "Disable colored output")

	return cobraCmd
}

// Run executes the refactor command.
func (c *RefactorCommand) Run(cobraCmd *cobra.Command, args []string) error {
	filename, content, err := readSnippet(args, c.maxInput)
	if err != nil {
		return err
	}

	parser := pyast.NewParser()

	root, err := parser.Parse(cobraCmd.Context(), content)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", filename, err)
	}

	issues := smells.Detect(root)

	issuesJSON, err := smells.FormatIssuesJSON(issues)
	if err != nil {
		return err
	}

	client, err := refactor.NewClient(config.ResolveAPIKey(),
		refactor.WithModel(c.model),
		refactor.WithBaseURL(c.baseURL),
	)
	if err != nil {
		return err
	}

	resp, err := client.Refactor(cobraCmd.Context(), c.goal, issuesJSON, string(content))
	if err != nil {
		return fmt.Errorf("refactor %s: %w", filename, err)
	}

	writer, closer, err := openOutput(c.output)
	if err != nil {
		return err
	}
	defer closer()

	c.writeResult(writer, issues, string(content), resp)

	return nil
}

func (c *RefactorCommand) writeResult(writer io.Writer, issues []smells.Issue, original string, resp *refactor.Response) {
	if c.noColor {
		color.NoColor = true //nolint:reassign // documented global switch
	}

	heading := color.New(color.Bold, color.FgCyan).SprintFunc()

	fmt.Fprintln(writer, heading("Detected Issues"))
	smells.FormatIssuesTable(issues, writer, c.noColor)
	fmt.Fprintln(writer)

	fmt.Fprintln(writer, heading("Explanation"))
	fmt.Fprintln(writer, resp.Explanation)
	fmt.Fprintln(writer)

	fmt.Fprintln(writer, heading("Refactored Code"))
	fmt.Fprintln(writer, resp.RefactoredCode)

	if c.showDiff {
		fmt.Fprintln(writer)
		fmt.Fprintln(writer, heading("Diff"))
		fmt.Fprintln(writer, refactor.Diff(original, resp.RefactoredCode))
	}
}
