// Package commands implements the cognitcode CLI subcommands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/src-d/enry/v2"
	"gopkg.in/yaml.v3"

	"github.com/cognitcode/cognitcode/pkg/analyzers/smells"
	"github.com/cognitcode/cognitcode/pkg/pyast"
)

// Format mode constants.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const pythonLanguage = "Python"

// stdinFilename is the synthetic name used for snippets read from stdin.
const stdinFilename = "snippet.py"

var (
	// ErrEmptyInput indicates the snippet is empty.
	ErrEmptyInput = errors.New("input is empty")
	// ErrNotPython indicates the input was detected as a different language.
	ErrNotPython = errors.New("input does not look like Python")
	// ErrInputTooLarge indicates the input exceeds the size limit.
	ErrInputTooLarge = errors.New("input exceeds maximum size")
	// ErrUnknownFormat indicates an unsupported output format.
	ErrUnknownFormat = errors.New("unknown output format")
)

// AnalyzeCommand holds the flags for the analyze command.
type AnalyzeCommand struct {
	output   string
	format   string
	plot     string
	maxInput string
	noColor  bool
}

// NewAnalyzeCommand creates and configures the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	cmd := &AnalyzeCommand{}

	cobraCmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Detect code smells in a Python snippet",
		Long: `Detect code smells in a Python snippet read from a file or stdin.

Two detectors run on every snippet: overlong functions and magic numbers.`,
		Args: cobra.MaximumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.output, "output", "o", "", "Output file (default: stdout)")
	cobraCmd.Flags().StringVarP(&cmd.format, "format", "f", FormatText, "Output format: text, json, or yaml")
	cobraCmd.Flags().StringVar(&cmd.plot, "plot", "", "Write an HTML issue distribution chart to this file")
	cobraCmd.Flags().StringVar(&cmd.maxInput, "max-input", "1MB", "Maximum snippet size (e.g. 64KB, 1MB)")
	cobraCmd.Flags().BoolVar(&cmd.noColor, "no-color", false, "Disable colored output")

	return cobraCmd
}

// Run executes the analyze command.
func (c *AnalyzeCommand) Run(cobraCmd *cobra.Command, args []string) error {
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

	writer, closer, err := openOutput(c.output)
	if err != nil {
		return err
	}
	defer closer()

	err = c.writeReport(issues, writer)
	if err != nil {
		return err
	}

	if c.plot != "" {
		err = writePlot(issues, c.plot)
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *AnalyzeCommand) writeReport(issues []smells.Issue, writer io.Writer) error {
	switch c.format {
	case FormatJSON:
		data, err := smells.FormatIssuesJSON(issues)
		if err != nil {
			return err
		}

		fmt.Fprintln(writer, data)

		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(writer)
		defer func() { _ = encoder.Close() }()

		encodeErr := encoder.Encode(issues)
		if encodeErr != nil {
			return fmt.Errorf("encode yaml: %w", encodeErr)
		}

		return nil
	case FormatText:
		smells.FormatIssuesTable(issues, writer, c.noColor)

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.format)
	}
}

// readSnippet reads the snippet from the file argument or stdin, enforces the
// size limit, and rejects input detected as a language other than Python.
func readSnippet(args []string, maxInput string) (string, []byte, error) {
	limit, err := humanize.ParseBytes(maxInput)
	if err != nil {
		return "", nil, fmt.Errorf("parse max-input: %w", err)
	}

	filename := stdinFilename

	var content []byte

	if len(args) == 1 {
		filename = args[0]

		content, err = os.ReadFile(filename)
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", filename, err)
		}
	} else {
		content, err = io.ReadAll(os.Stdin)
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
	}

	err = validateSnippet(filename, content, limit)
	if err != nil {
		return "", nil, err
	}

	return filename, content, nil
}

// validateSnippet enforces size and language constraints on a snippet.
// Language detection is advisory: unknown content passes, a confident
// non-Python classification does not.
func validateSnippet(filename string, content []byte, limit uint64) error {
	if len(content) == 0 {
		return ErrEmptyInput
	}

	if uint64(len(content)) > limit {
		return fmt.Errorf("%w: %s (max %s)",
			ErrInputTooLarge, humanize.Bytes(uint64(len(content))), humanize.Bytes(limit))
	}

	lang := enry.GetLanguage(filename, content)
	if lang != "" && lang != pythonLanguage {
		return fmt.Errorf("%w: detected %s", ErrNotPython, lang)
	}

	return nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}

	return file, func() { _ = file.Close() }, nil
}

func writePlot(issues []smells.Issue, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	defer func() { _ = file.Close() }()

	err = smells.FormatIssuesPlot(issues, file)
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}
