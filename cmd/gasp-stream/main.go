// Command gasp-stream demonstrates GASP against its own streaming model:
// it feeds an input document to a Parser in small, delayed chunks and
// prints each partial snapshot as it changes, the way an LLM's output
// would arrive token by token.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/kallsyms/gasp"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		filePath  string
		chunkSize int
		delay     time.Duration
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "gasp-stream",
		Short: "Simulate streaming GASP extraction against a demo Person schema",
		Long: `gasp-stream reads a tagged document (from --file or stdin), splits it
into fixed-size chunks, and feeds them to a GASP parser one at a time,
printing the evolving partial value each time a chunk changes it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, filePath, chunkSize, delay, quiet)
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "input file (defaults to stdin)")
	cmd.Flags().IntVarP(&chunkSize, "chunk-size", "c", 16, "bytes fed per step")
	cmd.Flags().DurationVarP(&delay, "delay", "d", 0, "pause between chunks")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the final value")

	return cmd
}

func run(cmd *cobra.Command, filePath string, chunkSize int, delay time.Duration, quiet bool) error {
	input, err := readInput(filePath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if chunkSize <= 0 {
		chunkSize = 16
	}

	p, err := gasp.New[Person](gasp.NewOptions())
	if err != nil {
		return fmt.Errorf("build parser: %w", err)
	}

	spinner, _ := pterm.DefaultSpinner.Start("feeding chunks")
	var last string
	for off := 0; off < len(input); off += chunkSize {
		end := off + chunkSize
		if end > len(input) {
			end = len(input)
		}
		partial, feedErr := p.Feed(input[off:end])
		if feedErr != nil {
			spinner.Fail(feedErr.Error())
			return feedErr
		}
		if !quiet {
			if rendered := renderPartial(partial); rendered != last {
				pterm.Printf("  %s %s\n", pterm.Gray("→"), pterm.LightCyan(rendered))
				last = rendered
			}
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	spinner.Success("input exhausted")

	for _, recErr := range p.Errors() {
		pterm.Warning.Printf("%s\n", recErr.Error())
	}

	final, err := p.Validate()
	if err != nil {
		pterm.Error.Printf("validate: %v\n", err)
		return err
	}
	if !p.IsComplete() {
		pterm.Warning.Println("root tag never closed; printing last partial instead of final value")
		final = p.GetPartial()
	}
	pterm.Success.Printf("final: %s\n", renderPartial(final))
	return nil
}

func readInput(filePath string) ([]byte, error) {
	if filePath == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(filePath)
}

func renderPartial(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
