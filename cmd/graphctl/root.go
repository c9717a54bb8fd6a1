package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
)

var (
	good   = color.New(color.FgGreen, color.Bold)
	bad    = color.New(color.FgRed, color.Bold)
	subtle = color.New(color.FgHiBlack)
	accent = color.New(color.FgCyan)
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "graphctl",
		Short:         "Inspect knowledge-graph element files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("no-color", false, "Disable colored output")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if off, _ := cmd.Flags().GetBool("no-color"); off {
			color.NoColor = true
		}
	}
	root.AddCommand(
		validateCmd(),
		mergeCmd(),
		neighborsCmd(),
		checkCmd(),
	)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n%s", err, cmd.UsageString())
	})
	return withErrorOutput(root)
}

// withErrorOutput makes every RunE print its error in red before returning it.
func withErrorOutput(root *cobra.Command) *cobra.Command {
	for _, c := range root.Commands() {
		run := c.RunE
		if run == nil {
			continue
		}
		c.RunE = func(cmd *cobra.Command, args []string) error {
			err := run(cmd, args)
			if err != nil {
				bad.Fprintf(cmd.ErrOrStderr(), "graphctl: %v\n", err)
			}
			return err
		}
	}
	return root
}

// elementFile is the on-disk shape: either a bare list of elements or a
// document with an "elements" (or config-style "seed") key.
type elementFile struct {
	Elements []graph.Element `yaml:"elements"`
	Seed     []graph.Element `yaml:"seed"`
}

// loadElements reads path, or stdin when path is "-".
func loadElements(stdin io.Reader, path string) ([]graph.Element, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open elements: %w", err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read elements: %w", err)
	}
	return parseElements(data)
}

func parseElements(data []byte) ([]graph.Element, error) {
	var list []graph.Element
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, graph.Validate(list)
	}
	var doc elementFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse elements: %w", err)
	}
	els := doc.Elements
	if len(els) == 0 {
		els = doc.Seed
	}
	if len(els) == 0 {
		return nil, errors.New("parse elements: no elements found")
	}
	return els, graph.Validate(els)
}

func edgeLabel(e graph.Edge) string {
	arrow := "->"
	if e.ReverseEdge != nil {
		arrow = "<->"
	}
	s := fmt.Sprintf("%s %s %s", e.Source, arrow, e.Target)
	if e.ReverseEdge != nil {
		return fmt.Sprintf("%s  [%s | %s:%s]", s, e.Type, e.ReverseEdge.ID, e.ReverseEdge.Type)
	}
	return fmt.Sprintf("%s  [%s]", s, e.Type)
}

// table prints aligned rows under a dimmed header.
func table(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	line := func(cells []string) string {
		var b strings.Builder
		b.WriteString("  ")
		for i, c := range cells {
			fmt.Fprintf(&b, "%-*s  ", widths[i], c)
		}
		return strings.TrimRight(b.String(), " ")
	}
	subtle.Fprintln(w, line(headers))
	for _, row := range rows {
		fmt.Fprintln(w, line(row))
	}
}
