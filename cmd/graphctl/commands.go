package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
	"github.com/gyaneshwarpardhi/knowgraph/internal/rules"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file|->",
		Short: "Check that an element file is well formed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			els, err := loadElements(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			ix := graph.NewIndex(els)
			good.Fprintf(cmd.OutOrStdout(), "ok")
			fmt.Fprintf(cmd.OutOrStdout(), "  %d nodes, %d edges\n", ix.NodeCount(), ix.EdgeCount())
			return nil
		},
	}
}

func mergeCmd() *cobra.Command {
	var (
		keepParallel  bool
		hideGenerated bool
		asYAML        bool
	)
	cmd := &cobra.Command{
		Use:   "merge <file|->",
		Short: "Show edges as the canvas renders them, opposite directions merged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			els, err := loadElements(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if hideGenerated {
				els = graph.FilterGeneratedEdges(els)
			}
			merged, stats := graph.MergeWithStats(els, graph.MergeOptions{KeepAllParallelEdgesSamePair: keepParallel})

			out := cmd.OutOrStdout()
			if asYAML {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(merged)
			}
			var rows [][]string
			for _, e := range graph.Edges(merged) {
				rows = append(rows, []string{e.ID, edgeLabel(e)})
			}
			table(out, []string{"ID", "EDGE"}, rows)
			subtle.Fprintf(out, "  %d merged pairs, %d dropped, %d passed through\n",
				stats.MergedPairs, stats.DroppedEdges, stats.PassedThrough)
			return nil
		},
	}
	cmd.Flags().BoolVar(&keepParallel, "keep-parallel", false, "Keep extra parallel edges of a merged pair")
	cmd.Flags().BoolVar(&hideGenerated, "hide-generated", false, "Drop generated edges before merging")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the merged elements as YAML")
	return cmd
}

func neighborsCmd() *cobra.Command {
	var direction string
	cmd := &cobra.Command{
		Use:   "neighbors <file|-> <node-id>",
		Short: "List the nodes directly connected to a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, ok := graph.ParseDirection(direction)
			if !ok {
				return fmt.Errorf("invalid direction %q (want in, out or both)", direction)
			}
			els, err := loadElements(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if _, ok := graph.NewIndex(els).Node(args[1]); !ok {
				return fmt.Errorf("node %q not found", args[1])
			}
			var rows [][]string
			for _, n := range graph.FindClosestNeighbors(els, args[1], dir) {
				rows = append(rows, []string{n.Node.ID, n.Node.Label, n.Direction.String(), n.Edge.ID})
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				subtle.Fprintln(out, "  no neighbors")
				return nil
			}
			table(out, []string{"NODE", "LABEL", "SIDE", "EDGE"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&direction, "direction", "d", "both", "Side to look at: in, out or both")
	return cmd
}

func checkCmd() *cobra.Command {
	var (
		originalID string
		strict     bool
	)
	cmd := &cobra.Command{
		Use:   "check <file|-> <source> <target>",
		Short: "Evaluate the connection rules for a proposed edge",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			els, err := loadElements(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			edges := graph.Edges(graph.MergeBidirectionalEdges(els, graph.MergeOptions{}))
			req := rules.Request{Source: args[1], Target: args[2], Edges: edges}
			if originalID != "" {
				for _, e := range edges {
					if e.ID == originalID {
						req.Original = &e
						break
					}
				}
				if req.Original == nil {
					return fmt.Errorf("edge %q is not rendered", originalID)
				}
			}
			d := rules.Evaluate(req)

			out := cmd.OutOrStdout()
			verdict := bad.Sprint("refused")
			if d.Allowed {
				verdict = good.Sprint("allowed")
			}
			fmt.Fprintf(out, "%s -> %s: %s  %s\n", req.Source, req.Target, verdict,
				accent.Sprint("rule="+string(d.Reason)))
			if strict && !d.Allowed {
				return fmt.Errorf("connection %s -> %s refused by rule %s", req.Source, req.Target, d.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&originalID, "original", "", "ID of the rendered edge being moved")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when the connection is refused")
	return cmd
}
