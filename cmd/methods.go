package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type taskMethods struct {
	Task    string                `json:"task" yaml:"task"`
	Default string                `json:"default" yaml:"default"`
	Methods []analysis.MethodInfo `json:"methods" yaml:"methods"`
}

func newMethodsCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "methods [task]",
		Short: "List every method and whether its backend is available",
		Long: `Builds every task (or just the named one) and lists its methods. Unavailable
methods are shown with the error that disabled them, such as a missing native
library or model.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: taskNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			names := taskNames()
			if len(args) == 1 {
				names = args
			}

			list := make([]taskMethods, 0, len(names))
			for _, name := range names {
				task, err := a.buildTask(name)
				if err != nil {
					return err
				}
				list = append(list, taskMethods{Task: task.Name(), Default: task.DefaultMethod(), Methods: task.Methods()})
				closeTasks(task)
			}

			return printMethods(cmd.OutOrStdout(), list, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or yaml")
	return cmd
}

func printMethods(w io.Writer, list []taskMethods, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(list); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, tm := range list {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s (default: %s)\n", tm.Task, tm.Default)
		for _, m := range tm.Methods {
			status := "available"
			if !m.Available {
				status = "not available"
				if m.Reason != "" {
					status += ": " + m.Reason
				}
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", m.Key, m.Label, status)
		}
	}
	return tw.Flush()
}
