package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/VantageDataChat/pptxjson"
)

func newConvertCommand(a *app) *cobra.Command {
	var (
		output string
		indent bool
	)
	cmd := &cobra.Command{
		Use:   "convert <file.pptx>",
		Short: "Convert a presentation and write its JSON description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			pres, err := pptxjson.ConvertFile(cmd.Context(), args[0], a.cfg.options())
			if err != nil {
				return fmt.Errorf("convert %s: %w", args[0], err)
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := writeJSON(w, pres, indent); err != nil {
				return err
			}

			if stderrIsTerminal() {
				dest := output
				if dest == "" || dest == "-" {
					dest = "stdout"
				}
				fmt.Fprintln(os.Stderr, successText(fmt.Sprintf("%s %d slides → %s %s",
					bold(args[0]), pres.GetSlideCount(), dest, gray(time.Since(start).Round(time.Millisecond)))))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().BoolVar(&indent, "indent", false, "indent the JSON output")
	return cmd
}

func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
