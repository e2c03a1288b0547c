package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Vathsa/Sparkling/spn/parser"
)

func newParseCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a Sparkling source file and dump the syntax tree",
		Long: `Parse a Sparkling source file and dump the syntax tree to stdout.

If no file is provided, source is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args)
			if err != nil {
				return err
			}

			p := parser.New(parser.WithErrorSink(io.Discard))
			tree, err := p.Parse(source)
			if err != nil {
				return err
			}

			switch outputFormat {
			case "tree":
				fmt.Print(tree.String())
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(tree); err != nil {
					return fmt.Errorf("encode: %w", err)
				}
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format (tree, json)")

	return cmd
}

func readSource(args []string) ([]byte, error) {
	if len(args) == 0 {
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return source, nil
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return source, nil
}
