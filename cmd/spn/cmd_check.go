package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Vathsa/Sparkling/spn/parser"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: "Syntax-check Sparkling source files",
		Long: `Syntax-check Sparkling source files.

Each file is parsed independently; the first error of each failing file
is reported. The exit status is non-zero if any file fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := parser.New(parser.WithErrorSink(io.Discard))
			failed := 0
			for _, filename := range args {
				source, err := readSource([]string{filename})
				if err != nil {
					return err
				}
				if _, err := p.Parse(source); err != nil {
					fmt.Printf("%s: %v\n", filename, err)
					failed++
				} else {
					fmt.Printf("%s: ok\n", filename)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
}
