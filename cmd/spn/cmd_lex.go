package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Vathsa/Sparkling/spn/parser"
)

func newLexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lex [file]",
		Short: "Dump the token stream of a Sparkling source file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args)
			if err != nil {
				return err
			}

			p := parser.New(parser.WithErrorSink(io.Discard))
			p.Reset(source)
			for p.Advance() {
				tok := p.Current()
				switch tok.Kind {
				case parser.TokenIdent, parser.TokenInt, parser.TokenFloat, parser.TokenString:
					fmt.Printf("%4d  %-13s %s\n", tok.Line, tok.Kind, tok.Val)
				default:
					fmt.Printf("%4d  %s\n", tok.Line, tok.Kind)
				}
			}
			return p.Err()
		},
	}
}
