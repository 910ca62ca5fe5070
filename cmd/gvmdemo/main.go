// Package main demonstrates the engine end to end with the worked
// arithmetic grammar: it either evaluates a single expression (-eval), or
// dumps the grammar's rules with the printer package and drops into a
// readline REPL.
// Grounded on the teacher's cmd/demo/main.go (a runnable demonstration of
// the library's public surface) and on wudi-hey's cmd/hey/main.go for the
// cli.Command/interactive-shell split.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v3"

	"github.com/gvmlang/gvm/examples"
	"github.com/gvmlang/gvm/printer"
	"github.com/gvmlang/gvm/writer"
)

func main() {
	app := &cli.Command{
		Name:  "gvmdemo",
		Usage: "parses arithmetic expressions with the gvm grammar engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "eval",
				Aliases: []string{"e"},
				Usage:   "parse <expr> once and print its AST instead of starting the REPL",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if expr := cmd.String("eval"); expr != "" {
				return evalOnce(expr)
			}
			return runREPL()
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "gvmdemo:", err)
		os.Exit(1)
	}
}

func evalOnce(input string) error {
	expr, err := examples.Parse(input)
	if err != nil {
		fmt.Println(err)
		return nil
	}
	fmt.Println(expr.String())
	return nil
}

func runREPL() error {
	fmt.Println("=== GRAMMAR ===")
	fmt.Print(printer.ToString(func(w writer.Writer) {
		printer.DumpGrammar(w, examples.Grammar())
	}))

	rl, err := readline.New("gvm> ")
	if err != nil {
		return fmt.Errorf("gvmdemo: could not start REPL: %w", err)
	}
	defer rl.Close()

	fmt.Println("=== REPL (Ctrl-D to quit) ===")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		if line == "" {
			continue
		}

		expr, perr := examples.Parse(line)
		if perr != nil {
			fmt.Println(perr)
			continue
		}
		fmt.Println(expr.String())
	}
	return nil
}
