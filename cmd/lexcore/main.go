// Command lexcore is the thin CLI adapter around the engine and lex
// packages: it loads a rule file, builds the combined NFA, tokenizes an
// input file and writes a token listing. Everything interesting happens in
// engine/construct/sim/lex; this file is I/O plumbing only.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/kallegustafsson/tnfa/engine"
	"github.com/kallegustafsson/tnfa/graph"
	"github.com/kallegustafsson/tnfa/lex"
)

// logger reports fatal CLI errors, prefixed the way the teacher's own
// parser/construction loggers are (e.g. nex/parser/program.go's "[nex-parser] ").
var logger = log.New(os.Stderr, "[lexcore] ", log.LstdFlags)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Fatalf("%v", err)
	}
}

func newRootCmd() *cobra.Command {
	var (
		nfaDotPath  string
		dfaDotPath  string
		dropUnknown bool
	)

	cmd := &cobra.Command{
		Use:           "lexcore <rules-file> <input-file> <output-file>",
		Short:         "Tokenize an input file against a prefix-parenthesized rule set",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1], args[2], nfaDotPath, dfaDotPath, dropUnknown)
		},
	}

	cmd.Flags().StringVar(&nfaDotPath, "nfa-dot", "", "write the constructed NFA in Graphviz DOT format to this path")
	cmd.Flags().StringVar(&dfaDotPath, "dfa-dot", "", "no-op: this engine simulates the NFA directly and never builds a DFA")
	cmd.Flags().BoolVar(&dropUnknown, "drop-unknown", false, "omit Unknown tokens from the output instead of emitting them")

	return cmd
}

func run(rulesPath, inputPath, outputPath, nfaDotPath, dfaDotPath string, dropUnknown bool) error {
	if dfaDotPath != "" {
		fmt.Fprintln(os.Stderr, "lexcore: --dfa-dot is a no-op: no DFA: this engine simulates the NFA directly")
	}

	rulesFile, err := os.Open(rulesPath)
	if err != nil {
		return fmt.Errorf("open rules file: %w", err)
	}
	defer rulesFile.Close()

	eng, err := engine.Compile(rulesFile)
	if err != nil {
		return fmt.Errorf("compile rules: %w", err)
	}

	if nfaDotPath != "" {
		if err := writeDot(nfaDotPath, eng); err != nil {
			return fmt.Errorf("write nfa dot: %w", err)
		}
	}

	input, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input file: %w", err)
	}

	driver := eng.NewDriver(lex.Options{DropUnknown: dropUnknown})
	tokens := driver.Tokenize(string(input))

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	for _, tok := range tokens {
		if _, err := fmt.Fprintf(out, "%s: %s\n", tok.Head, tok.Text); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}
	}
	return nil
}

func writeDot(path string, eng *engine.Engine) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	graph.WriteDot(f, eng.Graph, "lexcore", eng.Alphabet)
	return nil
}
