package main

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

//go:embed ../../testdata/concat.rules
var concatRules string

//go:embed ../../testdata/concat-input.txt
var concatInput string

//go:embed ../../testdata/concat-output.txt
var concatOutput string

//go:embed ../../testdata/symbolref.rules
var symbolrefRules string

//go:embed ../../testdata/symbolref-input.txt
var symbolrefInput string

//go:embed ../../testdata/symbolref-output.txt
var symbolrefOutput string

//go:embed ../../testdata/dropunknown-input.txt
var dropunknownInput string

//go:embed ../../testdata/dropunknown-output.txt
var dropunknownOutput string

// writeTemp writes content to name under dir and returns the full path.
func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunTokenizesFixtures(t *testing.T) {
	for _, x := range []struct {
		name, rules, in, out string
		dropUnknown          bool
	}{
		{"concat", concatRules, concatInput, concatOutput, false},
		{"symbolref", symbolrefRules, symbolrefInput, symbolrefOutput, false},
		{"concat-drop-unknown", concatRules, dropunknownInput, dropunknownOutput, true},
	} {
		t.Run(x.name, func(t *testing.T) {
			dir := t.TempDir()
			rulesPath := writeTemp(t, dir, "rules.txt", x.rules)
			inputPath := writeTemp(t, dir, "input.txt", x.in)
			outputPath := filepath.Join(dir, "output.txt")

			err := run(rulesPath, inputPath, outputPath, "", "", x.dropUnknown)
			require.NoError(t, err)

			got, err := os.ReadFile(outputPath)
			require.NoError(t, err)
			require.Equal(t, x.out, string(got))
		})
	}
}

func TestRunWritesNFADot(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeTemp(t, dir, "rules.txt", concatRules)
	inputPath := writeTemp(t, dir, "input.txt", concatInput)
	outputPath := filepath.Join(dir, "output.txt")
	dotPath := filepath.Join(dir, "nfa.dot")

	err := run(rulesPath, inputPath, outputPath, dotPath, "", false)
	require.NoError(t, err)

	dot, err := os.ReadFile(dotPath)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(dot), "digraph"), "dot output should start with a digraph header, got: %s", dot)
}

func TestRunRejectsMissingRulesFile(t *testing.T) {
	dir := t.TempDir()
	inputPath := writeTemp(t, dir, "input.txt", concatInput)
	outputPath := filepath.Join(dir, "output.txt")

	err := run(filepath.Join(dir, "does-not-exist.txt"), inputPath, outputPath, "", "", false)
	require.Error(t, err)
}
