package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder-f/statement-resolver/internal/model"
	"github.com/calder-f/statement-resolver/internal/resolver"
)

// Sample statements for testing.
const testStatement = `Portfolio Statement
ISIN: XS1111111111 Alpha Holding Market Value 100'000 USD
ISIN: US0378331005 Beta Holding Market Value 99'080 USD
Total 199'080
`

const testStatementNoTotal = `ISIN: XS1111111111 Alpha Holding Market Value 100'000 USD
`

func writeStatement(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// captureStdout redirects os.Stdout around fn and returns what it printed.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestResolveCommand_BatchContinuesPastBadFile(t *testing.T) {
	dir := t.TempDir()
	bad := writeStatement(t, dir, "bad.txt", "   \n")
	good := writeStatement(t, dir, "good.txt", testStatement)

	cmd := resolveCmd()
	cmd.SetArgs([]string{bad, good, "--no-store"})

	var runErr error
	out := captureStdout(t, func() { runErr = cmd.Execute() })

	// The bad file is reported as a failure...
	require.Error(t, runErr)
	assert.Contains(t, runErr.Error(), "1 of 2")

	// ...but the good file was still resolved and rendered.
	assert.Contains(t, out, "XS1111111111")
	assert.Contains(t, out, "US0378331005")
	assert.Contains(t, out, "PASS")
}

func TestResolveOne_JSONOutputShape(t *testing.T) {
	dir := t.TempDir()
	path := writeStatement(t, dir, "statement.txt", testStatement)

	r, err := resolver.New(resolver.DefaultConfig(), nil, nil)
	require.NoError(t, err)

	var result *model.Result
	var runErr error
	out := captureStdout(t, func() {
		result, runErr = resolveOne(context.Background(), r, path, "json")
	})
	require.NoError(t, runErr)

	var decoded model.Result
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, result.RunID, decoded.RunID)
	require.Len(t, decoded.Securities, 2)
	assert.Equal(t, "XS1111111111", decoded.Securities[0].ISIN)
	assert.InDelta(t, 100000, decoded.Securities[0].MarketValue, 0.001)
	assert.Equal(t, "US0378331005", decoded.Securities[1].ISIN)
	assert.InDelta(t, 99080, decoded.Securities[1].MarketValue, 0.001)
	assert.Equal(t, model.ValidationPass, decoded.PortfolioTotal.Status)
	require.NotNil(t, decoded.PortfolioTotal.DeclaredTotal)
	assert.InDelta(t, 199080, *decoded.PortfolioTotal.DeclaredTotal, 0.001)
	assert.Empty(t, decoded.Unresolved)
}

func TestResolveCommand_StrictRejectsMissingTotal(t *testing.T) {
	dir := t.TempDir()
	path := writeStatement(t, dir, "no_total.txt", testStatementNoTotal)

	cmd := resolveCmd()
	cmd.SetArgs([]string{path, "--no-store", "--strict"})

	var strictErr error
	_ = captureStdout(t, func() { strictErr = cmd.Execute() })
	require.Error(t, strictErr)
	assert.Contains(t, strictErr.Error(), "1 of 1")

	// Without --strict the same statement resolves fine; the failed total
	// check stays a report, not an error.
	cmd = resolveCmd()
	cmd.SetArgs([]string{path, "--no-store"})

	var runErr error
	out := captureStdout(t, func() { runErr = cmd.Execute() })
	assert.NoError(t, runErr)
	assert.Contains(t, out, "XS1111111111")
}
