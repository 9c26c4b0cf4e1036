//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markkurossi/rep3/compiler/utils"
)

const program = "testdata/mean.rep3"

var inputArgs = []string{
	"-i", "0=1.5,-1",
	"-i", "1=2.5,-3",
	"-i", "2=1,-2",
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestDump(t *testing.T) {
	code, out, errOut := run(t, "dump", program)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "input index = 0 : tensor<2x[15]a64>")
	assert.Contains(t, out, "input index = 2 : tensor<2x[0]p64>")
	assert.Contains(t, out, "output")
}

func TestDumpAST(t *testing.T) {
	code, out, errOut := run(t, "dump", "--ast", program)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "func main(")
	assert.NotContains(t, out, "input index = 0")
}

func TestLower(t *testing.T) {
	for _, protocol := range []string{"generic", "aby3"} {
		code, out, errOut := run(t, "lower", "--protocol", protocol, program)
		require.Equal(t, 0, code, errOut)
		assert.Contains(t, out, "// %", protocol)
	}
}

func TestStats(t *testing.T) {
	code, out, errOut := run(t, "stats", program)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "rounds:")
}

func outputs(t *testing.T, out string) map[int]string {
	t.Helper()
	result := make(map[int]string)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		rest, ok := strings.CutPrefix(line, "output ")
		require.True(t, ok, line)
		idx := strings.Index(rest, ": ")
		require.Positive(t, idx, line)
		n, err := strconv.Atoi(rest[:idx])
		require.NoError(t, err)
		result[n] = rest[idx+2:]
	}
	return result
}

func checkMean(t *testing.T, value string) {
	t.Helper()
	fields := strings.Fields(strings.Trim(value, "[]"))
	require.Len(t, fields, 2)
	for i, expected := range []float64{2, -2} {
		v, err := strconv.ParseFloat(fields[i], 64)
		require.NoError(t, err)
		assert.InDelta(t, expected, v, 1e-3)
	}
}

func TestRun(t *testing.T) {
	for _, protocol := range []string{"generic", "aby3"} {
		args := append([]string{"run", "--protocol", protocol, program},
			inputArgs...)
		code, out, errOut := run(t, args...)
		require.Equal(t, 0, code, errOut)

		result := outputs(t, out)
		require.Len(t, result, 3)
		checkMean(t, result[0])
		assert.Equal(t, "[2.5 -1]", result[1])
		assert.Equal(t, "[3 -6]", result[2])
	}
}

func TestRunConfig(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "rep3.yaml")
	require.NoError(t, os.WriteFile(config, []byte(`protocol: aby3
randomness: chacha20
key: "`+strings.Repeat("5a", 32)+`"
verbose: true
`), 0o644))

	args := append([]string{"run", "--config", config, program}, inputArgs...)
	code, out, errOut := run(t, args...)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "[3 -6]", outputs(t, out)[2])
	assert.Contains(t, errOut, "Total")
}

func TestRunInputErrors(t *testing.T) {
	tests := []struct {
		inputs   []string
		expected string
	}{
		{
			inputs:   []string{"-i", "0=1,2", "-i", "1=1,2"},
			expected: "input slot 2 not set",
		},
		{
			inputs:   []string{"-i", "0=1,2", "-i", "0=3,4"},
			expected: "input slot 0 set more than once",
		},
		{
			inputs:   []string{"-i", "7=1,2"},
			expected: "unknown input slot 7",
		},
		{
			inputs:   []string{"-i", "0=1"},
			expected: "expected 2 values, got 1",
		},
		{
			inputs:   []string{"-i", "0"},
			expected: "expected SLOT=VALUES",
		},
		{
			inputs:   []string{"-i", "0=1,2", "-i", "1=1,2", "-i", "2=x,2"},
			expected: "input slot 2: ",
		},
	}
	for _, test := range tests {
		args := append([]string{"run", program}, test.inputs...)
		code, _, errOut := run(t, args...)
		assert.Equal(t, exitError, code, test.expected)
		assert.Contains(t, errOut, test.expected)
	}
}

func TestErrors(t *testing.T) {
	code, _, errOut := run(t, "--protocol", "gmw", "dump", program)
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "rep3: ")

	code, out, errOut := run(t, "--entry", "average", "dump", program)
	assert.Equal(t, exitError, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "function average not defined")
	assert.NotContains(t, errOut, "rep3: ")

	code, _, _ = run(t, "dump", filepath.Join(t.TempDir(), "missing.rep3"))
	assert.Equal(t, exitError, code)

	bad := filepath.Join(t.TempDir(), "bad.rep3")
	require.NoError(t, os.WriteFile(bad, []byte(`func main(a secret int[2, 3]) {
    return reshape(a, [-2, -3])
}
`), 0o644))
	code, _, errOut = run(t, "dump", bad)
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "reshape: invalid shape [-2, -3]")
	assert.NotContains(t, errOut, "internal compiler error")
}

func TestStatus(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, 0, status(nil, &stderr))

	err := &utils.InternalError{Err: errors.New("bad handle")}
	assert.Equal(t, exitInternal, status(errors.Wrap(err, "lower"), &stderr))
	assert.Contains(t, stderr.String(), "internal compiler error: bad handle")
}
