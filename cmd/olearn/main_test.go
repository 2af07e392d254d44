package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boristopalov/olearn/pkg/adversary/oblivious"
)

func noEnv(string) (string, bool) { return "", false }

func execute(t *testing.T, lookupEnv func(string) (string, bool), args ...string) ([]byte, error) {
	t.Helper()
	cmd := newRootCmd(lookupEnv)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.Bytes(), err
}

func decodeLines[T any](t *testing.T, data []byte) []T {
	t.Helper()
	var records []T
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var r T
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		records = append(records, r)
	}
	require.NoError(t, sc.Err())
	return records
}

func TestRevealCommand(t *testing.T) {
	out, err := execute(t, noEnv, "reveal", "--dim", "2", "--lb", "-5", "--ub", "5", "--seed", "42", "--rounds", "3")
	require.NoError(t, err)

	records := decodeLines[revealRecord](t, out)
	require.Len(t, records, 3)

	want := oblivious.NewLinearAdversary(2).WithRange(-5, 5).WithSeed(42)
	for i, r := range records {
		assert.Equal(t, i, r.Round)
		assert.Equal(t, records[0].RunID, r.RunID)
		assert.Equal(t, want.Reveal().Coefficients(), r.Coefficients)
	}
	assert.NotEmpty(t, records[0].RunID)
}

func TestBanditCommand(t *testing.T) {
	out, err := execute(t, noEnv, "bandit", "--dim", "3", "--point", "1,1,1", "--rounds", "2")
	require.NoError(t, err)

	records := decodeLines[banditRecord](t, out)
	require.Len(t, records, 2)

	want := oblivious.NewLinearAdversary(3)
	for _, r := range records {
		assert.InDelta(t, want.Reveal().Evaluate([]float64{1, 1, 1}), r.Loss, 1e-12)
	}
}

func TestBanditCommandRejectsWrongPoint(t *testing.T) {
	_, err := execute(t, noEnv, "bandit", "--dim", "3", "--point", "1,1")
	require.Error(t, err)
}

func TestBanditCommandRequiresPoint(t *testing.T) {
	_, err := execute(t, noEnv, "bandit", "--dim", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "point")
}

func TestConfigLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adversary.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dim: 4\nseed: 1\nrounds: 2\n"), 0o600))

	env := func(k string) (string, bool) {
		if k == "OLEARN_SEED" {
			return "9", true
		}
		return "", false
	}

	// file sets dim and rounds, env overrides the seed, the flag overrides rounds
	out, err := execute(t, env, "reveal", "--config", path, "--rounds", "1")
	require.NoError(t, err)

	records := decodeLines[revealRecord](t, out)
	require.Len(t, records, 1)
	assert.Equal(t, oblivious.NewLinearAdversary(4).WithSeed(9).Reveal().Coefficients(), records[0].Coefficients)
}

func TestInvalidRangeFlag(t *testing.T) {
	_, err := execute(t, noEnv, "reveal", "--lb", "1", "--ub", "0")
	require.Error(t, err)
}
