package resultsink

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-resultsink/sink"
	"github.com/ethereum-optimism/infra/op-resultsink/types"
)

func disableSinkEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{sink.EnvContextFile, sink.EnvAddress, sink.EnvAuthToken} {
		t.Setenv(env, "")
	}
}

func writeStream(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0644))
	return path
}

func newTestConfig(t *testing.T, input string) *Config {
	t.Helper()
	return &Config{
		Input: input,
		Log:   log.New(),
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(context.Background(), nil, "v0.1.0", func(error) {})
	require.Error(t, err)
}

func TestStartPassingRun(t *testing.T) {
	disableSinkEnv(t)
	input := writeStream(t,
		`{"Time":"2025-06-01T12:00:00Z","Action":"run","Package":"pkg","Test":"TestA"}`+"\n"+
			`{"Time":"2025-06-01T12:00:00.5Z","Action":"pass","Package":"pkg","Test":"TestA","Elapsed":0.5}`+"\n")

	shutdownCh := make(chan error, 1)
	svc, err := New(context.Background(), newTestConfig(t, input), "v0.1.0", func(err error) {
		shutdownCh <- err
	})
	require.NoError(t, err)

	require.NoError(t, svc.Start(context.Background()))

	select {
	case err := <-shutdownCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("shutdown callback was not invoked")
	}

	result := svc.Result()
	require.NotNil(t, result)
	assert.Equal(t, types.OutcomePass, result.Status)
	assert.Equal(t, 1, result.Stats.Total)
	assert.Equal(t, 1, result.Stats.Passed)
}

func TestStartFailingRun(t *testing.T) {
	disableSinkEnv(t)
	input := writeStream(t,
		`{"Time":"2025-06-01T12:00:00Z","Action":"run","Package":"pkg","Test":"TestBroken"}`+"\n"+
			`{"Time":"2025-06-01T12:00:00.1Z","Action":"fail","Package":"pkg","Test":"TestBroken","Elapsed":0.1}`+"\n")

	svc, err := New(context.Background(), newTestConfig(t, input), "v0.1.0", func(error) {})
	require.NoError(t, err)

	err = svc.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsTestFailureError(err), "failing tests exit with a test failure, not a runtime error")

	result := svc.Result()
	require.NotNil(t, result)
	assert.Equal(t, types.OutcomeFail, result.Status)
	assert.Equal(t, 1, result.Stats.Failed)
}

func TestStartMissingInput(t *testing.T) {
	disableSinkEnv(t)
	svc, err := New(context.Background(), newTestConfig(t, "/nonexistent/events.json"), "v0.1.0", func(error) {})
	require.NoError(t, err)

	err = svc.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
}

func TestStartContractViolation(t *testing.T) {
	disableSinkEnv(t)
	input := writeStream(t, `{"Action":"explode","Package":"pkg","Test":"TestA"}`+"\n")

	svc, err := New(context.Background(), newTestConfig(t, input), "v0.1.0", func(error) {})
	require.NoError(t, err)

	err = svc.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err), "an unrecognized outcome is a contract violation")
}

func TestStartBrokenSinkContext(t *testing.T) {
	disableSinkEnv(t)
	t.Setenv(sink.EnvContextFile, "/nonexistent/context.json")
	input := writeStream(t, "")

	svc, err := New(context.Background(), newTestConfig(t, input), "v0.1.0", func(error) {})
	require.NoError(t, err)

	err = svc.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
}

func TestStopAndStopped(t *testing.T) {
	disableSinkEnv(t)
	input := writeStream(t, "")

	svc, err := New(context.Background(), newTestConfig(t, input), "v0.1.0", func(error) {})
	require.NoError(t, err)

	require.NoError(t, svc.Start(context.Background()))
	assert.False(t, svc.Stopped())
	require.NoError(t, svc.Stop(context.Background()))
	assert.True(t, svc.Stopped())

	// Stopping twice is harmless.
	require.NoError(t, svc.Stop(context.Background()))
}

func TestStartWithTags(t *testing.T) {
	disableSinkEnv(t)
	input := writeStream(t, "")
	tagsPath := filepath.Join(t.TempDir(), "tags.yaml")
	require.NoError(t, os.WriteFile(tagsPath, []byte("tags:\n  builder: ci\n"), 0644))

	cfg := newTestConfig(t, input)
	cfg.TagsConfig = tagsPath

	svc, err := New(context.Background(), cfg, "v0.1.0", func(error) {})
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
}

func TestStartMalformedTags(t *testing.T) {
	disableSinkEnv(t)
	input := writeStream(t, "")
	tagsPath := filepath.Join(t.TempDir(), "tags.yaml")
	require.NoError(t, os.WriteFile(tagsPath, []byte("tags: [broken"), 0644))

	cfg := newTestConfig(t, input)
	cfg.TagsConfig = tagsPath

	svc, err := New(context.Background(), cfg, "v0.1.0", func(error) {})
	require.NoError(t, err)

	err = svc.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
}
