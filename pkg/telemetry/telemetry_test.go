package telemetry

import (
	"context"
	"testing"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopClient(t *testing.T) {
	client := NewNoopClient()
	assert.True(t, IsNoopClient(client))

	assert.NoError(t, client.AddMetric(context.Background(), Metric{
		Name:       "Count",
		Value:      1,
		Dimensions: map[string]string{"command": "aethernet deploy"},
	}))
	assert.NoError(t, client.Close())
}

func TestClientContext(t *testing.T) {
	client := NewNoopClient()
	ctx := ContextWithClient(context.Background(), client)

	retrieved, ok := ClientFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, client, retrieved)

	_, ok = ClientFromContext(context.Background())
	assert.False(t, ok)
}

func TestMetricsContext(t *testing.T) {
	_, err := MetricsFromContext(context.Background())
	assert.Error(t, err)

	m := NewMetricsContext()
	ctx := WithMetricsContext(context.Background(), m)
	got, err := MetricsFromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, m, got)

	dims := map[string]string{"error": "boom"}
	m.AddMetric("Count", 1)
	m.AddMetricWithDimensions("Failure", 1, dims)
	dims["error"] = "changed"

	require.Len(t, m.Metrics, 2)
	assert.Empty(t, m.Metrics[0].Dimensions)
	assert.Equal(t, "boom", m.Metrics[1].Dimensions["error"])
	assert.GreaterOrEqual(t, m.Elapsed().Nanoseconds(), int64(0))
}

func TestNewPostHogClient_NoKey(t *testing.T) {
	t.Setenv(apiKeyEnv, "")
	env := common.NewAppEnvironment("linux", "amd64", "project-uuid")

	client, err := NewPostHogClient(env, "AetherNet", common.TelemetryConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)

	// A nil client is safe to use.
	assert.NoError(t, client.AddMetric(context.Background(), Metric{Name: "Count"}))
	assert.NoError(t, client.Close())
}

func TestResolveEndpoint(t *testing.T) {
	t.Setenv(endpointEnv, "")
	assert.Equal(t, defaultEndpoint, resolveEndpoint(common.TelemetryConfig{}))
	assert.Equal(t, "https://eu.i.posthog.com", resolveEndpoint(common.TelemetryConfig{Endpoint: "https://eu.i.posthog.com"}))

	t.Setenv(endpointEnv, "http://localhost:8000")
	assert.Equal(t, "http://localhost:8000", resolveEndpoint(common.TelemetryConfig{Endpoint: "https://eu.i.posthog.com"}))
}

func TestAppEnvironment(t *testing.T) {
	env := common.NewAppEnvironment("darwin", "arm64", "test-uuid")
	assert.NotEmpty(t, env.CLIVersion)
	assert.Equal(t, "darwin", env.OS)
	assert.Equal(t, "arm64", env.Arch)
	assert.Equal(t, "test-uuid", env.ProjectUUID)
	assert.NotEmpty(t, env.RunID)
}
