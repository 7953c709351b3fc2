package telemetry

import (
	"context"
	"os"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/posthog/posthog-go"
)

const (
	apiKeyEnv       = "AETHERNET_POSTHOG_KEY"
	endpointEnv     = "AETHERNET_POSTHOG_ENDPOINT"
	defaultEndpoint = "https://us.i.posthog.com"
)

// PostHogClient sends each metric as a PostHog capture event.
type PostHogClient struct {
	namespace      string
	client         posthog.Client
	appEnvironment *common.AppEnvironment
}

// NewPostHogClient returns nil without error when no API key is configured.
func NewPostHogClient(environment *common.AppEnvironment, namespace string, cfg common.TelemetryConfig) (*PostHogClient, error) {
	apiKey := resolveAPIKey(cfg)
	if apiKey == "" {
		return nil, nil
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: resolveEndpoint(cfg)})
	if err != nil {
		return nil, err
	}
	return &PostHogClient{
		namespace:      namespace,
		client:         client,
		appEnvironment: environment,
	}, nil
}

func (c *PostHogClient) AddMetric(_ context.Context, metric Metric) error {
	if c == nil || c.client == nil {
		return nil
	}

	props := posthog.NewProperties().
		Set("name", metric.Name).
		Set("value", metric.Value).
		Set("run_id", c.appEnvironment.RunID)
	for k, v := range metric.Dimensions {
		props.Set(k, v)
	}

	return c.client.Enqueue(posthog.Capture{
		DistinctId: c.appEnvironment.ProjectUUID,
		Event:      c.namespace,
		Properties: props,
	})
}

func (c *PostHogClient) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	_ = c.client.Close()
	return nil
}

func resolveAPIKey(cfg common.TelemetryConfig) string {
	if key := os.Getenv(apiKeyEnv); key != "" {
		return key
	}
	if key, err := common.ExpandEnv(cfg.APIKey); err == nil {
		return key
	}
	return ""
}

func resolveEndpoint(cfg common.TelemetryConfig) string {
	if endpoint := os.Getenv(endpointEnv); endpoint != "" {
		return endpoint
	}
	if cfg.Endpoint != "" {
		return cfg.Endpoint
	}
	return defaultEndpoint
}
