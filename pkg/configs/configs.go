// Package configs loads the slotswap configuration file.
//
// One YAML file describes the managed application (its two slots), the
// health probing parameters, the rollout wait budget, the shared retry
// policy and the optional daemon/notifier settings.
package configs

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/slotswap/slotswap/pkg/utils/retry"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/validation"
)

// Duration is a time.Duration reading from YAML in time.ParseDuration form
// ("500ms", "5s", "3m").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

type Config struct {
	App      AppConfig      `yaml:"app"`
	Workload WorkloadConfig `yaml:"workload"`
	Probe    ProbeConfig    `yaml:"probe"`
	Rollout  RolloutConfig  `yaml:"rollout"`
	Retry    RetryConfig    `yaml:"retry"`
	Notify   NotifyConfig   `yaml:"notify,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
}

type AppConfig struct {
	// Name is the stable service name; slot objects are "<name>-blue"
	// and "<name>-green".
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace"`
}

type WorkloadConfig struct {
	// Container is the name of the serving container in the slot pods.
	Container string `yaml:"container"`

	// Port the container listens on. The slot services route to it and
	// the readiness probe of new pods GETs the health path on it.
	Port int32 `yaml:"port"`

	// Replicas each slot runs while receiving (or about to receive) traffic.
	Replicas int32 `yaml:"replicas"`

	HealthPath string `yaml:"health-path"`
}

type ProbeConfig struct {
	// SlotURLTemplate is the slot-scoped health URL with a literal "{slot}"
	// placeholder, e.g. "http://signs-api-{slot}.prod.svc:8000/health".
	SlotURLTemplate string `yaml:"slot-url-template"`

	// PublicURL is the health URL behind the stable (active-routed) service.
	PublicURL string `yaml:"public-url"`

	ExpectedStatus int      `yaml:"expected-status"`
	Attempts       int      `yaml:"attempts"`
	Interval       Duration `yaml:"interval"`
	Timeout        Duration `yaml:"timeout"`
}

type RolloutConfig struct {
	Timeout      Duration `yaml:"timeout"`
	PollInterval Duration `yaml:"poll-interval"`
}

type RetryConfig struct {
	MaxAttempts int      `yaml:"max-attempts"`
	BaseDelay   Duration `yaml:"base-delay"`
	MaxDelay    Duration `yaml:"max-delay"`
}

// Policy builds the bounded retry policy shared by cluster and registry
// mutations.
func (r RetryConfig) Policy() retry.Policy {
	return retry.Policy{
		MaxAttempts: r.MaxAttempts,
		BaseDelay:   r.BaseDelay.Duration(),
		MaxDelay:    r.MaxDelay.Duration(),
	}
}

type NotifyConfig struct {
	Webhooks []*url.URL
}

func (n *NotifyConfig) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Webhooks []string `yaml:"webhooks"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	n.Webhooks = make([]*url.URL, len(raw.Webhooks))
	for i, u := range raw.Webhooks {
		parsed, err := url.Parse(u)
		if err != nil {
			return err
		}
		n.Webhooks[i] = parsed
	}
	return nil
}

type ServerConfig struct {
	Port     int32  `yaml:"port"`
	LogLevel string `yaml:"loglevel"`

	// APIKey, when set, is required as "Authorization: Bearer <key>"
	// on every /api route of slotswapd.
	APIKey string `yaml:"api-key"`
}

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := new(Config)
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Namespace == "" {
		c.App.Namespace = "default"
	}
	if c.Workload.Container == "" {
		c.Workload.Container = c.App.Name
	}
	if c.Workload.Port == 0 {
		c.Workload.Port = 8000
	}
	if c.Workload.Replicas == 0 {
		c.Workload.Replicas = 2
	}
	if c.Workload.HealthPath == "" {
		c.Workload.HealthPath = "/health"
	}
	if c.Probe.ExpectedStatus == 0 {
		c.Probe.ExpectedStatus = 200
	}
	if c.Probe.Attempts == 0 {
		c.Probe.Attempts = 5
	}
	if c.Probe.Interval == 0 {
		c.Probe.Interval = Duration(5 * time.Second)
	}
	if c.Probe.Timeout == 0 {
		c.Probe.Timeout = Duration(3 * time.Second)
	}
	if c.Rollout.Timeout == 0 {
		c.Rollout.Timeout = Duration(5 * time.Minute)
	}
	if c.Rollout.PollInterval == 0 {
		c.Rollout.PollInterval = Duration(5 * time.Second)
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = Duration(500 * time.Millisecond)
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = Duration(5 * time.Second)
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8580
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if msgs := validation.IsDNS1123Label(c.App.Name); 0 < len(msgs) {
		return fmt.Errorf("app.name %q: %s", c.App.Name, msgs[0])
	}
	if msgs := validation.IsDNS1123Label(c.App.Namespace); 0 < len(msgs) {
		return fmt.Errorf("app.namespace %q: %s", c.App.Namespace, msgs[0])
	}
	if c.Workload.Port < 1 || 65535 < c.Workload.Port {
		return fmt.Errorf("workload.port %d: out of range", c.Workload.Port)
	}
	if c.Workload.Replicas < 1 {
		return fmt.Errorf("workload.replicas %d: must be at least 1", c.Workload.Replicas)
	}
	if !strings.HasPrefix(c.Workload.HealthPath, "/") {
		return fmt.Errorf("workload.health-path %q: must start with /", c.Workload.HealthPath)
	}
	if c.Probe.SlotURLTemplate == "" {
		return fmt.Errorf("probe.slot-url-template is required")
	}
	if !strings.Contains(c.Probe.SlotURLTemplate, "{slot}") {
		return fmt.Errorf("probe.slot-url-template %q: must contain {slot}", c.Probe.SlotURLTemplate)
	}
	if c.Probe.PublicURL == "" {
		return fmt.Errorf("probe.public-url is required")
	}
	if c.Probe.ExpectedStatus < 100 || 599 < c.Probe.ExpectedStatus {
		return fmt.Errorf("probe.expected-status %d: not an HTTP status", c.Probe.ExpectedStatus)
	}
	if c.Probe.Attempts < 1 {
		return fmt.Errorf("probe.attempts %d: must be at least 1", c.Probe.Attempts)
	}
	if c.Rollout.Timeout <= 0 {
		return fmt.Errorf("rollout.timeout must be positive")
	}
	if c.Rollout.PollInterval <= 0 {
		return fmt.Errorf("rollout.poll-interval must be positive")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max-attempts %d: must be at least 1", c.Retry.MaxAttempts)
	}
	return nil
}

// SlotHealthURL resolves the slot-scoped health URL for the named slot.
func (c *Config) SlotHealthURL(slot string) string {
	return strings.ReplaceAll(c.Probe.SlotURLTemplate, "{slot}", slot)
}
