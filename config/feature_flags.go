package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Feature names consulted by the binaries.
const (
	FeatureAsyncNotifications = "notify.async"
	FeatureEmailNotifications = "notify.email"
	FeatureSlotCache          = "availability.cache"
	FeatureSweepLock          = "reminders.sweep_lock"
	FeatureRequestMetrics     = "http.metrics"
)

// FeatureFlags manages feature toggles. Values come from the built-in
// defaults, then the [features] table of the config file, then FEATURE_*
// environment variables.
type FeatureFlags struct {
	mu       sync.RWMutex
	features map[string]*Feature
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool
}

// LoadFeatureFlags builds the flag set. overrides usually comes from the
// config file and may be nil.
func LoadFeatureFlags(overrides map[string]bool) *FeatureFlags {
	ff := &FeatureFlags{features: make(map[string]*Feature)}
	ff.initializeDefaults()

	for name, enabled := range overrides {
		if f, ok := ff.features[name]; ok {
			f.Enabled = enabled
		}
	}
	ff.loadFromEnvironment()
	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	defaults := []Feature{
		{
			Name:        FeatureAsyncNotifications,
			Description: "Deliver notifications from a background worker pool instead of the request path",
			Enabled:     true,
		},
		{
			Name:        FeatureEmailNotifications,
			Description: "Send notifications over SMTP when a host is configured",
			Enabled:     true,
		},
		{
			Name:        FeatureSlotCache,
			Description: "Cache weekly mentor availability in Redis",
			Enabled:     true,
		},
		{
			Name:        FeatureSweepLock,
			Description: "Hold a Redis lock while a reminder sweep runs",
			Enabled:     true,
		},
		{
			Name:        FeatureRequestMetrics,
			Description: "Record per-route HTTP metrics",
			Enabled:     true,
		},
	}
	for i := range defaults {
		f := defaults[i]
		ff.features[f.Name] = &f
	}
}

// loadFromEnvironment applies FEATURE_<NAME>=true|false, where the name is
// upper-cased and dots become underscores.
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, f := range ff.features {
		val := os.Getenv(featureNameToEnvKey(name))
		if val == "" {
			continue
		}
		if b, err := strconv.ParseBool(val); err == nil {
			f.Enabled = b
		}
	}
}

func featureNameToEnvKey(name string) string {
	return "FEATURE_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(name))
}

// IsEnabled reports whether a feature is on. Unknown features are off.
func (ff *FeatureFlags) IsEnabled(name string) bool {
	if ff == nil {
		return false
	}
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	f, ok := ff.features[name]
	return ok && f.Enabled
}

// Set toggles a known feature and reports whether it exists.
func (ff *FeatureFlags) Set(name string, enabled bool) bool {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	f, ok := ff.features[name]
	if ok {
		f.Enabled = enabled
	}
	return ok
}

// All returns a snapshot of every feature sorted by name.
func (ff *FeatureFlags) All() []Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make([]Feature, 0, len(ff.features))
	for _, f := range ff.features {
		result = append(result, *f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
