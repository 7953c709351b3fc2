package config

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/iface"
	"github.com/AetherQuanta/aethernet-cli/pkg/telemetry"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ConfigChange represents a change in a configuration field
type ConfigChange struct {
	Path     string
	OldValue interface{}
	NewValue interface{}
}

// diffConfigs returns adds, removes and changes under the config block.
// The version must not change.
func diffConfigs(originalYAML, updatedYAML []byte) ([]ConfigChange, error) {
	original, err := common.YamlToMap(originalYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to convert yaml to map: %w", err)
	}
	updated, err := common.YamlToMap(updatedYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to convert yaml to map: %w", err)
	}

	if ov, nv := fmt.Sprint(original["version"]), fmt.Sprint(updated["version"]); ov != nv {
		return nil, fmt.Errorf("version must not be altered (was %q, now %q)", ov, nv)
	}

	changes := diffValues("", original["config"], updated["config"])
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

// diffValues recurses into maps and slices and compares everything else with DeepEqual.
func diffValues(path string, oldV, newV interface{}) []ConfigChange {
	if oldV == nil && newV == nil {
		return nil
	}
	if oldV == nil || newV == nil {
		return []ConfigChange{{Path: path, OldValue: oldV, NewValue: newV}}
	}

	om, oldIsMap := oldV.(map[string]interface{})
	nm, newIsMap := newV.(map[string]interface{})
	if oldIsMap && newIsMap {
		var out []ConfigChange
		for k, ov := range om {
			out = append(out, diffValues(join(path, k), ov, nm[k])...)
		}
		for k, nv := range nm {
			if _, ok := om[k]; !ok {
				out = append(out, ConfigChange{Path: join(path, k), NewValue: nv})
			}
		}
		return out
	}

	oldS, oldIsSlice := oldV.([]interface{})
	newS, newIsSlice := newV.([]interface{})
	if oldIsSlice && newIsSlice {
		var out []ConfigChange
		for i := 0; i < len(oldS) || i < len(newS); i++ {
			var ov, nv interface{}
			if i < len(oldS) {
				ov = oldS[i]
			}
			if i < len(newS) {
				nv = newS[i]
			}
			out = append(out, diffValues(fmt.Sprintf("%s[%d]", path, i), ov, nv)...)
		}
		return out
	}

	if !reflect.DeepEqual(oldV, newV) {
		return []ConfigChange{{Path: path, OldValue: oldV, NewValue: newV}}
	}
	return nil
}

func join(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}

func section(path string) string {
	return strings.SplitN(strings.SplitN(path, ".", 2)[0], "[", 2)[0]
}

// logConfigChanges logs the changes grouped by top-level section.
func logConfigChanges(changes []ConfigChange, logger iface.Logger) {
	if len(changes) == 0 {
		logger.Info("No changes detected in configuration.")
		return
	}

	var order []string
	sections := make(map[string][]ConfigChange)
	for _, change := range changes {
		s := section(change.Path)
		if _, seen := sections[s]; !seen {
			order = append(order, s)
		}
		sections[s] = append(sections[s], change)
	}

	titleCaser := cases.Title(language.English)
	for _, s := range order {
		logger.Info("%s changes:", titleCaser.String(strings.ReplaceAll(s, "_", " ")))
		for _, change := range sections[s] {
			switch {
			case change.OldValue == nil:
				logger.Info("  - %s added (value: %v)", change.Path, redact(change.Path, change.NewValue))
			case change.NewValue == nil:
				logger.Info("  - %s removed (was: %v)", change.Path, redact(change.Path, change.OldValue))
			default:
				logger.Info("  - %s changed from '%v' to '%v'", change.Path, redact(change.Path, change.OldValue), redact(change.Path, change.NewValue))
			}
		}
	}
}

// redact hides account entries and telemetry keys; URLs are shown only as references.
func redact(path string, v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if strings.Contains(path, ".accounts") || strings.HasPrefix(path, "telemetry.") {
		if common.IsEnvRef(s) || strings.HasPrefix(s, common.KeystorePrefix) {
			return s
		}
		return "<redacted>"
	}
	return s
}

const maxChangesToInclude = 20

// sendConfigChangeTelemetry records the changed paths, never their values.
func sendConfigChangeTelemetry(ctx context.Context, changes []ConfigChange, logger iface.Logger) {
	if len(changes) == 0 {
		return
	}
	metrics, err := telemetry.MetricsFromContext(ctx)
	if err != nil {
		logger.Debug("Skipping config change telemetry: %v", err)
		return
	}

	dims := make(map[string]string)
	counts := make(map[string]int)
	for i, change := range changes {
		counts[section(change.Path)]++
		if i < maxChangesToInclude {
			dims[fmt.Sprintf("changed_%d_path", i)] = change.Path
		}
	}
	for s, n := range counts {
		dims[s+"_changes"] = fmt.Sprintf("%d", n)
	}
	metrics.AddMetricWithDimensions("ConfigChangeCount", float64(len(changes)), dims)
}
