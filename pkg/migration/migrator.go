package migration

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/iface"
	"gopkg.in/yaml.v3"
)

// ErrAlreadyUpToDate is returned when the file is already at the target version.
var ErrAlreadyUpToDate = errors.New("already up to date")

// PatchCondition decides whether a user node may be replaced.
type PatchCondition interface {
	ShouldApply(userNode, oldNode *yaml.Node) bool
}

// Always patches unconditionally.
type Always struct{}

// IfUnchanged patches only when the user kept the old default.
type IfUnchanged struct{}

// IfMissing only inserts nodes the user does not have yet.
type IfMissing struct{}

func (Always) ShouldApply(_, _ *yaml.Node) bool { return true }

func (IfMissing) ShouldApply(_, _ *yaml.Node) bool { return false }

func (IfUnchanged) ShouldApply(userNode, oldNode *yaml.Node) bool {
	ub, _ := yaml.Marshal(userNode)
	ob, _ := yaml.Marshal(oldNode)
	return bytes.Equal(ub, ob)
}

// PatchRule patches the node at Path with the node at the same path in the new defaults.
type PatchRule struct {
	Path      []string
	Condition PatchCondition
	// Transform, when set, rewrites a copy of the new default before it is written
	Transform func(newNode *yaml.Node) *yaml.Node
	// Remove deletes the user node instead of replacing it
	Remove bool
}

// MigrationStep upgrades a config from one version to the next.
type MigrationStep struct {
	From    string
	To      string
	Apply   func(user, oldDef, newDef *yaml.Node) (*yaml.Node, error)
	OldYAML []byte
	NewYAML []byte
}

// PatchEngine applies Rules to User, keeping order and comments.
type PatchEngine struct {
	Old   *yaml.Node
	New   *yaml.Node
	User  *yaml.Node
	Rules []PatchRule
}

func (e *PatchEngine) Apply() error {
	for _, rule := range e.Rules {
		if len(rule.Path) == 0 {
			return errors.New("patch rule with empty path")
		}
		userNode := ResolveNode(e.User, rule.Path)
		newNode := ResolveNode(e.New, rule.Path)

		if userNode == nil {
			if rule.Remove || newNode == nil {
				continue
			}
			parent := ResolveNode(e.User, rule.Path[:len(rule.Path)-1])
			if parent == nil || parent.Kind != yaml.MappingNode {
				continue
			}
			common.SetMappingValue(parent, rule.Path[len(rule.Path)-1], e.replacement(rule, newNode))
			continue
		}

		if !rule.Condition.ShouldApply(userNode, ResolveNode(e.Old, rule.Path)) {
			continue
		}
		if rule.Remove {
			parent := ResolveNode(e.User, rule.Path[:len(rule.Path)-1])
			removeChild(parent, rule.Path[len(rule.Path)-1])
			continue
		}
		if newNode == nil {
			continue
		}
		*userNode = *e.replacement(rule, newNode)
	}
	return nil
}

func (e *PatchEngine) replacement(rule PatchRule, newNode *yaml.Node) *yaml.Node {
	repl := CloneNode(newNode)
	if rule.Transform != nil {
		repl = rule.Transform(repl)
	}
	return repl
}

// MigrateToLatest reads the version of userNode and runs the chain up to latestVersion.
func MigrateToLatest(logger iface.Logger, userNode *yaml.Node, latestVersion string, chain []MigrationStep) (*yaml.Node, error) {
	verNode := ResolveNode(userNode, []string{"version"})
	if verNode == nil {
		return nil, errors.New("no version field")
	}
	from := verNode.Value
	if from == latestVersion {
		return nil, ErrAlreadyUpToDate
	}
	if versionLessThan(latestVersion, from) {
		return nil, fmt.Errorf("version %s is newer than this binary supports (%s)", from, latestVersion)
	}

	logger.Info("Migrating config v%s -> v%s", from, latestVersion)
	return MigrateNode(userNode, from, latestVersion, chain)
}

// MigrateNode runs every step between from and to on user.
func MigrateNode(user *yaml.Node, from, to string, chain []MigrationStep) (*yaml.Node, error) {
	if from == to {
		return user, ErrAlreadyUpToDate
	}
	current := from
	for _, step := range chain {
		if step.From != current {
			continue
		}
		if versionLessThan(to, step.To) {
			break
		}

		oldDef := &yaml.Node{}
		if err := yaml.Unmarshal(step.OldYAML, oldDef); err != nil {
			return nil, fmt.Errorf("failed to unmarshal old default for %s: %w", step.From, err)
		}
		newDef := &yaml.Node{}
		if err := yaml.Unmarshal(step.NewYAML, newDef); err != nil {
			return nil, fmt.Errorf("failed to unmarshal new default for %s: %w", step.To, err)
		}

		var err error
		user, err = step.Apply(user, oldDef, newDef)
		if err != nil {
			return nil, fmt.Errorf("migration %s->%s failed: %w", step.From, step.To, err)
		}
		current = step.To
	}
	if current != to {
		return nil, fmt.Errorf("incomplete migration: ended at %s, target %s", current, to)
	}
	return user, nil
}

// ResolveNode follows path through mappings (by key) and sequences (by index).
func ResolveNode(root *yaml.Node, path []string) *yaml.Node {
	if root == nil {
		return nil
	}
	curr := root
	if curr.Kind == yaml.DocumentNode && len(curr.Content) > 0 {
		curr = curr.Content[0]
	}
	for _, p := range path {
		switch curr.Kind {
		case yaml.MappingNode:
			curr = common.GetChildByKey(curr, p)
		case yaml.SequenceNode:
			idx, err := strconv.Atoi(p)
			if err != nil || idx < 0 || idx >= len(curr.Content) {
				return nil
			}
			curr = curr.Content[idx]
		default:
			return nil
		}
		if curr == nil {
			return nil
		}
	}
	return curr
}

// MoveNode detaches the node at from and attaches it at to, creating
// intermediate mappings. It returns false when from does not exist.
func MoveNode(root *yaml.Node, from, to []string) bool {
	if len(from) == 0 || len(to) == 0 {
		return false
	}
	parent := ResolveNode(root, from[:len(from)-1])
	node := common.DeleteMappingKey(parent, from[len(from)-1])
	if node == nil {
		return false
	}

	dst := ResolveNode(root, nil)
	for _, seg := range to[:len(to)-1] {
		next := common.GetChildByKey(dst, seg)
		if next == nil {
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			common.SetMappingValue(dst, seg, next)
		}
		dst = next
	}
	common.SetMappingValue(dst, to[len(to)-1], node)
	return true
}

// SetVersion rewrites the top-level version scalar.
func SetVersion(root *yaml.Node, version string) {
	if v := ResolveNode(root, []string{"version"}); v != nil {
		v.Value = version
	}
}

// CloneNode deep-copies n, including comments and anchors.
func CloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Content = make([]*yaml.Node, len(n.Content))
	for i, ch := range n.Content {
		c.Content[i] = CloneNode(ch)
	}
	return &c
}

func removeChild(parent *yaml.Node, key string) {
	if parent == nil {
		return
	}
	switch parent.Kind {
	case yaml.MappingNode:
		common.DeleteMappingKey(parent, key)
	case yaml.SequenceNode:
		idx, err := strconv.Atoi(key)
		if err == nil && idx >= 0 && idx < len(parent.Content) {
			parent.Content = append(parent.Content[:idx], parent.Content[idx+1:]...)
		}
	}
}

func versionLessThan(v1, v2 string) bool {
	s1 := strings.Split(v1, ".")
	s2 := strings.Split(v2, ".")
	for i := 0; i < len(s1) && i < len(s2); i++ {
		n1, _ := strconv.Atoi(s1[i])
		n2, _ := strconv.Atoi(s2[i])
		if n1 != n2 {
			return n1 < n2
		}
	}
	return len(s1) < len(s2)
}
