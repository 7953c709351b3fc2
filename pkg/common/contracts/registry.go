package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrArtifactNotFound is returned when no compiled artifact exists for a contract name.
var ErrArtifactNotFound = errors.New("artifact not found")

// Registry finds compiled artifacts under a directory. Both a flat
// <dir>/<Name>.json layout and the Hardhat <dir>/**/<Name>.sol/<Name>.json
// layout are searched.
type Registry struct {
	dir string
}

func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir}
}

func (r *Registry) Dir() string {
	return r.dir
}

// Lookup loads the artifact for name.
func (r *Registry) Lookup(name string) (*ContractArtifact, error) {
	path, err := r.find(name)
	if err != nil {
		return nil, err
	}
	return ReadArtifact(path)
}

// Factory loads the artifact for name and turns it into a ContractFactory.
func (r *Registry) Factory(name string) (*ContractFactory, error) {
	artifact, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	if artifact.ContractName == "" {
		artifact.ContractName = name
	}
	return NewContractFactory(artifact)
}

// List returns the names of all artifacts in the registry, sorted.
func (r *Registry) List() ([]string, error) {
	seen := map[string]struct{}{}
	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isArtifactPath(r.dir, path) {
			return nil
		}
		seen[strings.TrimSuffix(d.Name(), ".json")] = struct{}{}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list artifacts in %s: %w", r.dir, err)
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Write stores artifact at <dir>/<ContractName>.json.
func (r *Registry) Write(artifact *ContractArtifact) (string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", r.dir, err)
	}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode artifact %s: %w", artifact.ContractName, err)
	}
	path := filepath.Join(r.dir, artifact.ContractName+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func (r *Registry) find(name string) (string, error) {
	flat := filepath.Join(r.dir, name+".json")
	if info, err := os.Stat(flat); err == nil && !info.IsDir() {
		return flat, nil
	}

	var found string
	errFound := errors.New("found")
	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Name() == name+".json" && filepath.Base(filepath.Dir(path)) == name+".sol" {
			found = path
			return errFound
		}
		return nil
	})
	if found != "" {
		return found, nil
	}
	if err != nil && !errors.Is(err, errFound) && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("search %s: %w", r.dir, err)
	}
	return "", fmt.Errorf("%w: %s in %s (run `aethernet build`)", ErrArtifactNotFound, name, r.dir)
}

// isArtifactPath skips Hardhat debug files and build-info.
func isArtifactPath(root, path string) bool {
	if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if strings.HasPrefix(rel, "build-info") {
		return false
	}
	dir := filepath.Dir(rel)
	return dir == "." || strings.HasSuffix(dir, ".sol")
}

func ReadArtifact(path string) (*ContractArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var artifact ContractArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &artifact, nil
}
