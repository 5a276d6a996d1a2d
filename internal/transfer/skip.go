package transfer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SkipPolicy excludes folders (and their whole subtrees) from migration by
// name. The list is loaded once at startup and cached for process lifetime.
type SkipPolicy struct {
	names map[string]struct{}
}

type strategyFile struct {
	SkipFolders []string `yaml:"skip_folders"`
}

// LoadSkipPolicy reads the strategy file. A missing file yields an empty
// policy: nothing is skipped.
func LoadSkipPolicy(path string) (*SkipPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSkipPolicy(nil), nil
		}
		return nil, fmt.Errorf("failed to read strategy file: %w", err)
	}

	var strategy strategyFile
	if err := yaml.Unmarshal(data, &strategy); err != nil {
		return nil, fmt.Errorf("failed to parse strategy file %s: %w", path, err)
	}

	return NewSkipPolicy(strategy.SkipFolders), nil
}

// NewSkipPolicy builds a policy from an explicit name list
func NewSkipPolicy(names []string) *SkipPolicy {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return &SkipPolicy{names: set}
}

// ShouldSkip reports whether a folder name is excluded from migration
func (p *SkipPolicy) ShouldSkip(folderName string) bool {
	_, ok := p.names[folderName]
	return ok
}

// Len returns the number of excluded names
func (p *SkipPolicy) Len() int {
	return len(p.names)
}
