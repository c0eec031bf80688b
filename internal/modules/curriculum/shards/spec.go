package shards

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
)

// Spec names one remote shard and where to read it from. Location is a URL
// with an http(s), gs or s3 scheme. ItemsPath is an optional JSONPath that
// selects the item array when the document root is not the array itself.
type Spec struct {
	Name      string `yaml:"name" json:"name"`
	Location  string `yaml:"location" json:"location"`
	Version   string `yaml:"version,omitempty" json:"version,omitempty"`
	ItemsPath string `yaml:"items_path,omitempty" json:"items_path,omitempty"`
}

var defaultShardNames = []string{
	curriculum.ShardLearningAreas,
	curriculum.ShardAchievementStandards,
	curriculum.ShardCrossCurriculumPriorities,
	curriculum.ShardGeneralCapabilities,
}

// DefaultSpecs lays the four standard shards out as <base>/<name>.json.
func DefaultSpecs(baseURL string) []Spec {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	out := make([]Spec, 0, len(defaultShardNames))
	for _, name := range defaultShardNames {
		out = append(out, Spec{Name: name, Location: base + "/" + name + ".json"})
	}
	return out
}

type manifest struct {
	BaseURL string `yaml:"base_url"`
	Shards  []Spec `yaml:"shards"`
}

// LoadManifest reads a YAML shard manifest. Relative locations resolve
// against base_url; a shard with no location defaults to <name>.json.
func LoadManifest(path string) ([]Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shard manifest: %w", err)
	}
	return ParseManifest(raw)
}

func ParseManifest(raw []byte) ([]Spec, error) {
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse shard manifest: %w", err)
	}
	if len(m.Shards) == 0 {
		return nil, fmt.Errorf("shard manifest lists no shards")
	}

	var base *url.URL
	if b := strings.TrimSpace(m.BaseURL); b != "" {
		u, err := url.Parse(strings.TrimRight(b, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid base_url %q: %w", m.BaseURL, err)
		}
		base = u
	}

	seen := make(map[string]bool, len(m.Shards))
	out := make([]Spec, 0, len(m.Shards))
	for i, s := range m.Shards {
		s.Name = strings.TrimSpace(s.Name)
		s.Location = strings.TrimSpace(s.Location)
		if s.Name == "" {
			return nil, fmt.Errorf("shard %d: name is required", i)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("shard %q listed twice", s.Name)
		}
		seen[s.Name] = true

		if s.Location == "" {
			s.Location = s.Name + ".json"
		}
		loc, err := url.Parse(s.Location)
		if err != nil {
			return nil, fmt.Errorf("shard %q: invalid location: %w", s.Name, err)
		}
		if !loc.IsAbs() {
			if base == nil {
				return nil, fmt.Errorf("shard %q: relative location %q needs base_url", s.Name, s.Location)
			}
			s.Location = base.ResolveReference(loc).String()
		}
		out = append(out, s)
	}
	return out, nil
}
