package curriculum

import "time"

// Default shard names served by the remote curriculum bucket.
const (
	ShardLearningAreas             = "learning_areas"
	ShardAchievementStandards      = "achievement_standards"
	ShardCrossCurriculumPriorities = "cross_curriculum_priorities"
	ShardGeneralCapabilities       = "general_capabilities"
)

// ShardRecord is one remote shard item after normalization. Both the display
// and legacy key conventions have already been folded into the typed fields;
// Alternates keeps any conflicting second value so lookups can still match it.
type ShardRecord struct {
	ID    string `json:"id"`
	Shard string `json:"shard"`

	LearningArea            string   `json:"learning_area,omitempty"`
	Subject                 string   `json:"subject,omitempty"`
	Level                   string   `json:"level,omitempty"`
	Strand                  string   `json:"strand,omitempty"`
	SubStrand               string   `json:"sub_strand,omitempty"`
	ContentDescription      string   `json:"content_description,omitempty"`
	Elaboration             string   `json:"elaboration,omitempty"`
	AchievementStandard     string   `json:"achievement_standard,omitempty"`
	ContentDescriptorCode   string   `json:"content_descriptor_code,omitempty"`
	CrossCurriculumPriority string   `json:"cross_curriculum_priority,omitempty"`
	GeneralCapability       string   `json:"general_capability,omitempty"`
	Description             string   `json:"description,omitempty"`
	Topics                  []string `json:"topics,omitempty"`

	Alternates map[string][]string `json:"alternates,omitempty"`
	Attributes map[string]any      `json:"attributes,omitempty"`
}

// ShardStatus describes how one shard fared during the last fetch.
type ShardStatus struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Count   int    `json:"count"`
	Dropped int    `json:"dropped"`
	Err     string `json:"error,omitempty"`
}

// Dataset is the merged, normalized content of every configured shard.
type Dataset struct {
	Shards    map[string][]ShardRecord `json:"shards"`
	Status    []ShardStatus            `json:"status"`
	FetchedAt time.Time                `json:"fetched_at"`
}

// Degraded reports whether at least one shard failed during the fetch.
func (d *Dataset) Degraded() bool {
	if d == nil {
		return false
	}
	for _, s := range d.Status {
		if s.Err != "" {
			return true
		}
	}
	return false
}

// Total counts records across all shards.
func (d *Dataset) Total() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, rows := range d.Shards {
		n += len(rows)
	}
	return n
}
