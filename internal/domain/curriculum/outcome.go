package curriculum

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxTopics bounds Outcome.Topics and ShardRecord.Topics.
const MaxTopics = 10

// Outcome is the canonical curriculum record every ingestion path converges on.
// Rows are append-only: created once per source row and never updated.
type Outcome struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	LearningArea            string `gorm:"column:learning_area;index" json:"learning_area"`
	Subject                 string `gorm:"column:subject;index" json:"subject"`
	Level                   string `gorm:"column:level;index" json:"level"`
	Strand                  string `gorm:"column:strand" json:"strand,omitempty"`
	SubStrand               string `gorm:"column:sub_strand" json:"sub_strand,omitempty"`
	ContentDescription      string `gorm:"column:content_description;type:text" json:"content_description"`
	Elaboration             string `gorm:"column:elaboration;type:text" json:"elaboration,omitempty"`
	AchievementStandard     string `gorm:"column:achievement_standard;type:text" json:"achievement_standard,omitempty"`
	ContentDescriptorCode   string `gorm:"column:content_descriptor_code;index" json:"content_descriptor_code,omitempty"`
	CrossCurriculumPriority string `gorm:"column:cross_curriculum_priority" json:"cross_curriculum_priority,omitempty"`
	GeneralCapability       string `gorm:"column:general_capability" json:"general_capability,omitempty"`

	Topics datatypes.JSONSlice[string] `gorm:"column:topics" json:"topics"`

	ImportID    uuid.UUID `gorm:"type:uuid;column:import_id;index" json:"import_id"`
	SourceFile  string    `gorm:"column:source_file" json:"source_file,omitempty"`
	SourceType  string    `gorm:"column:source_type" json:"source_type,omitempty"`
	SourceSheet string    `gorm:"column:source_sheet" json:"source_sheet,omitempty"`
	SourceRow   int       `gorm:"column:source_row" json:"source_row,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Outcome) TableName() string { return "curriculum_outcome" }

func (o *Outcome) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Topics == nil {
		o.Topics = datatypes.JSONSlice[string]{}
	}
	return nil
}

// HasRequired reports whether all four required fields are non-empty.
func (o *Outcome) HasRequired() bool {
	return o != nil &&
		o.LearningArea != "" &&
		o.Subject != "" &&
		o.Level != "" &&
		o.ContentDescription != ""
}

// DescriptiveText is the free text keywords are extracted from.
func (o *Outcome) DescriptiveText() string {
	if o == nil {
		return ""
	}
	return joinNonEmpty(o.ContentDescription, o.Elaboration, o.AchievementStandard)
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}
