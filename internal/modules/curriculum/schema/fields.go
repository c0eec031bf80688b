package schema

// Field is a canonical curriculum field name (the legacy snake_case spelling).
type Field string

const (
	LearningArea            Field = "learning_area"
	Subject                 Field = "subject"
	Level                   Field = "level"
	Strand                  Field = "strand"
	SubStrand               Field = "sub_strand"
	ContentDescription      Field = "content_description"
	Elaboration             Field = "elaboration"
	AchievementStandard     Field = "achievement_standard"
	ContentDescriptorCode   Field = "content_descriptor_code"
	CrossCurriculumPriority Field = "cross_curriculum_priority"
	GeneralCapability       Field = "general_capability"
	Topics                  Field = "topics"

	// Description only appears in remote shards (priorities, capabilities).
	Description Field = "description"
)

var outcomeFields = []Field{
	LearningArea,
	Subject,
	Level,
	Strand,
	SubStrand,
	ContentDescription,
	Elaboration,
	AchievementStandard,
	ContentDescriptorCode,
	CrossCurriculumPriority,
	GeneralCapability,
	Topics,
}

// RequiredFields must all be present for an outcome to pass the strict check.
var RequiredFields = []Field{LearningArea, Subject, Level, ContentDescription}

var displayNames = map[Field]string{
	LearningArea:            "Learning Area",
	Subject:                 "Subject",
	Level:                   "Level",
	Strand:                  "Strand",
	SubStrand:               "Sub-strand",
	ContentDescription:      "Content Description",
	Elaboration:             "Elaboration",
	AchievementStandard:     "Achievement Standard",
	ContentDescriptorCode:   "Content Descriptor Code",
	CrossCurriculumPriority: "Cross-curriculum Priority",
	GeneralCapability:       "General Capability",
	Topics:                  "Topics",
	Description:             "Description",
}

// OutcomeFields lists the canonical outcome fields in schema order.
func OutcomeFields() []Field {
	out := make([]Field, len(outcomeFields))
	copy(out, outcomeFields)
	return out
}

// DisplayName is the display-cased key used by the remote shards.
func DisplayName(f Field) string {
	if n, ok := displayNames[f]; ok {
		return n
	}
	return string(f)
}

// LegacyKey is the snake_case key used by older exports and the backing table.
func LegacyKey(f Field) string { return string(f) }

func IsListField(f Field) bool { return f == Topics }
