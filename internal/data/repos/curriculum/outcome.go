package curriculum

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

// OutcomeFilter narrows List. String criteria are case-insensitive substring
// matches; LearningArea matches either the learning area or the subject.
type OutcomeFilter struct {
	LearningArea string
	Level        string
	ImportID     uuid.UUID
	Limit        int
}

type OutcomeRepo interface {
	InsertBatch(ctx context.Context, tx *gorm.DB, rows []*domain.Outcome) error
	List(ctx context.Context, tx *gorm.DB, filter OutcomeFilter) ([]*domain.Outcome, error)
	CountByImport(ctx context.Context, tx *gorm.DB, importID uuid.UUID) (int64, error)
}

type outcomeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOutcomeRepo(db *gorm.DB, baseLog *logger.Logger) OutcomeRepo {
	return &outcomeRepo{db: db, log: baseLog.With("repo", "OutcomeRepo")}
}

// InsertBatch writes rows with a single multi-row INSERT.
func (r *outcomeRepo) InsertBatch(ctx context.Context, tx *gorm.DB, rows []*domain.Outcome) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return t.WithContext(ctx).Create(&rows).Error
}

func (r *outcomeRepo) List(ctx context.Context, tx *gorm.DB, filter OutcomeFilter) ([]*domain.Outcome, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx).Model(&domain.Outcome{})

	if s := strings.TrimSpace(filter.LearningArea); s != "" {
		pattern := likePattern(s)
		q = q.Where(
			"(LOWER(learning_area) LIKE ? ESCAPE '\\' OR LOWER(subject) LIKE ? ESCAPE '\\')",
			pattern, pattern,
		)
	}
	if s := strings.TrimSpace(filter.Level); s != "" {
		q = q.Where("LOWER(level) LIKE ? ESCAPE '\\'", likePattern(s))
	}
	if filter.ImportID != uuid.Nil {
		q = q.Where("import_id = ?", filter.ImportID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var out []*domain.Outcome
	if err := q.Order("created_at ASC").Order("source_sheet ASC").Order("source_row ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Outcome{}
	}
	return out, nil
}

func (r *outcomeRepo) CountByImport(ctx context.Context, tx *gorm.DB, importID uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	if importID == uuid.Nil {
		return 0, nil
	}
	if err := t.WithContext(ctx).
		Model(&domain.Outcome{}).
		Where("import_id = ?", importID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
