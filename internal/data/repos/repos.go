package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/curriculum-backend/internal/data/repos/curriculum"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

type OutcomeRepo = curriculum.OutcomeRepo
type OutcomeFilter = curriculum.OutcomeFilter

func NewOutcomeRepo(db *gorm.DB, baseLog *logger.Logger) OutcomeRepo {
	return curriculum.NewOutcomeRepo(db, baseLog)
}
