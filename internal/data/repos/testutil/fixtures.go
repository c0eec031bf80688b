package testutil

import (
	"fmt"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
)

// Outcomes builds n valid outcomes for the given learning area and level.
func Outcomes(n int, learningArea, level string) []*curriculum.Outcome {
	out := make([]*curriculum.Outcome, n)
	for i := range out {
		out[i] = &curriculum.Outcome{
			LearningArea:       learningArea,
			Subject:            learningArea,
			Level:              level,
			ContentDescription: fmt.Sprintf("%s outcome %d", learningArea, i+1),
			Topics:             []string{"outcome"},
			SourceRow:          i + 2,
		}
	}
	return out
}
