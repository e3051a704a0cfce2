// file: internals/features/assessment/evaluations/service/scoring.go
package service

import (
	"fmt"
	"math"
	"strings"

	evaluationModel "reviewdesk_backend/internals/features/assessment/evaluations/model"
	"reviewdesk_backend/internals/helpers/apperr"
)

/* =========================================================
   SCORING ENGINE
   Derived fields are a pure function of the criteria scores;
   every mutation path runs Recompute before persisting.
   ========================================================= */

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RatingForScore maps the 0-10 average onto the qualitative scale.
func RatingForScore(avg float64) evaluationModel.Rating {
	switch {
	case avg >= 9:
		return evaluationModel.RatingExcellent
	case avg >= 7:
		return evaluationModel.RatingGood
	case avg >= 5:
		return evaluationModel.RatingSatisfactory
	case avg >= 3:
		return evaluationModel.RatingNeedsImprovement
	default:
		return evaluationModel.RatingPoor
	}
}

// Recompute refreshes total, max total, average (0-10) and rating from the
// current criteria scores. With an empty or zero-weight criteria set the
// average is 0 and any evaluator-set rating is left standing as a
// non-authoritative placeholder.
func Recompute(e *evaluationModel.EvaluationModel) {
	var weightedTotal, weightedMax float64
	for _, cs := range e.EvaluationCriteriaScores {
		weightedTotal += cs.Score * cs.Weight
		weightedMax += cs.MaxScore * cs.Weight
	}

	e.EvaluationTotalScore = Round2(weightedTotal)
	e.EvaluationMaxTotalScore = Round2(weightedMax)

	if weightedMax > 0 {
		e.EvaluationAverageScore = Round2(10 * weightedTotal / weightedMax)
		e.EvaluationRating = RatingForScore(e.EvaluationAverageScore)
	} else {
		e.EvaluationAverageScore = 0
	}
}

// ValidateScores rejects out-of-range scores and weights before they reach
// the recompute path.
func ValidateScores(scores []evaluationModel.CriteriaScore) error {
	for _, cs := range scores {
		if cs.Name == "" {
			return apperr.Validation("criteria score: name is required")
		}
		if cs.MaxScore <= 0 {
			return apperr.Validation(fmt.Sprintf("criteria score %q: max score must be positive", cs.Name))
		}
		if cs.Score < 0 || cs.Score > cs.MaxScore {
			return apperr.Validation(fmt.Sprintf("criteria score %q: score must be within [0, %g]", cs.Name, cs.MaxScore))
		}
		if cs.Weight < 0 || cs.Weight > 1 {
			return apperr.Validation(fmt.Sprintf("criteria score %q: weight must be within [0,1]", cs.Name))
		}
	}
	return nil
}

/* =========================================================
   COMPLETENESS (5 weighted checkpoints)
   ========================================================= */

// Progress returns 0-100 over the five submission checkpoints:
// overall comment, rating, evidence adequacy/relevance/quality.
func Progress(e *evaluationModel.EvaluationModel) int {
	const totalFields = 5
	completed := 0

	if strings.TrimSpace(e.EvaluationOverallComment) != "" {
		completed++
	}
	if evaluationModel.ValidRating(e.EvaluationRating) {
		completed++
	}
	if evaluationModel.ValidAdequacy(e.EvaluationEvidenceAdequacy) {
		completed++
	}
	if evaluationModel.ValidEvidenceGrade(e.EvaluationEvidenceRelevance) {
		completed++
	}
	if evaluationModel.ValidEvidenceGrade(e.EvaluationEvidenceQuality) {
		completed++
	}

	return int(math.Round(float64(completed) / float64(totalFields) * 100))
}

// IsComplete gates submission.
func IsComplete(e *evaluationModel.EvaluationModel) bool {
	return Progress(e) == 100
}

// MissingFields lists the unmet checkpoints for a helpful 422 payload.
func MissingFields(e *evaluationModel.EvaluationModel) []string {
	var missing []string
	if strings.TrimSpace(e.EvaluationOverallComment) == "" {
		missing = append(missing, "overall_comment")
	}
	if !evaluationModel.ValidRating(e.EvaluationRating) {
		missing = append(missing, "rating")
	}
	if !evaluationModel.ValidAdequacy(e.EvaluationEvidenceAdequacy) {
		missing = append(missing, "evidence_adequacy")
	}
	if !evaluationModel.ValidEvidenceGrade(e.EvaluationEvidenceRelevance) {
		missing = append(missing, "evidence_relevance")
	}
	if !evaluationModel.ValidEvidenceGrade(e.EvaluationEvidenceQuality) {
		missing = append(missing, "evidence_quality")
	}
	return missing
}

// WordCount of the overall comment, tracked as lightweight metadata.
func WordCount(s string) int {
	fields := strings.Fields(s)
	return len(fields)
}
