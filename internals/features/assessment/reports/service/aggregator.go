// file: internals/features/assessment/reports/service/aggregator.go
package service

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	evaluationModel "reviewdesk_backend/internals/features/assessment/evaluations/model"
	reportModel "reviewdesk_backend/internals/features/assessment/reports/model"
	"reviewdesk_backend/internals/helpers/apperr"
)

// Statuses whose evaluations count toward a report's average; drafts never do.
var qualifyingStatuses = []evaluationModel.EvaluationStatus{
	evaluationModel.EvaluationSubmitted,
	evaluationModel.EvaluationSupervised,
	evaluationModel.EvaluationFinal,
}

// Qualifies reports whether an evaluation in the given status counts toward
// its report's average score.
func Qualifies(status evaluationModel.EvaluationStatus) bool {
	for _, s := range qualifyingStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// MeanScore is the arithmetic mean rounded to 2dp; 0 when nothing qualifies.
func MeanScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return round2(sum / float64(len(scores)))
}

// Aggregator rolls finalized evaluation scores up to the parent report.
type Aggregator struct {
	DB *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{DB: db}
}

// AverageScoreByReport is the arithmetic mean of average_score across all
// non-draft evaluations of the report; 0 when none qualify.
func (s *Aggregator) AverageScoreByReport(reportID uuid.UUID) (float64, error) {
	return averageScoreByReportTx(s.DB, reportID)
}

func averageScoreByReportTx(tx *gorm.DB, reportID uuid.UUID) (float64, error) {
	var scores []float64
	err := tx.Model(&evaluationModel.EvaluationModel{}).
		Where("evaluation_report_id = ? AND evaluation_status IN ?", reportID, qualifyingStatuses).
		Pluck("evaluation_average_score", &scores).Error
	if err != nil {
		return 0, err
	}
	return MeanScore(scores), nil
}

// OnFinalizedTx recomputes the report aggregate inside the caller's
// transaction. The report row is locked FOR UPDATE so concurrent
// finalizations for the same report serialize their read-modify-write.
func (s *Aggregator) OnFinalizedTx(tx *gorm.DB, reportID, evaluationID uuid.UUID) error {
	var report reportModel.ReportModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&report, "report_id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("report not found")
		}
		return err
	}

	avg, err := averageScoreByReportTx(tx, reportID)
	if err != nil {
		return err
	}

	ids, _ := AppendEvaluationID(report.ReportEvaluationIDs, evaluationID)

	return tx.Model(&reportModel.ReportModel{}).
		Where("report_id = ?", reportID).
		Updates(map[string]interface{}{
			"report_evaluation_ids":   ids,
			"report_evaluation_count": len(ids),
			"report_average_score":    avg,
		}).Error
}

// AppendEvaluationID appends once; repeat calls for the same id are no-ops.
func AppendEvaluationID(ids pq.StringArray, evaluationID uuid.UUID) (pq.StringArray, bool) {
	s := evaluationID.String()
	for _, existing := range ids {
		if existing == s {
			return ids, false
		}
	}
	return append(ids, s), true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
