// file: internals/features/assessment/reports/model/report_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ReportStatus string

const (
	ReportDraft        ReportStatus = "draft"
	ReportApproved     ReportStatus = "approved"
	ReportInEvaluation ReportStatus = "in_evaluation"
)

// ReportModel is the evaluated artifact. The aggregate fields
// (evaluation ids, count, average score) are mutated only by the
// aggregator on the finalize path, under a row lock.
type ReportModel struct {
	ReportID    uuid.UUID `json:"report_id" gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:report_id"`
	ReportCode  string    `json:"report_code" gorm:"type:varchar(50);unique;not null;column:report_code"`
	ReportTitle string    `json:"report_title" gorm:"type:text;not null;column:report_title"`
	ReportType  string    `json:"report_type" gorm:"type:varchar(30);not null;default:'self_assessment';column:report_type"`

	ReportStatus ReportStatus `json:"report_status" gorm:"type:varchar(20);not null;default:'draft';index;column:report_status"`

	ReportCreatedBy uuid.UUID `json:"report_created_by" gorm:"type:uuid;not null;column:report_created_by"`

	ReportEvaluationIDs   pq.StringArray `json:"report_evaluation_ids" gorm:"type:text[];column:report_evaluation_ids"`
	ReportEvaluationCount int            `json:"report_evaluation_count" gorm:"not null;default:0;column:report_evaluation_count"`
	ReportAverageScore    float64        `json:"report_average_score" gorm:"not null;default:0;column:report_average_score"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime;column:updated_at"`
}

func (ReportModel) TableName() string { return "reports" }
