package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	assignmentModel "reviewdesk_backend/internals/features/assessment/assignments/model"
	evaluationModel "reviewdesk_backend/internals/features/assessment/evaluations/model"
	notificationModel "reviewdesk_backend/internals/features/assessment/notifications/model"
	reportModel "reviewdesk_backend/internals/features/assessment/reports/model"
	userModel "reviewdesk_backend/internals/features/users/user/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("Connecting to PostgreSQL...")

	sslmode := getenv("DB_SSLMODE", "require")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=reviewdesk&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		sslmode,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // PgBouncer transaction pooling
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB connect failed: %v", err)
	}
	DB = db
	log.Println("DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// Migrate creates the schema plus the constraints GORM tags cannot express.
// The partial unique index is the storage-level guard for the one-active-
// assignment-per-(report,expert) invariant; application pre-checks alone
// lose the race between two concurrent creates.
func Migrate() {
	if err := DB.AutoMigrate(
		&userModel.UserModel{},
		&reportModel.ReportModel{},
		&assignmentModel.AssignmentModel{},
		&evaluationModel.EvaluationModel{},
		&notificationModel.NotificationModel{},
	); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if err := DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uq_assignments_active_report_expert
		ON assignments (assignment_report_id, assignment_expert_id)
		WHERE assignment_status <> 'cancelled'
	`).Error; err != nil {
		log.Fatalf("index creation failed: %v", err)
	}

	log.Println("DB migrated.")
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
