package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/barbershop-booking/internal/config"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

func NewDB(cfg *config.Config, log zerolog.Logger) *gorm.DB {
	level := gormlogger.Warn
	if cfg.IsProduction() {
		level = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(level),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get sql.DB")
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	return db
}

// overlapConstraint keeps two active appointments of one staff member from
// overlapping. Ranges are half-open, so back-to-back bookings are allowed.
const overlapConstraint = `
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint WHERE conname = 'appointments_no_overlap'
    ) THEN
        ALTER TABLE appointments
            ADD CONSTRAINT appointments_no_overlap
            EXCLUDE USING gist (
                staff_id WITH =,
                tstzrange(start_time, end_time, '[)') WITH &&
            )
            WHERE (status IN ('PENDING', 'CONFIRMED'));
    END IF;
END
$$;`

func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("btree_gist: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Barbershop{},
		&models.User{},
		&models.Customer{},
		&models.Service{},
		&models.WeeklySchedule{},
		&models.Appointment{},
		&models.Payment{},
		&models.Review{},
		&models.AuditLog{},
	); err != nil {
		return err
	}

	if err := db.Exec(overlapConstraint).Error; err != nil {
		return fmt.Errorf("overlap constraint: %w", err)
	}

	for _, stmt := range []string{
		`ALTER TABLE weekly_schedules DROP CONSTRAINT IF EXISTS weekly_schedules_time_order`,
		`ALTER TABLE weekly_schedules ADD CONSTRAINT weekly_schedules_time_order CHECK (start_time < end_time)`,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("schedule check: %w", err)
		}
	}

	return db.Exec(`
        UPDATE barbershops
        SET timezone = 'America/Sao_Paulo'
        WHERE timezone IS NULL OR timezone = ''
    `).Error
}
