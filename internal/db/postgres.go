package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	types "github.com/axleworks/weighbridge-backend/internal/domain"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
	"github.com/axleworks/weighbridge-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "weighbridge", log)
	log.Debug("Environment variables loaded")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
	}
	log.Info("uuid-ossp extension enabled")

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Job{},
		&types.Vehicle{},
		&types.Driver{},
		&types.Customer{},
		&types.Product{},
		&types.Weighbridge{},
		&types.AxleEntry{},

		&types.WeighingSession{},
		&types.DeckSample{},
		&types.OverloadRecord{},
		&types.DocketSequence{},
		&types.SyncBatch{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	for _, stmt := range []string{
		`ALTER TABLE "deck_sample" DROP CONSTRAINT IF EXISTS "fk_deck_sample_session_id"`,
		`ALTER TABLE "deck_sample"
		 ADD CONSTRAINT "fk_deck_sample_session_id"
		 FOREIGN KEY ("session_id")
		 REFERENCES "weighing_session"("id")
		 ON DELETE CASCADE`,
		`ALTER TABLE "overload_record" DROP CONSTRAINT IF EXISTS "fk_overload_record_session_id"`,
		`ALTER TABLE "overload_record"
		 ADD CONSTRAINT "fk_overload_record_session_id"
		 FOREIGN KEY ("session_id")
		 REFERENCES "weighing_session"("id")
		 ON DELETE CASCADE`,
	} {
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("Failed to configure session foreign keys: %w", err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
