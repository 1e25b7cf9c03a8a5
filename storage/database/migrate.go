package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"StreakKeeper/internal/model"
	"StreakKeeper/pkg/logger"
)

// Migrate 建表并写入唯一的状态记录，已存在则保持不动
func Migrate() error {
	db := DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	if err := db.AutoMigrate(&model.CheckpointState{}); err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(model.NewCheckpointState()).Error; err != nil {
		logger.Logger.Error("Failed to seed checkpoint state", zap.Error(err))
		return err
	}

	logger.Logger.Info("Database migration completed successfully")
	return nil
}
