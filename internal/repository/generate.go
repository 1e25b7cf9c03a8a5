package repository

import (
	"fmt"
	"os"

	"gorm.io/gen"
	"gorm.io/gorm"

	"StreakKeeper/internal/model"
	"StreakKeeper/storage/database"
)

// Generate 连接数据库并生成 internal/repository/query 下的类型安全查询代码
func Generate() error {
	if err := database.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	db := database.DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./internal/repository/query",
		ModelPkgPath:      "StreakKeeper/internal/model",
		Mode:              gen.WithDefaultQuery,
		FieldNullable:     false,
		FieldCoverable:    false,
		FieldSignable:     false,
		FieldWithIndexTag: false,
		FieldWithTypeTag:  true,
	})

	g.UseDB(db)

	g.ApplyBasic(
		&model.CheckpointState{},
	)

	g.Execute()

	return nil
}

func RunGenerate() {
	if err := Generate(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate code: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Code generation completed successfully!")
}
