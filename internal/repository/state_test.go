package repository

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"StreakKeeper/internal/model"
	pkgerrors "StreakKeeper/pkg/errors"
)

type capturedStatement struct {
	sql  string
	vars []interface{}
}

// newDryRunStore 不连接数据库，只记录生成的 SQL
func newDryRunStore(t *testing.T) (*GormStateStore, *capturedStatement) {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=streakkeeper dbname=streakkeeper sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true, SkipDefaultTransaction: true})
	require.NoError(t, err)

	captured := &capturedStatement{}
	capture := func(tx *gorm.DB) {
		captured.sql = tx.Statement.SQL.String()
		captured.vars = tx.Statement.Vars
	}
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("test:capture_update", capture))
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture_query", capture))

	return NewGormStateStore(db), captured
}

func TestGormStateStorePutIsConditionalOnVersion(t *testing.T) {
	s, captured := newDryRunStore(t)

	rec := model.NewCheckpointState()
	rec.ActiveDate = "2024-03-04"
	rec.CurrentStreak = 2

	err := s.Put(context.Background(), rec, 4)
	// DryRun 不执行语句，影响行数为 0，等同于版本号不匹配
	assert.True(t, stderrors.Is(err, pkgerrors.StateConflict))
	assert.Equal(t, int64(0), rec.Version)

	assert.Contains(t, captured.sql, `UPDATE "checkpoint_state" SET`)
	assert.Contains(t, captured.sql, `"checkpoint_state"."id" = `)
	assert.Contains(t, captured.sql, `"checkpoint_state"."version" = `)
	assert.Contains(t, captured.vars, int64(4))
	assert.Contains(t, captured.vars, int64(5))
	assert.Contains(t, captured.vars, "2024-03-04")
}

func TestGormStateStoreGetReadsSingletonRow(t *testing.T) {
	s, captured := newDryRunStore(t)

	_, _ = s.Get(context.Background())

	assert.Contains(t, captured.sql, `FROM "checkpoint_state"`)
	assert.Contains(t, captured.sql, `"checkpoint_state"."id" = `)
	assert.Contains(t, captured.vars, model.StateRecordID)
}
