package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"blogfolio/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Post{}, &model.AuditEvent{}))
	return db
}

// capturingPublisher records audit events instead of touching a broker.
type capturingPublisher struct {
	events []model.AuditEvent
}

func (p *capturingPublisher) Publish(_ context.Context, event model.AuditEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) actions() []string {
	actions := make([]string, 0, len(p.events))
	for _, e := range p.events {
		actions = append(actions, e.Action)
	}
	return actions
}
