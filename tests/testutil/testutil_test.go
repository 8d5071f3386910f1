package testutil

import (
	"net/http"
	"testing"

	"github.com/compmath/schedule-bot/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)
	defer mockDB.Close()

	assert.NotNil(t, mockDB.DB)
	assert.Equal(t, "postgres", mockDB.DB.Dialector.Name())
	mockDB.ExpectationsWereMet(t)
}

func TestNewSQLiteDB_IsIsolated(t *testing.T) {
	a := NewSQLiteDB(t)
	b := NewSQLiteDB(t)

	SeedTimetable(t, a)

	var countA, countB int64
	require.NoError(t, a.Model(&models.ScheduleModel{}).Count(&countA).Error)
	require.NoError(t, b.Model(&models.ScheduleModel{}).Count(&countB).Error)

	assert.Equal(t, int64(4), countA)
	assert.Equal(t, int64(0), countB)
}

func TestPerformRequest(t *testing.T) {
	engine := StatusOnly(http.MethodPost, "/x", http.StatusAccepted)
	w := PerformRequest(engine, http.MethodPost, "/x", []byte(`{}`), nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
}
