package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LilVoxy/taxi_analytics/ETL/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testColumns = []string{"id", "vendor_id", "trip_duration"}

func excludedRow(line int, values ...string) models.TripRow {
	return models.TripRow{Line: line, Raw: values}
}

func TestExclusionLogSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded_records.log")

	log, err := NewExclusionLog(path, testColumns)
	require.NoError(t, err)

	outcome := &models.BatchOutcome{
		NullExcluded:    []models.TripRow{excludedRow(3, "id3", "", "")},
		DupExcluded:     []models.TripRow{excludedRow(5, "id1", "2", "600")},
		InvalidExcluded: []models.TripRow{excludedRow(7, "id7", "1", "-5")},
	}

	require.NoError(t, log.LogBatch(1, outcome))
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "=== Batch 1 ===")
	assert.Contains(t, content, "--- Excluded due to NULL values ---")
	assert.Contains(t, content, "--- Excluded due to duplicate ID ---")
	assert.Contains(t, content, "--- Excluded due to invalid trip data ---")

	// Полные исходные строки попадают в журнал
	assert.Contains(t, content, "3\tid3\t\t")
	assert.Contains(t, content, "5\tid1\t2\t600")
	assert.Contains(t, content, "7\tid7\t1\t-5")

	// Имена колонок выводятся в каждой секции
	assert.Equal(t, 3, strings.Count(content, "line\tid\tvendor_id\ttrip_duration"))
}

func TestExclusionLogSkipsEmptySections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded_records.log")

	log, err := NewExclusionLog(path, testColumns)
	require.NoError(t, err)

	outcome := &models.BatchOutcome{
		DupExcluded: []models.TripRow{excludedRow(2, "id1", "2", "600")},
	}

	require.NoError(t, log.LogBatch(1, outcome))
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.NotContains(t, content, "NULL values")
	assert.NotContains(t, content, "invalid trip data")
	assert.Contains(t, content, "duplicate ID")
}

func TestExclusionLogEmptyBatchWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded_records.log")

	log, err := NewExclusionLog(path, testColumns)
	require.NoError(t, err)

	require.NoError(t, log.LogBatch(1, &models.BatchOutcome{Input: 10}))
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestExclusionLogAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded_records.log")

	for batch := 1; batch <= 2; batch++ {
		log, err := NewExclusionLog(path, testColumns)
		require.NoError(t, err)

		outcome := &models.BatchOutcome{
			NullExcluded: []models.TripRow{excludedRow(batch, "id", "", "")},
		}
		require.NoError(t, log.LogBatch(batch, outcome))
		require.NoError(t, log.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "=== Batch 1 ===")
	assert.Contains(t, content, "=== Batch 2 ===")
}

func TestExclusionLogArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded_records.log")

	log, err := NewExclusionLog(path, testColumns)
	require.NoError(t, err)

	outcome := &models.BatchOutcome{
		InvalidExcluded: []models.TripRow{excludedRow(4, "id4", "1", "-5")},
	}
	require.NoError(t, log.LogBatch(1, outcome))
	require.NoError(t, log.Close())

	original, err := os.ReadFile(path)
	require.NoError(t, err)

	archivePath, err := log.Archive()
	require.NoError(t, err)
	assert.Equal(t, path+".snappy", archivePath)

	// Исходный файл удален, архив распаковывается в исходное содержимое
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	restored, err := ReadArchive(archivePath)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}
