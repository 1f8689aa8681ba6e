package models

import (
	"time"
)

// PipelineRunLog представляет запись журнала о запуске конвейера
type PipelineRunLog struct {
	ID              int
	StartTime       time.Time
	EndTime         time.Time
	Status          string // 'in_progress', 'success', 'failed'
	RowsRead        int
	RowsLoaded      int
	VendorsLoaded   int
	NullExcluded    int
	DupExcluded     int
	InvalidExcluded int
	StoreDupSkipped int
	ErrorMessage    string
}

// PipelineRunRepository интерфейс для ведения журнала запусков конвейера
type PipelineRunRepository interface {
	// CreateRunLogTable создает таблицу журнала, если она не существует
	CreateRunLogTable() error

	// CreateLogEntry создает запись о начале запуска и возвращает ее ID
	CreateLogEntry(startTime time.Time) (int, error)

	// UpdateLogEntrySuccess обновляет запись при успешном завершении
	UpdateLogEntrySuccess(id int, endTime time.Time, stats PipelineStats) error

	// UpdateLogEntryFailure обновляет запись при неудачном завершении
	UpdateLogEntryFailure(id int, endTime time.Time, errorMessage string) error

	// GetLastSuccessfulRun возвращает последний успешный запуск (или nil)
	GetLastSuccessfulRun() (*PipelineRunLog, error)
}
