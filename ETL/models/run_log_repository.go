package models

import (
	"database/sql"
	"fmt"
	"time"
)

// MySQLPipelineRunRepository реализация PipelineRunRepository для MySQL
type MySQLPipelineRunRepository struct {
	db *sql.DB
}

// NewMySQLPipelineRunRepository создает новый экземпляр MySQLPipelineRunRepository
func NewMySQLPipelineRunRepository(db *sql.DB) *MySQLPipelineRunRepository {
	return &MySQLPipelineRunRepository{
		db: db,
	}
}

// CreateRunLogTable создает таблицу журнала запусков конвейера, если она не существует
func (r *MySQLPipelineRunRepository) CreateRunLogTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS pipeline_runs (
		id INT AUTO_INCREMENT PRIMARY KEY,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NULL,
		status ENUM('success', 'failed', 'in_progress') NOT NULL DEFAULT 'in_progress',
		rows_read INT DEFAULT 0,
		rows_loaded INT DEFAULT 0,
		vendors_loaded INT DEFAULT 0,
		null_excluded INT DEFAULT 0,
		dup_excluded INT DEFAULT 0,
		invalid_excluded INT DEFAULT 0,
		store_dup_skipped INT DEFAULT 0,
		error_message TEXT,
		execution_time_seconds FLOAT
	);
	`

	_, err := r.db.Exec(query)
	if err != nil {
		return fmt.Errorf("ошибка при создании таблицы pipeline_runs: %w", err)
	}

	return nil
}

// CreateLogEntry создает новую запись о запуске конвейера
func (r *MySQLPipelineRunRepository) CreateLogEntry(startTime time.Time) (int, error) {
	query := `
	INSERT INTO pipeline_runs (start_time, status)
	VALUES (?, 'in_progress')
	`

	result, err := r.db.Exec(query, startTime)
	if err != nil {
		return 0, fmt.Errorf("ошибка при создании записи о запуске конвейера: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ошибка при получении ID созданной записи: %w", err)
	}

	return int(id), nil
}

// UpdateLogEntrySuccess обновляет запись при успешном завершении конвейера
func (r *MySQLPipelineRunRepository) UpdateLogEntrySuccess(id int, endTime time.Time, stats PipelineStats) error {
	// Рассчитываем время выполнения в секундах
	var startTime time.Time
	err := r.db.QueryRow("SELECT start_time FROM pipeline_runs WHERE id = ?", id).Scan(&startTime)
	if err != nil {
		return fmt.Errorf("ошибка при получении времени начала запуска: %w", err)
	}

	executionTime := endTime.Sub(startTime).Seconds()

	// Обновляем запись
	query := `
	UPDATE pipeline_runs
	SET
		end_time = ?,
		status = 'success',
		rows_read = ?,
		rows_loaded = ?,
		vendors_loaded = ?,
		null_excluded = ?,
		dup_excluded = ?,
		invalid_excluded = ?,
		store_dup_skipped = ?,
		execution_time_seconds = ?
	WHERE id = ?
	`

	_, err = r.db.Exec(
		query,
		endTime,
		stats.RowsRead,
		stats.RowsLoaded,
		stats.VendorsLoaded,
		stats.NullExcluded,
		stats.DupExcluded,
		stats.InvalidExcluded,
		stats.StoreDupSkipped,
		executionTime,
		id,
	)

	if err != nil {
		return fmt.Errorf("ошибка при обновлении записи о запуске конвейера: %w", err)
	}

	return nil
}

// UpdateLogEntryFailure обновляет запись при неудачном завершении конвейера
func (r *MySQLPipelineRunRepository) UpdateLogEntryFailure(id int, endTime time.Time, errorMessage string) error {
	// Рассчитываем время выполнения в секундах
	var startTime time.Time
	err := r.db.QueryRow("SELECT start_time FROM pipeline_runs WHERE id = ?", id).Scan(&startTime)
	if err != nil {
		return fmt.Errorf("ошибка при получении времени начала запуска: %w", err)
	}

	executionTime := endTime.Sub(startTime).Seconds()

	query := `
	UPDATE pipeline_runs
	SET
		end_time = ?,
		status = 'failed',
		error_message = ?,
		execution_time_seconds = ?
	WHERE id = ?
	`

	_, err = r.db.Exec(query, endTime, errorMessage, executionTime, id)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении записи о неудачном запуске: %w", err)
	}

	return nil
}

// GetLastSuccessfulRun возвращает информацию о последнем успешном запуске конвейера
func (r *MySQLPipelineRunRepository) GetLastSuccessfulRun() (*PipelineRunLog, error) {
	query := `
	SELECT id, start_time, end_time, rows_read, rows_loaded, vendors_loaded,
	       null_excluded, dup_excluded, invalid_excluded, store_dup_skipped
	FROM pipeline_runs
	WHERE status = 'success'
	ORDER BY end_time DESC
	LIMIT 1
	`

	var runLog PipelineRunLog
	err := r.db.QueryRow(query).Scan(
		&runLog.ID,
		&runLog.StartTime,
		&runLog.EndTime,
		&runLog.RowsRead,
		&runLog.RowsLoaded,
		&runLog.VendorsLoaded,
		&runLog.NullExcluded,
		&runLog.DupExcluded,
		&runLog.InvalidExcluded,
		&runLog.StoreDupSkipped,
	)

	if err == sql.ErrNoRows {
		// Успешных запусков еще не было
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("ошибка при получении последнего успешного запуска: %w", err)
	}

	runLog.Status = "success"
	return &runLog, nil
}
