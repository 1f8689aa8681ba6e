package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/LilVoxy/taxi_analytics/ETL/config"
	"github.com/LilVoxy/taxi_analytics/ETL/extractors"
	"github.com/LilVoxy/taxi_analytics/ETL/load"
	"github.com/LilVoxy/taxi_analytics/ETL/models"
	"github.com/LilVoxy/taxi_analytics/ETL/transform"
	"github.com/LilVoxy/taxi_analytics/ETL/utils"
	"github.com/LilVoxy/taxi_analytics/database"
)

// Progress интерфейс публикации прогресса конвейера.
// Реализуется websocket-хабом; конвейер работает одинаково и без подписчиков.
type Progress interface {
	PublishProgress(update models.ProgressUpdate)
}

// Pipeline координирует полный цикл загрузки поездок:
// проверка источника, загрузка измерения вендоров, потоковая обработка
// батчей и ведение журнала запусков.
type Pipeline struct {
	config   config.ETLConfig
	logger   *utils.ETLLogger
	progress Progress
}

// NewPipeline создает новый экземпляр Pipeline
func NewPipeline(cfg config.ETLConfig, logger *utils.ETLLogger) *Pipeline {
	return &Pipeline{
		config: cfg,
		logger: logger,
	}
}

// SetProgressPublisher подключает необязательного подписчика прогресса
func (p *Pipeline) SetProgressPublisher(progress Progress) {
	p.progress = progress
}

// Run выполняет один запуск конвейера и возвращает накопленную статистику.
//
// Порядок фаз фиксирован и выражен явно: измерение вендоров загружается
// полностью до первого батча фактов, так как факты объявляют внешний ключ
// на vendors.id. Батчи обрабатываются строго последовательно в порядке
// следования строк источника.
func (p *Pipeline) Run() (*models.PipelineStats, error) {
	stats := &models.PipelineStats{
		StartTime: time.Now(),
	}

	// 1. Проверяем наличие исходного файла до открытия хранилища:
	// при его отсутствии запуск прерывается без каких-либо записей
	if _, err := os.Stat(p.config.SourceFile); os.IsNotExist(err) {
		p.logger.Error("Исходный файл %s не найден", p.config.SourceFile)
		return nil, fmt.Errorf("исходный файл %s не найден", p.config.SourceFile)
	}

	// 2. Подключаемся к хранилищу фактов
	db, err := config.ConnectDatabase(p.config)
	if err != nil {
		p.logger.Error("Ошибка подключения к хранилищу: %v", err)
		return nil, fmt.Errorf("ошибка подключения к хранилищу: %w", err)
	}
	defer config.CloseDatabase(db)

	// 3. Схема таблиц принадлежит модулю database и создается до загрузки
	if err := database.EnsureSchema(db); err != nil {
		p.logger.Error("Ошибка при создании схемы хранилища: %v", err)
		return nil, fmt.Errorf("ошибка при создании схемы хранилища: %w", err)
	}

	// 4. Заводим запись в журнале запусков
	runRepo := models.NewMySQLPipelineRunRepository(db)
	if err := runRepo.CreateRunLogTable(); err != nil {
		return nil, fmt.Errorf("ошибка при создании таблицы журнала запусков: %w", err)
	}

	runID, err := runRepo.CreateLogEntry(stats.StartTime)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании записи журнала запусков: %w", err)
	}

	extractor := extractors.NewCSVExtractor(p.config.SourceFile, p.config.BatchSize, p.logger)
	p.logger.LogPipelineStart(p.config.SourceFile, p.config.BatchSize)

	// 5. Фаза измерения: вендоры загружаются до первого факта.
	// Любая ошибка здесь логируется и не прерывает конвейер — ссылочная
	// целостность объявлена в схеме, но не навязывается при записи фактов.
	loader := load.NewLoadManager(db, p.logger)
	stats.VendorsLoaded = p.loadVendorDimension(extractor, loader)

	// 6. Журнал исключений и обработчики батчей создаются только после
	// завершения фазы измерения
	columns, err := extractor.Columns()
	if err != nil {
		p.failRun(runRepo, runID, err)
		return nil, err
	}

	exclusions, err := utils.NewExclusionLog(p.config.ExclusionLogPath, columns)
	if err != nil {
		p.failRun(runRepo, runID, err)
		return nil, err
	}
	defer exclusions.Close()

	processor := transform.NewTripFactsProcessor(p.logger)

	// 7. Потоковая обработка батчей в порядке следования строк источника
	rowsRead, err := extractor.StreamBatches(func(batchNumber int, rows []models.TripRow) error {
		outcome := processor.ProcessBatch(rows)

		if err := exclusions.LogBatch(batchNumber, outcome); err != nil {
			return err
		}

		loaded, skipped, err := loader.LoadTripFacts(outcome.Kept)
		if err != nil {
			return err
		}

		stats.BatchCount = batchNumber
		stats.RowsRead += outcome.Input
		stats.RowsLoaded += loaded
		stats.NullExcluded += len(outcome.NullExcluded)
		stats.DupExcluded += len(outcome.DupExcluded)
		stats.InvalidExcluded += len(outcome.InvalidExcluded)
		stats.StoreDupSkipped += skipped

		excluded := len(outcome.NullExcluded) + len(outcome.DupExcluded) + len(outcome.InvalidExcluded)
		p.logger.LogBatchComplete(batchNumber, stats.RowsRead, loaded, excluded)

		if skipped > 0 {
			p.logger.Info("Батч %d: хранилище отбросило %d дубликатов из предыдущих батчей", batchNumber, skipped)
		}

		p.publishProgress(batchNumber, stats, false)
		return nil
	})

	stats.RowsRead = rowsRead
	stats.EndTime = time.Now()

	if err != nil {
		p.failRun(runRepo, runID, err)
		return nil, fmt.Errorf("ошибка при обработке батчей: %w", err)
	}

	// 8. Итоговая сводка и закрытие журнала запусков
	p.logger.LogPipelineComplete(stats.StartTime, stats.RowsRead, stats.RowsLoaded)
	p.logger.Info("Исключено строк: NULL=%d, дубликаты=%d, некорректные=%d, отброшено хранилищем=%d",
		stats.NullExcluded, stats.DupExcluded, stats.InvalidExcluded, stats.StoreDupSkipped)

	if err := runRepo.UpdateLogEntrySuccess(runID, stats.EndTime, *stats); err != nil {
		p.logger.Error("Ошибка при обновлении журнала запусков: %v", err)
	}

	p.publishProgress(stats.BatchCount, stats, true)

	// 9. Завершенный журнал исключений при необходимости архивируется
	if p.config.ArchiveExclusionLog {
		exclusions.Close()
		archivePath, err := exclusions.Archive()
		if err != nil {
			p.logger.Error("Ошибка при архивации журнала исключений: %v", err)
		} else {
			p.logger.Info("Журнал исключений заархивирован: %s", archivePath)
		}
	}

	return stats, nil
}

// loadVendorDimension извлекает уникальных вендоров из источника и
// идемпотентно загружает их в таблицу измерения.
// Возвращает количество обработанных вендоров; сбой не фатален.
func (p *Pipeline) loadVendorDimension(extractor *extractors.CSVExtractor, loader load.Loader) int {
	p.logger.Info("Загрузка измерения вендоров...")

	ids, err := extractor.ExtractVendorIDs()
	if err != nil {
		p.logger.Error("Не удалось извлечь вендоров из источника: %v. Конвейер продолжит работу.", err)
		return 0
	}

	processed, err := loader.LoadVendors(load.BuildVendors(ids))
	if err != nil {
		p.logger.Error("Не удалось загрузить измерение вендоров: %v. Конвейер продолжит работу.", err)
		return 0
	}

	return processed
}

// failRun фиксирует неудачное завершение запуска в журнале
func (p *Pipeline) failRun(runRepo models.PipelineRunRepository, runID int, runErr error) {
	if err := runRepo.UpdateLogEntryFailure(runID, time.Now(), runErr.Error()); err != nil {
		p.logger.Error("Ошибка при обновлении журнала о неудачном запуске: %v", err)
	}
}

// publishProgress отправляет снимок прогресса подписчикам, если они есть
func (p *Pipeline) publishProgress(batchNumber int, stats *models.PipelineStats, done bool) {
	if p.progress == nil {
		return
	}

	p.progress.PublishProgress(models.ProgressUpdate{
		Batch:      batchNumber,
		RowsRead:   stats.RowsRead,
		RowsLoaded: stats.RowsLoaded,
		Excluded:   stats.NullExcluded + stats.DupExcluded + stats.InvalidExcluded,
		Done:       done,
	})
}
