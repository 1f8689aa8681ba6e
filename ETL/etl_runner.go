package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LilVoxy/taxi_analytics/ETL/config"
	"github.com/LilVoxy/taxi_analytics/ETL/models"
	"github.com/LilVoxy/taxi_analytics/ETL/pipeline"
	"github.com/LilVoxy/taxi_analytics/ETL/ranking"
	"github.com/LilVoxy/taxi_analytics/ETL/utils"
	"github.com/LilVoxy/taxi_analytics/websocket"
	"github.com/go-co-op/gocron"
	"github.com/gorilla/mux"
)

// PipelineRunner связывает конфигурацию, логгер и конвейер загрузки поездок
type PipelineRunner struct {
	config    config.ETLConfig
	logger    *utils.ETLLogger
	pipeline  *pipeline.Pipeline
	wsManager *websocket.Manager
}

// NewPipelineRunner создает новый экземпляр PipelineRunner
func NewPipelineRunner(cfg config.ETLConfig) *PipelineRunner {
	logger := utils.NewETLLogger(cfg.EnableDetailedLogging)
	logger.Info("Инициализация конвейера загрузки поездок")

	runner := &PipelineRunner{
		config:   cfg,
		logger:   logger,
		pipeline: pipeline.NewPipeline(cfg, logger),
	}

	// Сервер прогресса необязателен: без него конвейер работает так же
	if cfg.ProgressAddr != "" {
		runner.wsManager = runner.startProgressServer(cfg.ProgressAddr)
		runner.pipeline.SetProgressPublisher(runner.wsManager)
	}

	return runner
}

// startProgressServer поднимает HTTP-сервер с websocket-подпиской на прогресс
func (r *PipelineRunner) startProgressServer(addr string) *websocket.Manager {
	wsManager := websocket.NewManager()
	go wsManager.Run()

	router := mux.NewRouter()
	router.HandleFunc("/ws/progress", wsManager.HandleConnections)

	go func() {
		r.logger.Info("Сервер прогресса запущен на %s", addr)
		if err := http.ListenAndServe(addr, router); err != nil {
			r.logger.Error("Ошибка сервера прогресса: %v", err)
		}
	}()

	return wsManager
}

// Execute выполняет один запуск конвейера
func (r *PipelineRunner) Execute() error {
	stats, err := r.pipeline.Run()
	if err != nil {
		return err
	}

	r.logger.Info("Запуск завершен: батчей %d, прочитано %d, загружено %d, длительность %v",
		stats.BatchCount, stats.RowsRead, stats.RowsLoaded, stats.EndTime.Sub(stats.StartTime))
	return nil
}

// StartScheduler запускает планировщик для регулярного выполнения конвейера
func (r *PipelineRunner) StartScheduler(ctx context.Context) {
	scheduler := gocron.NewScheduler(time.UTC)

	r.logger.Info("Запуск планировщика конвейера с интервалом %v", r.config.RunInterval)

	_, err := scheduler.Every(r.config.RunInterval).Do(func() {
		r.logger.Info("Запланированный запуск конвейера")
		if err := r.Execute(); err != nil {
			r.logger.Error("Ошибка при выполнении запланированного запуска: %v", err)
		}
	})

	if err != nil {
		r.logger.Error("Ошибка при настройке планировщика: %v", err)
		return
	}

	// Запускаем планировщик
	scheduler.StartAsync()

	// Ожидаем сигнал остановки из контекста
	<-ctx.Done()

	// Останавливаем планировщик
	scheduler.Stop()
	r.logger.Info("Планировщик конвейера остановлен")
}

// RunOnce запускает конвейер один раз
func RunOnce(cfg config.ETLConfig) {
	runner := NewPipelineRunner(cfg)

	if err := runner.Execute(); err != nil {
		log.Fatalf("Ошибка при выполнении конвейера: %v", err)
	}
}

// RunScheduled запускает конвейер по расписанию
func RunScheduled(cfg config.ETLConfig) {
	// Создаем контекст, который будет отменен при получении сигнала завершения
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Настраиваем обработку сигналов завершения
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signalCh
		log.Println("Получен сигнал завершения. Останавливаем конвейер...")
		cancel()
	}()

	runner := NewPipelineRunner(cfg)
	runner.StartScheduler(ctx)
}

// RunBenchmark измеряет время работы движка ранжирования на нескольких
// размерах входа, охватывающих два порядка величины.
// Рост времени должен соответствовать O(n log n).
func RunBenchmark() {
	inputSizes := []int{100, 1000, 10000, 50000}
	fmt.Println("Замер времени работы движка ранжирования...")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, size := range inputSizes {
		facts := make([]models.TripFact, size)
		for i := range facts {
			facts[i] = models.TripFact{
				ID:        fmt.Sprintf("bench%d", i),
				FarePerKM: 1 + rng.Float64()*99,
			}
		}

		startTime := time.Now()
		if _, err := ranking.Rank(facts, "fare_per_km", true); err != nil {
			log.Fatalf("Ошибка при ранжировании: %v", err)
		}
		executionTime := time.Since(startTime)

		fmt.Printf("Размер входа: %-10d | Время выполнения: %.6f с\n", size, executionTime.Seconds())
	}
}

func main() {
	// Параметры командной строки
	modePtr := flag.String("mode", "once", "Режим работы: once, scheduled или benchmark")
	sourcePtr := flag.String("source", "", "Путь к исходному CSV-файлу (по умолчанию из конфигурации)")
	batchSizePtr := flag.Int("batch-size", 0, "Размер батча (по умолчанию из конфигурации)")
	progressPtr := flag.String("progress-addr", "", "Адрес сервера прогресса, например :8091")
	archivePtr := flag.Bool("archive-log", false, "Архивировать журнал исключений после завершения")

	flag.Parse()

	cfg := config.GetConfig()
	if *sourcePtr != "" {
		cfg.SourceFile = *sourcePtr
	}
	if *batchSizePtr > 0 {
		cfg.BatchSize = *batchSizePtr
	}
	if *progressPtr != "" {
		cfg.ProgressAddr = *progressPtr
	}
	if *archivePtr {
		cfg.ArchiveExclusionLog = true
	}

	log.Println("Запуск конвейера в режиме:", *modePtr)

	switch *modePtr {
	case "once":
		RunOnce(cfg)
	case "scheduled":
		RunScheduled(cfg)
	case "benchmark":
		RunBenchmark()
	default:
		log.Println("Неизвестный режим работы:", *modePtr)
		log.Println("Доступные режимы: once, scheduled, benchmark")
		os.Exit(1)
	}

	log.Println("Конвейер завершил работу")
}
