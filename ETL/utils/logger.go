package utils

import (
	"fmt"
	"log"
	"os"
	"time"
)

// ETLLogger представляет логгер для конвейера загрузки поездок
type ETLLogger struct {
	infoLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
	isVerbose   bool
}

// NewETLLogger создает новый экземпляр логгера для конвейера
func NewETLLogger(verbose bool) *ETLLogger {
	// Создаем или открываем лог-файл для записи
	currentTime := time.Now().Format("2006-01-02")
	logFileName := fmt.Sprintf("pipeline_log_%s.log", currentTime)

	file, err := os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Не удалось открыть или создать файл лога: %v", err)
	}

	// Инициализируем логгеры для разных уровней
	infoLogger := log.New(file, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	errorLogger := log.New(file, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	debugLogger := log.New(file, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)

	return &ETLLogger{
		infoLogger:  infoLogger,
		errorLogger: errorLogger,
		debugLogger: debugLogger,
		isVerbose:   verbose,
	}
}

// Info логирует информационное сообщение
func (l *ETLLogger) Info(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.infoLogger.Println(msg)

	// Также выводим в стандартный вывод
	log.Println("INFO:", msg)
}

// Error логирует сообщение об ошибке
func (l *ETLLogger) Error(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.errorLogger.Println(msg)

	// Также выводим в стандартный вывод
	log.Println("ERROR:", msg)
}

// Debug логирует отладочное сообщение (только если включен verbose режим)
func (l *ETLLogger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}

	msg := fmt.Sprintf(format, v...)
	l.debugLogger.Println(msg)

	// Также выводим в стандартный вывод
	log.Println("DEBUG:", msg)
}

// LogPipelineStart логирует начало работы конвейера
func (l *ETLLogger) LogPipelineStart(sourceFile string, batchSize int) {
	l.Info("Начало обработки данных поездок. Источник: %s, размер батча: %d", sourceFile, batchSize)
}

// LogBatchComplete логирует завершение обработки одного батча
func (l *ETLLogger) LogBatchComplete(batchNumber, rowsRead, rowsLoaded, excluded int) {
	l.Info("Обработан батч %d: всего прочитано строк %d, загружено %d, исключено %d",
		batchNumber, rowsRead, rowsLoaded, excluded)
}

// LogPipelineComplete логирует завершение работы конвейера
func (l *ETLLogger) LogPipelineComplete(startTime time.Time, rowsRead, rowsLoaded int) {
	duration := time.Since(startTime)
	l.Info("Обработка данных завершена. Длительность: %v", duration)
	l.Info("Всего прочитано строк: %d, загружено фактов: %d", rowsRead, rowsLoaded)
}
