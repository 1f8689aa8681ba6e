package config

import (
	"time"
)

// ETLConfig содержит конфигурацию для конвейера загрузки поездок
type ETLConfig struct {
	// Конфигурация подключения к хранилищу фактов
	DBConfig DatabaseConfig `json:"db_config"`

	// Путь к исходному CSV-файлу с поездками
	SourceFile string `json:"source_file"`

	// Количество строк источника, обрабатываемых за один батч
	BatchSize int `json:"batch_size"`

	// Путь к журналу исключенных записей
	ExclusionLogPath string `json:"exclusion_log_path"`

	// Архивировать ли завершенный журнал исключений (snappy)
	ArchiveExclusionLog bool `json:"archive_exclusion_log"`

	// Интервал запуска конвейера в режиме scheduled
	RunInterval time.Duration `json:"run_interval"`

	// Адрес HTTP-сервера прогресса (пустая строка — сервер не запускается)
	ProgressAddr string `json:"progress_addr"`

	// Включение/отключение подробного логирования
	EnableDetailedLogging bool `json:"enable_detailed_logging"`
}

// DatabaseConfig содержит настройки подключения к базе данных
type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
}

// Значения конфигурации по умолчанию
var (
	DefaultDBConfig = DatabaseConfig{
		Driver:   "mysql",
		Host:     "localhost",
		Port:     3306,
		User:     "root",
		Password: "Vjnbkmlf40782",
		DBName:   "taxi_trips",
	}

	DefaultETLConfig = ETLConfig{
		DBConfig:              DefaultDBConfig,
		SourceFile:            "train.csv",
		BatchSize:             100000,
		ExclusionLogPath:      "excluded_records.log",
		ArchiveExclusionLog:   false,
		RunInterval:           24 * time.Hour,
		ProgressAddr:          "",
		EnableDetailedLogging: true,
	}
)

// GetConfig возвращает конфигурацию конвейера
func GetConfig() ETLConfig {
	return DefaultETLConfig
}
