package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/LilVoxy/taxi_analytics/ETL/models"
	"github.com/golang/snappy"
)

// Заголовки секций журнала исключений.
// Формат файла устоявшийся, его читают люди при разборе инцидентов.
const (
	nullSectionHeader    = "--- Excluded due to NULL values ---"
	dupSectionHeader     = "--- Excluded due to duplicate ID ---"
	invalidSectionHeader = "--- Excluded due to invalid trip data ---"
)

// ExclusionLog ведет append-only журнал строк, отброшенных при валидации.
// Записи группируются по причине исключения отдельно для каждого батча.
// Журнал только пишется, конвейер никогда не читает его обратно.
type ExclusionLog struct {
	path    string
	file    *os.File
	columns []string
}

// NewExclusionLog открывает (или создает) журнал исключений для дозаписи.
// columns — имена колонок исходного файла, выводятся в начале каждой секции.
func NewExclusionLog(path string, columns []string) (*ExclusionLog, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть журнал исключений %s: %w", path, err)
	}

	return &ExclusionLog{
		path:    path,
		file:    file,
		columns: columns,
	}, nil
}

// LogBatch дописывает в журнал исключенные строки одного батча,
// разбитые на три секции по причине исключения.
// Пустые секции не записываются.
func (l *ExclusionLog) LogBatch(batchNumber int, outcome *models.BatchOutcome) error {
	if len(outcome.NullExcluded) == 0 && len(outcome.DupExcluded) == 0 && len(outcome.InvalidExcluded) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== Batch %d ===\n", batchNumber)

	l.writeSection(&b, nullSectionHeader, outcome.NullExcluded)
	l.writeSection(&b, dupSectionHeader, outcome.DupExcluded)
	l.writeSection(&b, invalidSectionHeader, outcome.InvalidExcluded)

	if _, err := l.file.WriteString(b.String()); err != nil {
		return fmt.Errorf("ошибка записи в журнал исключений: %w", err)
	}

	return nil
}

// writeSection записывает одну секцию журнала с полными исходными строками
func (l *ExclusionLog) writeSection(b *strings.Builder, header string, rows []models.TripRow) {
	if len(rows) == 0 {
		return
	}

	b.WriteString(header)
	b.WriteString("\n")
	fmt.Fprintf(b, "line\t%s\n", strings.Join(l.columns, "\t"))

	for _, row := range rows {
		fmt.Fprintf(b, "%d\t%s\n", row.Line, strings.Join(row.Raw, "\t"))
	}
}

// Close закрывает файл журнала
func (l *ExclusionLog) Close() error {
	return l.file.Close()
}

// Archive сжимает завершенный журнал исключений (snappy) и удаляет оригинал.
// Возвращает путь к архиву. Журнал должен быть закрыт перед вызовом.
func (l *ExclusionLog) Archive() (string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return "", fmt.Errorf("не удалось прочитать журнал исключений для архивации: %w", err)
	}

	archivePath := l.path + ".snappy"
	compressed := snappy.Encode(nil, data)

	if err := os.WriteFile(archivePath, compressed, 0666); err != nil {
		return "", fmt.Errorf("не удалось записать архив журнала исключений: %w", err)
	}

	if err := os.Remove(l.path); err != nil {
		return "", fmt.Errorf("не удалось удалить исходный журнал после архивации: %w", err)
	}

	return archivePath, nil
}

// ReadArchive распаковывает архив журнала исключений
func ReadArchive(archivePath string) ([]byte, error) {
	compressed, err := os.ReadFile(archivePath)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать архив журнала исключений: %w", err)
	}

	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("не удалось распаковать архив журнала исключений: %w", err)
	}

	return data, nil
}
