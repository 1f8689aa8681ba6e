package extractors

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/LilVoxy/taxi_analytics/ETL/models"
	"github.com/LilVoxy/taxi_analytics/ETL/utils"
)

// CSVExtractor читает исходный CSV-файл поездок батчами фиксированного размера.
// Файл никогда не загружается в память целиком.
type CSVExtractor struct {
	path      string
	batchSize int
	logger    *utils.ETLLogger
}

// NewCSVExtractor создает новый экземпляр CSVExtractor
func NewCSVExtractor(path string, batchSize int, logger *utils.ETLLogger) *CSVExtractor {
	return &CSVExtractor{
		path:      path,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Columns возвращает список колонок исходного файла (строка заголовка)
func (e *CSVExtractor) Columns() ([]string, error) {
	file, err := os.Open(e.path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть исходный файл %s: %w", e.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать заголовок исходного файла: %w", err)
	}

	return header, nil
}

// ExtractVendorIDs сканирует только колонку vendor_id и возвращает множество
// уникальных непустых идентификаторов вендоров в порядке первого появления.
// Остальные колонки не разбираются.
func (e *CSVExtractor) ExtractVendorIDs() ([]int, error) {
	file, err := os.Open(e.path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть исходный файл %s: %w", e.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать заголовок исходного файла: %w", err)
	}

	vendorIdx := -1
	for i, name := range header {
		if name == "vendor_id" {
			vendorIdx = i
			break
		}
	}
	if vendorIdx == -1 {
		return nil, fmt.Errorf("в исходном файле отсутствует колонка vendor_id")
	}

	seen := make(map[int]bool)
	ids := make([]int, 0)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения исходного файла: %w", err)
		}

		if vendorIdx >= len(record) {
			continue
		}

		id, ok := parseVendorID(record[vendorIdx])
		if !ok {
			// Пустые и непарсируемые значения пропускаем
			continue
		}

		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	e.logger.Debug("Найдено %d уникальных вендоров в исходном файле", len(ids))
	return ids, nil
}

// StreamBatches читает исходный файл в порядке следования строк и вызывает
// handle для каждого батча размером batchSize (последний батч может быть короче).
// Возвращает общее количество прочитанных строк источника.
func (e *CSVExtractor) StreamBatches(handle func(batchNumber int, rows []models.TripRow) error) (int, error) {
	file, err := os.Open(e.path)
	if err != nil {
		return 0, fmt.Errorf("не удалось открыть исходный файл %s: %w", e.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("не удалось прочитать заголовок исходного файла: %w", err)
	}

	columnIdx := make(map[string]int, len(header))
	for i, name := range header {
		columnIdx[name] = i
	}

	totalRows := 0
	batchNumber := 0
	line := 1 // строка заголовка уже прочитана
	batch := make([]models.TripRow, 0, e.batchSize)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return totalRows, fmt.Errorf("ошибка чтения исходного файла: %w", err)
		}

		line++
		totalRows++
		batch = append(batch, parseTripRow(record, columnIdx, line))

		if len(batch) == e.batchSize {
			batchNumber++
			if err := handle(batchNumber, batch); err != nil {
				return totalRows, err
			}
			batch = make([]models.TripRow, 0, e.batchSize)
		}
	}

	// Последний неполный батч
	if len(batch) > 0 {
		batchNumber++
		if err := handle(batchNumber, batch); err != nil {
			return totalRows, err
		}
	}

	return totalRows, nil
}

// parseTripRow разбирает одну запись CSV в TripRow.
// Отсутствующие и непарсируемые значения становятся NULL (nil),
// решение об исключении строки принимает этап валидации.
func parseTripRow(record []string, columnIdx map[string]int, line int) models.TripRow {
	raw := make([]string, len(record))
	copy(raw, record)

	field := func(name string) string {
		idx, ok := columnIdx[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	return models.TripRow{
		Line:             line,
		ID:               field("id"),
		VendorID:         nullableInt(field("vendor_id")),
		PickupDatetime:   field("pickup_datetime"),
		DropoffDatetime:  field("dropoff_datetime"),
		PassengerCount:   nullableInt(field("passenger_count")),
		PickupLongitude:  nullableFloat(field("pickup_longitude")),
		PickupLatitude:   nullableFloat(field("pickup_latitude")),
		DropoffLongitude: nullableFloat(field("dropoff_longitude")),
		DropoffLatitude:  nullableFloat(field("dropoff_latitude")),
		TripDuration:     nullableFloat(field("trip_duration")),
		Raw:              raw,
	}
}

// parseVendorID разбирает значение колонки vendor_id.
// Дробные значения вида "1.0" приводятся к целому, как делал исходный загрузчик.
func parseVendorID(value string) (int, bool) {
	if value == "" {
		return 0, false
	}

	if id, err := strconv.Atoi(value); err == nil {
		return id, true
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int(f), true
	}

	return 0, false
}

func nullableInt(value string) *int {
	id, ok := parseVendorID(value)
	if !ok {
		return nil
	}
	return &id
}

func nullableFloat(value string) *float64 {
	if value == "" {
		return nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}
