package ranking

import (
	"fmt"

	"github.com/LilVoxy/taxi_analytics/ETL/models"
)

// metricFunc извлекает числовое значение метрики из факта поездки
type metricFunc func(*models.TripFact) float64

// Реестр метрик, по которым поддерживается ранжирование.
// Ключи совпадают с именами колонок таблицы trips.
var metricAccessors = map[string]metricFunc{
	"trip_distance":    func(f *models.TripFact) float64 { return f.TripDistance },
	"trip_distance_km": func(f *models.TripFact) float64 { return f.TripDistanceKM },
	"trip_duration":    func(f *models.TripFact) float64 { return f.TripDuration },
	"trip_speed":       func(f *models.TripFact) float64 { return f.TripSpeed },
	"fare_amount":      func(f *models.TripFact) float64 { return f.FareAmount },
	"fare_per_km":      func(f *models.TripFact) float64 { return f.FarePerKM },
	"idle_time":        func(f *models.TripFact) float64 { return f.IdleTime },
	"passenger_count": func(f *models.TripFact) float64 {
		if f.PassengerCount == nil {
			return 0
		}
		return float64(*f.PassengerCount)
	},
}

// RankableMetric сообщает, поддерживается ли ранжирование по данному ключу.
// Тот же реестр служит белым списком колонок при построении SQL-запросов.
func RankableMetric(key string) bool {
	_, ok := metricAccessors[key]
	return ok
}

// Rank возвращает новую последовательность фактов, упорядоченную по числовому
// значению метрики key: строго по убыванию при descending, иначе по возрастанию.
// Вход не изменяется. Пустой вход дает пустой результат без ошибки.
//
// Неизвестный ключ — нарушение контракта вызывающей стороной, Rank отвечает
// на него явной ошибкой до обращения к данным (выбор зафиксирован в DESIGN.md).
//
// Сортировка устойчива: факты с равными значениями метрики сохраняют взаимный
// порядок входа. Реализация — сортировка слиянием, гарантированно O(n log n);
// усечение результата (top-N) остается заботой вызывающей стороны.
func Rank(facts []models.TripFact, key string, descending bool) ([]models.TripFact, error) {
	metric, ok := metricAccessors[key]
	if !ok {
		return nil, fmt.Errorf("неизвестный ключ ранжирования: %q", key)
	}

	ranked := make([]models.TripFact, len(facts))
	copy(ranked, facts)

	buf := make([]models.TripFact, len(ranked))
	mergeSort(ranked, buf, metric, descending)

	return ranked, nil
}

// mergeSort устойчиво сортирует data на месте, используя buf той же длины
// как временный буфер слияния
func mergeSort(data, buf []models.TripFact, metric metricFunc, descending bool) {
	if len(data) < 2 {
		return
	}

	mid := len(data) / 2
	mergeSort(data[:mid], buf[:mid], metric, descending)
	mergeSort(data[mid:], buf[mid:], metric, descending)

	merge(data, buf, mid, metric, descending)
}

// merge сливает две отсортированные половины data (граница mid) через buf.
// При равных значениях метрики элемент левой половины берется первым —
// это и обеспечивает устойчивость.
func merge(data, buf []models.TripFact, mid int, metric metricFunc, descending bool) {
	copy(buf, data)
	left, right := buf[:mid], buf[mid:]

	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if takeLeft(metric(&left[i]), metric(&right[j]), descending) {
			data[k] = left[i]
			i++
		} else {
			data[k] = right[j]
			j++
		}
		k++
	}

	for i < len(left) {
		data[k] = left[i]
		i++
		k++
	}
	for j < len(right) {
		data[k] = right[j]
		j++
		k++
	}
}

// takeLeft решает, какой элемент идет первым при слиянии
func takeLeft(leftValue, rightValue float64, descending bool) bool {
	if descending {
		return leftValue >= rightValue
	}
	return leftValue <= rightValue
}
