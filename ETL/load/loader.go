package load

import (
	"github.com/LilVoxy/taxi_analytics/ETL/models"
)

// Loader интерфейс загрузки данных в хранилище поездок
type Loader interface {
	// LoadVendors идемпотентно загружает измерение вендоров
	LoadVendors(vendors []models.Vendor) (int, error)

	// LoadTripFacts дозаписывает факты поездок.
	// Возвращает количество загруженных строк и количество строк,
	// отброшенных хранилищем как дубликаты из предыдущих батчей.
	LoadTripFacts(facts []models.TripFact) (loaded, skipped int, err error)
}
