package load

import (
	"database/sql"
	"fmt"

	"github.com/LilVoxy/taxi_analytics/ETL/models"
	"github.com/LilVoxy/taxi_analytics/ETL/utils"
)

// LoadManager отвечает за управление процессом загрузки данных в хранилище.
// Реализует Loader поверх загрузчиков отдельных таблиц.
type LoadManager struct {
	db           *sql.DB
	logger       *utils.ETLLogger
	vendorLoader *VendorLoader
	tripLoader   *TripLoader
}

// NewLoadManager создает новый экземпляр LoadManager
func NewLoadManager(db *sql.DB, logger *utils.ETLLogger) *LoadManager {
	return &LoadManager{
		db:           db,
		logger:       logger,
		vendorLoader: NewVendorLoader(db, logger),
		tripLoader:   NewTripLoader(db, logger),
	}
}

// LoadVendors идемпотентно загружает измерение вендоров
func (m *LoadManager) LoadVendors(vendors []models.Vendor) (int, error) {
	processed, err := m.vendorLoader.Load(vendors)
	if err != nil {
		return 0, fmt.Errorf("ошибка при загрузке измерения вендоров: %w", err)
	}
	return processed, nil
}

// LoadTripFacts дозаписывает факты поездок одного батча
func (m *LoadManager) LoadTripFacts(facts []models.TripFact) (loaded, skipped int, err error) {
	loaded, skipped, err = m.tripLoader.Load(facts)
	if err != nil {
		return 0, 0, fmt.Errorf("ошибка при загрузке фактов поездок: %w", err)
	}
	return loaded, skipped, nil
}
