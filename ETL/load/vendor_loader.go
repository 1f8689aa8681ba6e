package load

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/LilVoxy/taxi_analytics/ETL/models"
	"github.com/LilVoxy/taxi_analytics/ETL/utils"
)

// Фиксированное соответствие известных идентификаторов вендоров именам
var vendorNames = map[int]string{
	1: "Vendor_1",
	2: "Vendor_2",
}

// VendorName возвращает отображаемое имя вендора.
// Для неизвестных идентификаторов синтезируется имя Unknown_Vendor_<id>.
func VendorName(id int) string {
	if name, ok := vendorNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown_Vendor_%d", id)
}

// BuildVendors строит записи измерения вендоров из списка идентификаторов
func BuildVendors(ids []int) []models.Vendor {
	vendors := make([]models.Vendor, 0, len(ids))
	for _, id := range ids {
		vendors = append(vendors, models.Vendor{
			ID:       id,
			FullName: VendorName(id),
		})
	}
	return vendors
}

// VendorLoader отвечает за загрузку измерения вендоров.
// Измерение заполняется один раз перед загрузкой фактов, так как
// факты объявляют внешний ключ на vendors.id.
type VendorLoader struct {
	db     *sql.DB
	logger *utils.ETLLogger
}

// NewVendorLoader создает новый экземпляр VendorLoader
func NewVendorLoader(db *sql.DB, logger *utils.ETLLogger) *VendorLoader {
	return &VendorLoader{
		db:     db,
		logger: logger,
	}
}

// Load идемпотентно загружает вендоров в таблицу измерения.
// Повторный запуск не создает дубликатов и не считается ошибкой:
// уже существующие записи пропускаются через INSERT IGNORE.
func (l *VendorLoader) Load(vendors []models.Vendor) (int, error) {
	if len(vendors) == 0 {
		l.logger.Debug("Нет вендоров для загрузки")
		return 0, nil
	}

	startTime := time.Now()
	l.logger.Info("Начало загрузки измерения вендоров (всего: %d)", len(vendors))

	stmt, err := l.db.Prepare(`
		INSERT IGNORE INTO vendors (id, fullname)
		VALUES (?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("ошибка при подготовке запроса: %w", err)
	}
	defer stmt.Close()

	// Начинаем транзакцию
	tx, err := l.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}

	txStmt := tx.Stmt(stmt)
	defer txStmt.Close()

	processed := 0
	errors := 0

	for _, vendor := range vendors {
		if _, err := txStmt.Exec(vendor.ID, vendor.FullName); err != nil {
			l.logger.Error("Ошибка при вставке вендора %d (%s): %v", vendor.ID, vendor.FullName, err)
			errors++
			continue
		}
		processed++
	}

	if errors > 0 {
		tx.Rollback()
		return 0, fmt.Errorf("произошло %d ошибок при загрузке вендоров", errors)
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	duration := time.Since(startTime)
	l.logger.Info("Загрузка измерения вендоров завершена. Обработано записей: %d. Длительность: %v", processed, duration)

	return processed, nil
}
