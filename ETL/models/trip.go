package models

import (
	"time"
)

// TripRow представляет сырую строку поездки из исходного CSV-файла.
// Указатели используются для полей, которые могут отсутствовать в источнике
// (пустая ячейка или непарсируемое значение считаются NULL).
type TripRow struct {
	Line             int // номер строки в исходном файле (для аудита)
	ID               string
	VendorID         *int
	PickupDatetime   string
	DropoffDatetime  string
	PassengerCount   *int
	PickupLongitude  *float64
	PickupLatitude   *float64
	DropoffLongitude *float64
	DropoffLatitude  *float64
	TripDuration     *float64

	// TripDistance вычисляется на этапе Transform по координатам.
	// NULL, если хотя бы одна из четырех координат отсутствует.
	TripDistance *float64

	// Raw хранит исходные значения ячеек для записи в журнал исключений
	Raw []string
}

// TripFact представляет очищенную и обогащенную запись поездки,
// готовую к загрузке в таблицу фактов trips.
// После загрузки запись неизменяема.
type TripFact struct {
	ID               string   `json:"id"`
	VendorID         *int     `json:"vendor_id"`
	PickupDatetime   string   `json:"pickup_datetime"`
	DropoffDatetime  string   `json:"dropoff_datetime"`
	PassengerCount   *int     `json:"passenger_count"`
	TripDistance     float64  `json:"trip_distance"` // мили
	TripDistanceKM   float64  `json:"trip_distance_km"`
	PickupLongitude  float64  `json:"pickup_longitude"`
	PickupLatitude   float64  `json:"pickup_latitude"`
	DropoffLongitude float64  `json:"dropoff_longitude"`
	DropoffLatitude  float64  `json:"dropoff_latitude"`
	FareAmount       float64  `json:"fare_amount"`
	TipAmount        *float64 `json:"tip_amount"`
	TripDuration     float64  `json:"trip_duration"` // секунды
	TripSpeed        float64  `json:"trip_speed"`    // км/ч
	FarePerKM        float64  `json:"fare_per_km"`
	IdleTime         float64  `json:"idle_time"` // зарезервировано, пока всегда 0
}

// Vendor представляет запись измерения вендоров.
// Создается один раз перед загрузкой фактов, далее только читается.
type Vendor struct {
	ID       int    `json:"id"`
	FullName string `json:"fullname"`
}

// BatchOutcome содержит результат валидации и обогащения одного батча.
// Инвариант: len(Kept) + len(NullExcluded) + len(DupExcluded) +
// len(InvalidExcluded) == Input.
type BatchOutcome struct {
	Input           int
	Kept            []TripFact
	NullExcluded    []TripRow
	DupExcluded     []TripRow
	InvalidExcluded []TripRow
}

// PipelineStats содержит накопленные счетчики одного запуска конвейера
type PipelineStats struct {
	StartTime       time.Time
	EndTime         time.Time
	VendorsLoaded   int
	BatchCount      int
	RowsRead        int // всего прочитано строк источника (не только загруженных)
	RowsLoaded      int
	NullExcluded    int
	DupExcluded     int
	InvalidExcluded int
	StoreDupSkipped int // дубликаты между батчами, отброшенные хранилищем
}

// ProgressUpdate представляет снимок прогресса конвейера,
// рассылаемый подписчикам после каждого батча
type ProgressUpdate struct {
	Batch      int  `json:"batch"`
	RowsRead   int  `json:"rows_read"`
	RowsLoaded int  `json:"rows_loaded"`
	Excluded   int  `json:"excluded"`
	Done       bool `json:"done"`
}
