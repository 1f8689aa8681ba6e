package transform

import (
	"github.com/LilVoxy/taxi_analytics/ETL/models"
	"github.com/LilVoxy/taxi_analytics/ETL/utils"
)

// Коэффициенты обогащения
const (
	milesToKM = 1.60934

	// Тарифная модель: посадка + за милю + за минуту
	fareBase    = 2.50
	farePerMile = 2.50
	farePerMin  = 0.50
)

// TripFactsProcessor выполняет валидацию и обогащение одного батча поездок.
// Не имеет состояния между батчами: дубликаты между батчами отлавливаются
// уникальным индексом хранилища на этапе загрузки.
type TripFactsProcessor struct {
	logger *utils.ETLLogger
}

// NewTripFactsProcessor создает новый экземпляр TripFactsProcessor
func NewTripFactsProcessor(logger *utils.ETLLogger) *TripFactsProcessor {
	return &TripFactsProcessor{
		logger: logger,
	}
}

// ProcessBatch обрабатывает один батч строк источника:
//  1. вычисляет расстояние поездки по координатам;
//  2. отсеивает строки с NULL в обязательных полях (id, trip_duration,
//     производное trip_distance);
//  3. среди оставшихся отсеивает дубликаты id внутри батча
//     (первое вхождение сохраняется);
//  4. отсеивает строки с неположительной длительностью или расстоянием;
//  5. обогащает выжившие строки производными метриками.
//
// Инвариант результата: len(Kept) + len(NullExcluded) + len(DupExcluded) +
// len(InvalidExcluded) == Input.
func (p *TripFactsProcessor) ProcessBatch(rows []models.TripRow) *models.BatchOutcome {
	outcome := &models.BatchOutcome{
		Input: len(rows),
	}

	// 1. Вычисляем расстояние поездки по четырем координатам.
	// Если хотя бы одна координата отсутствует, расстояние остается NULL
	// и строка будет отсеяна на следующем шаге.
	for i := range rows {
		row := &rows[i]
		if row.PickupLongitude == nil || row.PickupLatitude == nil ||
			row.DropoffLongitude == nil || row.DropoffLatitude == nil {
			continue
		}

		distance := HaversineDistance(
			*row.PickupLongitude,
			*row.PickupLatitude,
			*row.DropoffLongitude,
			*row.DropoffLatitude,
		)
		row.TripDistance = &distance
	}

	// 2. Отсеиваем строки с NULL в критических полях
	nonNull := make([]models.TripRow, 0, len(rows))
	for _, row := range rows {
		if row.ID == "" || row.TripDuration == nil || row.TripDistance == nil {
			outcome.NullExcluded = append(outcome.NullExcluded, row)
			continue
		}
		nonNull = append(nonNull, row)
	}

	// 3. Отсеиваем дубликаты id внутри батча, первое вхождение сохраняется.
	// Дубликаты между батчами на этом этапе не обнаруживаются.
	seen := make(map[string]bool, len(nonNull))
	unique := make([]models.TripRow, 0, len(nonNull))
	for _, row := range nonNull {
		if seen[row.ID] {
			outcome.DupExcluded = append(outcome.DupExcluded, row)
			continue
		}
		seen[row.ID] = true
		unique = append(unique, row)
	}

	// 4-5. Отсеиваем некорректные строки и обогащаем выжившие
	for _, row := range unique {
		if *row.TripDuration <= 0 || *row.TripDistance <= 0 {
			outcome.InvalidExcluded = append(outcome.InvalidExcluded, row)
			continue
		}

		fact := enrich(row)

		// Защитный фильтр: тариф неотрицателен по построению, так что
		// отрицательный fare_per_km возможен только при ошибке в модели
		if fact.FarePerKM < 0 {
			outcome.InvalidExcluded = append(outcome.InvalidExcluded, row)
			continue
		}

		outcome.Kept = append(outcome.Kept, fact)
	}

	return outcome
}

// enrich строит факт поездки с производными метриками из валидной строки
func enrich(row models.TripRow) models.TripFact {
	distanceMiles := *row.TripDistance
	durationSec := *row.TripDuration

	distanceKM := distanceMiles * milesToKM
	speedKPH := distanceKM / (durationSec / 3600)
	fare := fareBase + distanceMiles*farePerMile + (durationSec/60)*farePerMin

	// distance_km может численно обнулиться на экстремально малых
	// расстояниях; в этом случае fare_per_km заполняется нулем
	farePerKM := 0.0
	if distanceKM != 0 {
		farePerKM = fare / distanceKM
	}

	return models.TripFact{
		ID:               row.ID,
		VendorID:         row.VendorID,
		PickupDatetime:   row.PickupDatetime,
		DropoffDatetime:  row.DropoffDatetime,
		PassengerCount:   row.PassengerCount,
		TripDistance:     distanceMiles,
		TripDistanceKM:   distanceKM,
		PickupLongitude:  *row.PickupLongitude,
		PickupLatitude:   *row.PickupLatitude,
		DropoffLongitude: *row.DropoffLongitude,
		DropoffLatitude:  *row.DropoffLatitude,
		FareAmount:       fare,
		TripDuration:     durationSec,
		TripSpeed:        speedKPH,
		FarePerKM:        farePerKM,
		IdleTime:         0, // зарезервировано, из источника пока не вычисляется
	}
}
