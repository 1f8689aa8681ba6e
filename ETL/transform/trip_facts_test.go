package transform

import (
	"os"
	"testing"

	"github.com/LilVoxy/taxi_analytics/ETL/models"
	"github.com/LilVoxy/taxi_analytics/ETL/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

// validRow строит валидную строку поездки: (0,0) -> (0,1), 600 секунд
func validRow(id string) models.TripRow {
	return models.TripRow{
		ID:               id,
		PickupDatetime:   "2016-03-14 17:24:55",
		DropoffDatetime:  "2016-03-14 17:34:55",
		PickupLongitude:  floatPtr(0),
		PickupLatitude:   floatPtr(0),
		DropoffLongitude: floatPtr(0),
		DropoffLatitude:  floatPtr(1),
		TripDuration:     floatPtr(600),
	}
}

// chdirTemp повторяет t.Chdir (Go 1.24) на старом тулчейне
func chdirTemp(t *testing.T) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func newProcessor(t *testing.T) *TripFactsProcessor {
	t.Helper()
	chdirTemp(t) // логгер пишет файл в рабочий каталог
	return NewTripFactsProcessor(utils.NewETLLogger(false))
}

func TestProcessBatchDerivesFeatures(t *testing.T) {
	p := newProcessor(t)

	outcome := p.ProcessBatch([]models.TripRow{validRow("a")})
	require.Len(t, outcome.Kept, 1)

	fact := outcome.Kept[0]
	miles := HaversineDistance(0, 0, 0, 1)

	assert.InEpsilon(t, miles, fact.TripDistance, 1e-9)
	assert.InEpsilon(t, miles*1.60934, fact.TripDistanceKM, 1e-9)
	assert.InEpsilon(t, fact.TripDistanceKM/(600.0/3600.0), fact.TripSpeed, 1e-9)
	assert.InEpsilon(t, 2.50+miles*2.50+(600.0/60.0)*0.50, fact.FareAmount, 1e-9)
	assert.InEpsilon(t, fact.FareAmount/fact.TripDistanceKM, fact.FarePerKM, 1e-9)
	assert.Equal(t, 0.0, fact.IdleTime)
	assert.GreaterOrEqual(t, fact.FarePerKM, 0.0)
}

func TestProcessBatchNullExclusion(t *testing.T) {
	p := newProcessor(t)

	noID := validRow("")
	noDuration := validRow("b")
	noDuration.TripDuration = nil
	noCoordinate := validRow("c")
	noCoordinate.DropoffLatitude = nil // расстояние не вычислимо -> NULL

	outcome := p.ProcessBatch([]models.TripRow{noID, noDuration, noCoordinate, validRow("d")})

	assert.Len(t, outcome.NullExcluded, 3)
	assert.Empty(t, outcome.DupExcluded)
	assert.Empty(t, outcome.InvalidExcluded)
	require.Len(t, outcome.Kept, 1)
	assert.Equal(t, "d", outcome.Kept[0].ID)
}

func TestProcessBatchDuplicateKeepsFirst(t *testing.T) {
	p := newProcessor(t)

	first := validRow("a")
	second := validRow("a")

	outcome := p.ProcessBatch([]models.TripRow{first, second})

	require.Len(t, outcome.Kept, 1)
	assert.Equal(t, "a", outcome.Kept[0].ID)
	assert.Len(t, outcome.DupExcluded, 1)
	assert.Empty(t, outcome.NullExcluded)
	assert.Empty(t, outcome.InvalidExcluded)
}

func TestProcessBatchDuplicateCheckedBeforeValidity(t *testing.T) {
	p := newProcessor(t)

	// Второе вхождение id отсеивается как дубликат, а не как некорректное,
	// даже если его длительность неположительна
	bad := validRow("a")
	bad.TripDuration = floatPtr(-5)

	outcome := p.ProcessBatch([]models.TripRow{validRow("a"), bad})

	assert.Len(t, outcome.Kept, 1)
	assert.Len(t, outcome.DupExcluded, 1)
	assert.Empty(t, outcome.InvalidExcluded)
}

func TestProcessBatchInvalidExclusion(t *testing.T) {
	p := newProcessor(t)

	negativeDuration := validRow("a")
	negativeDuration.TripDuration = floatPtr(-5)

	zeroDuration := validRow("b")
	zeroDuration.TripDuration = floatPtr(0)

	// Совпадающие координаты дают нулевое расстояние
	zeroDistance := validRow("c")
	zeroDistance.DropoffLatitude = floatPtr(0)

	outcome := p.ProcessBatch([]models.TripRow{negativeDuration, zeroDuration, zeroDistance, validRow("d")})

	assert.Len(t, outcome.InvalidExcluded, 3)
	require.Len(t, outcome.Kept, 1)
	assert.Equal(t, "d", outcome.Kept[0].ID)
}

func TestProcessBatchAccounting(t *testing.T) {
	p := newProcessor(t)

	noDuration := validRow("x")
	noDuration.TripDuration = nil
	invalid := validRow("y")
	invalid.TripDuration = floatPtr(-1)

	rows := []models.TripRow{
		validRow("a"),
		noDuration,
		validRow("a"), // дубликат
		invalid,
		validRow("b"),
	}

	outcome := p.ProcessBatch(rows)

	total := len(outcome.Kept) + len(outcome.NullExcluded) +
		len(outcome.DupExcluded) + len(outcome.InvalidExcluded)
	assert.Equal(t, outcome.Input, total)
	assert.Equal(t, len(rows), outcome.Input)
}

func TestProcessBatchKeepsInputOrder(t *testing.T) {
	p := newProcessor(t)

	outcome := p.ProcessBatch([]models.TripRow{validRow("a"), validRow("b"), validRow("c")})

	require.Len(t, outcome.Kept, 3)
	assert.Equal(t, "a", outcome.Kept[0].ID)
	assert.Equal(t, "b", outcome.Kept[1].ID)
	assert.Equal(t, "c", outcome.Kept[2].ID)
}

func TestProcessBatchEmptyInput(t *testing.T) {
	p := newProcessor(t)

	outcome := p.ProcessBatch(nil)

	assert.Equal(t, 0, outcome.Input)
	assert.Empty(t, outcome.Kept)
}
