package ranking

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/LilVoxy/taxi_analytics/ETL/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func factsWithFarePerKM(values ...float64) []models.TripFact {
	facts := make([]models.TripFact, len(values))
	for i, v := range values {
		facts[i] = models.TripFact{
			ID:        fmt.Sprintf("t%d", i),
			FarePerKM: v,
		}
	}
	return facts
}

func farePerKMValues(facts []models.TripFact) []float64 {
	values := make([]float64, len(facts))
	for i, f := range facts {
		values[i] = f.FarePerKM
	}
	return values
}

func TestRankDescending(t *testing.T) {
	ranked, err := Rank(factsWithFarePerKM(3, 1, 2), "fare_per_km", true)

	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2, 1}, farePerKMValues(ranked))
}

func TestRankAscending(t *testing.T) {
	ranked, err := Rank(factsWithFarePerKM(3, 1, 2), "fare_per_km", false)

	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, farePerKMValues(ranked))
}

func TestRankStability(t *testing.T) {
	// Записи с равными значениями метрики сохраняют взаимный порядок входа
	facts := []models.TripFact{
		{ID: "a", FarePerKM: 2},
		{ID: "b", FarePerKM: 1},
		{ID: "c", FarePerKM: 2},
		{ID: "d", FarePerKM: 1},
		{ID: "e", FarePerKM: 2},
	}

	descending, err := Rank(facts, "fare_per_km", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "e", "b", "d"}, ids(descending))

	ascending, err := Rank(facts, "fare_per_km", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, ids(ascending))
}

func ids(facts []models.TripFact) []string {
	result := make([]string, len(facts))
	for i, f := range facts {
		result[i] = f.ID
	}
	return result
}

func TestRankIsPermutationAndDoesNotMutateInput(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	facts := make([]models.TripFact, 500)
	for i := range facts {
		facts[i] = models.TripFact{
			ID:        fmt.Sprintf("t%d", i),
			FarePerKM: rng.Float64() * 100,
		}
	}

	original := make([]models.TripFact, len(facts))
	copy(original, facts)

	ranked, err := Rank(facts, "fare_per_km", true)
	require.NoError(t, err)

	// Вход не изменился
	assert.Equal(t, original, facts)

	// Результат — перестановка входа той же длины
	require.Len(t, ranked, len(facts))
	inputIDs := make(map[string]int)
	for _, f := range facts {
		inputIDs[f.ID]++
	}
	for _, f := range ranked {
		inputIDs[f.ID]--
	}
	for id, count := range inputIDs {
		assert.Zero(t, count, "id %s потерян или задублирован", id)
	}

	// Порядок действительно невозрастающий
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].FarePerKM, ranked[i].FarePerKM)
	}
}

func TestRankEmptyInput(t *testing.T) {
	ranked, err := Rank(nil, "fare_per_km", true)

	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestRankUnknownKey(t *testing.T) {
	_, err := Rank(factsWithFarePerKM(1, 2), "no_such_metric", true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_metric")
}

func TestRankAllMetricKeys(t *testing.T) {
	count := 3
	fact := models.TripFact{ID: "a", PassengerCount: &count}

	for key := range metricAccessors {
		_, err := Rank([]models.TripFact{fact}, key, true)
		assert.NoError(t, err, "метрика %s", key)
	}
}

func TestRankableMetric(t *testing.T) {
	assert.True(t, RankableMetric("fare_per_km"))
	assert.True(t, RankableMetric("trip_duration"))
	assert.False(t, RankableMetric("id"))
	assert.False(t, RankableMetric("fare_per_km; DROP TABLE trips"))
}

// TestRankSubQuadraticGrowth проверяет, что рост времени ранжирования
// согласуется с O(n log n): при пятикратном увеличении входа время растет
// заметно медленнее, чем в квадратичной модели (в 25 раз).
func TestRankSubQuadraticGrowth(t *testing.T) {
	if testing.Short() {
		t.Skip("пропускаем замер времени в коротком режиме")
	}

	timeFor := func(size int) time.Duration {
		rng := rand.New(rand.NewSource(int64(size)))
		facts := make([]models.TripFact, size)
		for i := range facts {
			facts[i] = models.TripFact{
				ID:        fmt.Sprintf("t%d", i),
				FarePerKM: 1 + rng.Float64()*99,
			}
		}

		// Лучшее из трех измерений сглаживает шум планировщика
		best := time.Duration(1<<63 - 1)
		for run := 0; run < 3; run++ {
			start := time.Now()
			_, err := Rank(facts, "fare_per_km", true)
			require.NoError(t, err)
			if elapsed := time.Since(start); elapsed < best {
				best = elapsed
			}
		}
		return best
	}

	t10k := timeFor(10000)
	t50k := timeFor(50000)

	// Квадратичная реализация дала бы отношение ~25, у O(n log n) оно ~5.8
	ratio := float64(t50k) / float64(t10k)
	assert.Less(t, ratio, 20.0, "время на 50k строк выросло как у квадратичной сортировки: %v -> %v", t10k, t50k)
}

func BenchmarkRank(b *testing.B) {
	for _, size := range []int{100, 1000, 10000, 50000} {
		b.Run(fmt.Sprintf("n=%d", size), func(b *testing.B) {
			rng := rand.New(rand.NewSource(int64(size)))
			facts := make([]models.TripFact, size)
			for i := range facts {
				facts[i] = models.TripFact{
					ID:        fmt.Sprintf("t%d", i),
					FarePerKM: 1 + rng.Float64()*99,
				}
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Rank(facts, "fare_per_km", true); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
