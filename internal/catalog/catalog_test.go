package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

type stubRepo struct {
	records   []LocationRecord
	grades    []MaterialGrade
	err       error
	locCalls  int
	lookupRec LocationRecord
	lookupOK  bool
}

func (s *stubRepo) Locations(context.Context) ([]LocationRecord, error) {
	s.locCalls++
	return s.records, s.err
}

func (s *stubRepo) Lookup(context.Context, string, string) (LocationRecord, bool, error) {
	return s.lookupRec, s.lookupOK, s.err
}

func (s *stubRepo) Materials(context.Context) ([]MaterialGrade, error) {
	return s.grades, s.err
}

func sampleRecords() []LocationRecord {
	return []LocationRecord{
		{State: "Kerala", District: "Kochi", BasicWindSpeed: f(39), SeismicZone: "III", SeismicFactor: f(0.16), MaxTemp: f(35), MinTemp: f(22)},
		{State: "Assam", District: "Jorhat", BasicWindSpeed: f(50), SeismicZone: "V", SeismicFactor: f(0.36), MaxTemp: f(38), MinTemp: f(7)},
		{State: "Assam", District: "Dibrugarh", SeismicZone: "V", SeismicFactor: f(0.36)},
	}
}

func TestBuildLocationPayload(t *testing.T) {
	payload, err := BuildLocationPayload(sampleRecords())
	require.NoError(t, err)

	assert.Equal(t, []string{"Assam", "Kerala"}, payload.States)
	require.Len(t, payload.Districts["Assam"], 2)
	assert.Equal(t, "Dibrugarh", payload.Districts["Assam"][0].District)
	assert.Equal(t, "Jorhat", payload.Districts["Assam"][1].District)

	// Missing numeric columns stay null.
	assert.Nil(t, payload.Districts["Assam"][0].BasicWindSpeed)
	assert.Equal(t, 50.0, *payload.Districts["Assam"][1].BasicWindSpeed)
}

func TestBuildLocationPayloadEmpty(t *testing.T) {
	_, err := BuildLocationPayload(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestMaterialsPayload(t *testing.T) {
	payload := MaterialsPayload([]MaterialGrade{
		{Category: CategoryGirderSteel, Grade: "E250"},
		{Category: CategoryGirderSteel, Grade: "E350"},
		{Category: CategoryDeckConcrete, Grade: "M40"},
		{Category: "unknown", Grade: "X"},
	})

	assert.Equal(t, []string{"E250", "E350"}, payload[CategoryGirderSteel])
	assert.Equal(t, []string{"M40"}, payload[CategoryDeckConcrete])
	assert.Empty(t, payload[CategoryCrossBracingSteel])
	assert.NotContains(t, payload, "unknown")
}

func TestCacheMemoizesUntilInvalidated(t *testing.T) {
	repo := &stubRepo{records: sampleRecords()}
	cache := NewCache(repo)

	_, err := cache.LocationPayload(context.Background())
	require.NoError(t, err)
	_, err = cache.LocationPayload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.locCalls)

	cache.Invalidate()
	_, err = cache.LocationPayload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.locCalls)
}

func TestLocationsHandlerWhenEmpty(t *testing.T) {
	h := &Handler{Cache: NewCache(&stubRepo{}), Repo: &stubRepo{}}

	rec := httptest.NewRecorder()
	h.Locations(rec, httptest.NewRequest(http.MethodGet, "/api/locations", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLookupHandler(t *testing.T) {
	t.Run("missing params", func(t *testing.T) {
		h := &Handler{Repo: &stubRepo{}}
		rec := httptest.NewRecorder()
		h.Lookup(rec, httptest.NewRequest(http.MethodGet, "/api/locations/lookup?state=Assam", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		h := &Handler{Repo: &stubRepo{}}
		rec := httptest.NewRecorder()
		h.Lookup(rec, httptest.NewRequest(http.MethodGet, "/api/locations/lookup?state=Assam&district=Nowhere", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("found", func(t *testing.T) {
		h := &Handler{Repo: &stubRepo{lookupRec: sampleRecords()[1], lookupOK: true}}
		rec := httptest.NewRecorder()
		h.Lookup(rec, httptest.NewRequest(http.MethodGet, "/api/locations/lookup?state=Assam&district=Jorhat", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got LocationRecord
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "Jorhat", got.District)
		assert.Equal(t, "V", got.SeismicZone)
	})
}

func TestMaterialsHandler(t *testing.T) {
	t.Run("empty catalog", func(t *testing.T) {
		h := &Handler{Repo: &stubRepo{}}
		rec := httptest.NewRecorder()
		h.Materials(rec, httptest.NewRequest(http.MethodGet, "/api/materials", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("grades grouped", func(t *testing.T) {
		h := &Handler{Repo: &stubRepo{grades: []MaterialGrade{{Category: CategoryGirderSteel, Grade: "E250"}}}}
		rec := httptest.NewRecorder()
		h.Materials(rec, httptest.NewRequest(http.MethodGet, "/api/materials", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got map[string][]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Contains(t, got[CategoryGirderSteel], "E250")
	})

	t.Run("repository failure", func(t *testing.T) {
		h := &Handler{Repo: &stubRepo{err: errors.New("db down")}}
		rec := httptest.NewRecorder()
		h.Materials(rec, httptest.NewRequest(http.MethodGet, "/api/materials", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestCustomLoadingHandler(t *testing.T) {
	post := func(t *testing.T, body CustomLoading) *httptest.ResponseRecorder {
		t.Helper()
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		rec := httptest.NewRecorder()
		h := &Handler{}
		h.CustomLoading(rec, httptest.NewRequest(http.MethodPost, "/api/custom-loading", bytes.NewReader(payload)))
		return rec
	}

	t.Run("valid", func(t *testing.T) {
		rec := post(t, CustomLoading{Wind: 45, SeismicZone: "III", SeismicFactor: 0.16, MaxTemp: 40, MinTemp: 28})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("inverted temperatures", func(t *testing.T) {
		rec := post(t, CustomLoading{Wind: 45, SeismicZone: "III", SeismicFactor: 0.16, MaxTemp: 20, MinTemp: 28})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var got struct {
			Errors map[string]string `json:"errors"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Contains(t, got.Errors, "max_temp")
	})

	t.Run("negative wind", func(t *testing.T) {
		rec := post(t, CustomLoading{Wind: -1, SeismicZone: "III", MaxTemp: 40, MinTemp: 28})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
