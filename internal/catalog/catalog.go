// Package catalog serves the reference data behind the form dropdowns: the
// per-district environment table and the material grade lists.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
)

// ErrEmpty means the backing table has no rows yet; run cmd/ingest first.
var ErrEmpty = errors.New("catalog is not loaded")

// LocationRecord mirrors one row of the environment table. The numeric
// columns are nullable: the source table has gaps for some districts.
type LocationRecord struct {
	State          string   `json:"state"`
	District       string   `json:"district"`
	BasicWindSpeed *float64 `json:"basic_wind_speed"`
	SeismicZone    string   `json:"seismic_zone"`
	SeismicFactor  *float64 `json:"seismic_factor"`
	MaxTemp        *float64 `json:"max_temp"`
	MinTemp        *float64 `json:"min_temp"`
}

type MaterialGrade struct {
	Category string
	Grade    string
}

// Material categories as stored in the catalog table.
const (
	CategoryGirderSteel       = "girder_steel"
	CategoryCrossBracingSteel = "cross_bracing_steel"
	CategoryDeckConcrete      = "deck_concrete"
)

type Repository interface {
	Locations(ctx context.Context) ([]LocationRecord, error)
	Lookup(ctx context.Context, state, district string) (LocationRecord, bool, error)
	Materials(ctx context.Context) ([]MaterialGrade, error)
}

type PostgresCatalog struct {
	db *sql.DB
}

func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

const locationColumns = "state, district, basic_wind_speed, seismic_zone, seismic_factor, max_temp, min_temp"

func (c *PostgresCatalog) Locations(ctx context.Context) ([]LocationRecord, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT "+locationColumns+" FROM location_records ORDER BY state, district")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []LocationRecord
	for rows.Next() {
		rec, err := scanLocation(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (c *PostgresCatalog) Lookup(ctx context.Context, state, district string) (LocationRecord, bool, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT "+locationColumns+" FROM location_records WHERE lower(state)=lower($1) AND lower(district)=lower($2)",
		state, district)
	rec, err := scanLocation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LocationRecord{}, false, nil
		}
		return LocationRecord{}, false, err
	}
	return rec, true, nil
}

func (c *PostgresCatalog) Materials(ctx context.Context) ([]MaterialGrade, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT category, grade FROM material_catalog ORDER BY category, grade")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grades []MaterialGrade
	for rows.Next() {
		var g MaterialGrade
		if err := rows.Scan(&g.Category, &g.Grade); err != nil {
			return nil, err
		}
		grades = append(grades, g)
	}
	return grades, rows.Err()
}

func scanLocation(scan func(...any) error) (LocationRecord, error) {
	var rec LocationRecord
	var zone sql.NullString
	var wind, factor, maxTemp, minTemp sql.NullFloat64

	if err := scan(&rec.State, &rec.District, &wind, &zone, &factor, &maxTemp, &minTemp); err != nil {
		return LocationRecord{}, err
	}
	rec.SeismicZone = zone.String
	rec.BasicWindSpeed = nullableFloat(wind)
	rec.SeismicFactor = nullableFloat(factor)
	rec.MaxTemp = nullableFloat(maxTemp)
	rec.MinTemp = nullableFloat(minTemp)
	return rec, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// DistrictEntry is one district row inside the grouped location payload.
type DistrictEntry struct {
	District       string   `json:"district"`
	BasicWindSpeed *float64 `json:"basic_wind_speed"`
	SeismicZone    string   `json:"seismic_zone"`
	SeismicFactor  *float64 `json:"seismic_factor"`
	MaxTemp        *float64 `json:"max_temp"`
	MinTemp        *float64 `json:"min_temp"`
}

// LocationPayload feeds the state/district dropdown chain.
type LocationPayload struct {
	States    []string                   `json:"states"`
	Districts map[string][]DistrictEntry `json:"districts"`
}

// BuildLocationPayload groups records by state, districts sorted inside each
// state and states sorted overall.
func BuildLocationPayload(records []LocationRecord) (LocationPayload, error) {
	if len(records) == 0 {
		return LocationPayload{}, ErrEmpty
	}

	byState := map[string][]DistrictEntry{}
	for _, rec := range records {
		byState[rec.State] = append(byState[rec.State], DistrictEntry{
			District:       rec.District,
			BasicWindSpeed: rec.BasicWindSpeed,
			SeismicZone:    rec.SeismicZone,
			SeismicFactor:  rec.SeismicFactor,
			MaxTemp:        rec.MaxTemp,
			MinTemp:        rec.MinTemp,
		})
	}

	states := make([]string, 0, len(byState))
	for state, districts := range byState {
		states = append(states, state)
		sort.Slice(districts, func(i, j int) bool { return districts[i].District < districts[j].District })
	}
	sort.Strings(states)

	return LocationPayload{States: states, Districts: byState}, nil
}

// MaterialsPayload groups grades under the three fixed categories. Unknown
// categories are dropped; known ones are always present, possibly empty.
func MaterialsPayload(grades []MaterialGrade) map[string][]string {
	payload := map[string][]string{
		CategoryGirderSteel:       {},
		CategoryCrossBracingSteel: {},
		CategoryDeckConcrete:      {},
	}
	for _, g := range grades {
		if _, ok := payload[g.Category]; ok {
			payload[g.Category] = append(payload[g.Category], g.Grade)
		}
	}
	return payload
}

// Cache memoizes the assembled location payload until Invalidate is called.
// The table changes only on ingest, so one snapshot serves every request.
type Cache struct {
	repo Repository

	mu      sync.RWMutex
	payload *LocationPayload
}

func NewCache(repo Repository) *Cache {
	return &Cache{repo: repo}
}

func (c *Cache) LocationPayload(ctx context.Context) (LocationPayload, error) {
	c.mu.RLock()
	if c.payload != nil {
		p := *c.payload
		c.mu.RUnlock()
		return p, nil
	}
	c.mu.RUnlock()

	records, err := c.repo.Locations(ctx)
	if err != nil {
		return LocationPayload{}, err
	}
	payload, err := BuildLocationPayload(records)
	if err != nil {
		return LocationPayload{}, err
	}

	c.mu.Lock()
	c.payload = &payload
	c.mu.Unlock()
	return payload, nil
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.payload = nil
	c.mu.Unlock()
}
