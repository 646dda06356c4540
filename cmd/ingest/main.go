package main

import (
	"Trestle/internal/auth"
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
)

// ingest loads catalog tables from CSV or XLSX exports. Header names follow
// the environment_table.csv conventions, with a few tolerated aliases.

var locationAliases = map[string][]string{
	"state":            {"state"},
	"district":         {"district", "city"},
	"basic_wind_speed": {"wind_speed_ms"},
	"seismic_zone":     {"seismic_zone"},
	"seismic_factor":   {"seismic_factor"},
	"max_temp":         {"max_temp_c"},
	"min_temp":         {"min_temp_c"},
}

func main() {
	locationsPath := flag.String("locations", "", "path to the environment table (csv or xlsx)")
	materialsPath := flag.String("materials", "", "path to the materials catalog (csv or xlsx)")
	truncate := flag.Bool("truncate", false, "delete existing rows before ingesting")
	flag.Parse()

	if *locationsPath == "" && *materialsPath == "" {
		log.Fatal("Nothing to do: pass -locations and/or -materials")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	db := auth.InitDB()
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *locationsPath != "" {
		created, updated, err := ingestLocations(ctx, db, *locationsPath, *truncate)
		if err != nil {
			log.Fatalf("Location ingest failed: %v", err)
		}
		log.Printf("Ingested %d new location rows and updated %d existing rows from %s", created, updated, *locationsPath)
	}

	if *materialsPath != "" {
		created, skipped, err := ingestMaterials(ctx, db, *materialsPath, *truncate)
		if err != nil {
			log.Fatalf("Material ingest failed: %v", err)
		}
		log.Printf("Ingested %d new material grades (%d already present) from %s", created, skipped, *materialsPath)
	}
}

// readTable returns the sheet as rows of cells. XLSX files are read via
// their first sheet; everything else is treated as CSV.
func readTable(path string) ([][]string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return f.GetRows(f.GetSheetName(0))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// columnIndex maps logical field names to column positions using the alias
// table. Header matching is case-insensitive.
func columnIndex(header []string, aliases map[string][]string) map[string]int {
	index := make(map[string]int)
	for col, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		for field, names := range aliases {
			if _, taken := index[field]; taken {
				continue
			}
			for _, alias := range names {
				if name == alias {
					index[field] = col
					break
				}
			}
		}
	}
	return index
}

func cell(row []string, col int, ok bool) string {
	if !ok || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// safeFloat parses a numeric cell. Blank cells and the literal NULL come
// back as nil, matching how the environment table marks missing data.
func safeFloat(value string) *float64 {
	if value == "" || strings.EqualFold(value, "NULL") {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}

func ingestLocations(ctx context.Context, db *sql.DB, path string, truncate bool) (created, updated int, err error) {
	rows, err := readTable(path)
	if err != nil {
		return 0, 0, err
	}
	if len(rows) < 2 {
		return 0, 0, errNoRows(path)
	}
	index := columnIndex(rows[0], locationAliases)
	if _, ok := index["state"]; !ok {
		return 0, 0, errNoRows(path)
	}

	if truncate {
		if _, err := db.ExecContext(ctx, "DELETE FROM location_records"); err != nil {
			return 0, 0, err
		}
	}

	const query = `INSERT INTO location_records
		(state, district, basic_wind_speed, seismic_zone, seismic_factor, max_temp, min_temp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (state, district) DO UPDATE SET
			basic_wind_speed = EXCLUDED.basic_wind_speed,
			seismic_zone = EXCLUDED.seismic_zone,
			seismic_factor = EXCLUDED.seismic_factor,
			max_temp = EXCLUDED.max_temp,
			min_temp = EXCLUDED.min_temp
		RETURNING (xmax = 0)`

	stateCol, stateOK := index["state"]
	districtCol, districtOK := index["district"]
	for _, row := range rows[1:] {
		state := cell(row, stateCol, stateOK)
		district := cell(row, districtCol, districtOK)
		if state == "" || district == "" {
			continue
		}

		windCol, windOK := index["basic_wind_speed"]
		zoneCol, zoneOK := index["seismic_zone"]
		factorCol, factorOK := index["seismic_factor"]
		maxCol, maxOK := index["max_temp"]
		minCol, minOK := index["min_temp"]

		zone := cell(row, zoneCol, zoneOK)
		if strings.EqualFold(zone, "NULL") {
			zone = ""
		}

		var inserted bool
		err := db.QueryRowContext(ctx, query,
			state, district,
			safeFloat(cell(row, windCol, windOK)),
			zone,
			safeFloat(cell(row, factorCol, factorOK)),
			safeFloat(cell(row, maxCol, maxOK)),
			safeFloat(cell(row, minCol, minOK)),
		).Scan(&inserted)
		if err != nil {
			return created, updated, err
		}
		if inserted {
			created++
		} else {
			updated++
		}
	}
	return created, updated, nil
}

func ingestMaterials(ctx context.Context, db *sql.DB, path string, truncate bool) (created, skipped int, err error) {
	rows, err := readTable(path)
	if err != nil {
		return 0, 0, err
	}
	if len(rows) < 2 {
		return 0, 0, errNoRows(path)
	}
	index := columnIndex(rows[0], map[string][]string{
		"category": {"category"},
		"grade":    {"grade"},
	})

	if truncate {
		if _, err := db.ExecContext(ctx, "DELETE FROM material_catalog"); err != nil {
			return 0, 0, err
		}
	}

	const query = `INSERT INTO material_catalog (category, grade)
		VALUES ($1, $2) ON CONFLICT (category, grade) DO NOTHING`

	categoryCol, categoryOK := index["category"]
	gradeCol, gradeOK := index["grade"]
	for _, row := range rows[1:] {
		category := cell(row, categoryCol, categoryOK)
		grade := cell(row, gradeCol, gradeOK)
		if category == "" || grade == "" {
			continue
		}
		res, err := db.ExecContext(ctx, query, category, grade)
		if err != nil {
			return created, skipped, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return created, skipped, err
		}
		if affected > 0 {
			created++
		} else {
			skipped++
		}
	}
	return created, skipped, nil
}

type errNoRows string

func (e errNoRows) Error() string {
	return "no data rows were read from " + string(e) + "; check the file path and headers"
}
