package region

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/pable/go-poi-metrics/internal/model"
)

// MaxCoordinateCells is the number of "Coordinate N" columns in a boundary table.
const MaxCoordinateCells = 9

var numberRe = regexp.MustCompile(`-?\d+\.?\d*`)

// ParseCoordinate extracts an (x, y) vertex from a free-text cell such as
// "(-1250.5, 3400)". The cell must contain exactly two numbers.
func ParseCoordinate(cell string) (model.Vertex, bool) {
	nums := numberRe.FindAllString(cell, -1)
	if len(nums) != 2 {
		return model.Vertex{}, false
	}
	x, err := strconv.ParseFloat(nums[0], 64)
	if err != nil {
		return model.Vertex{}, false
	}
	y, err := strconv.ParseFloat(nums[1], 64)
	if err != nil {
		return model.Vertex{}, false
	}
	return model.Vertex{X: x, Y: y}, true
}

// LoadFile reads region definitions from a .csv, .xlsx or .yaml/.yml file.
func LoadFile(path string) ([]model.RegionDef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open regions: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(f)
	case ".xlsx":
		return LoadXLSX(f)
	default:
		return LoadCSV(f)
	}
}

// LoadCSV reads a boundary table with columns Name, Shape and
// "Coordinate 1" .. "Coordinate 9". Unparseable cells are skipped; rows that
// yield no vertices at all are dropped.
func LoadCSV(r io.Reader) ([]model.RegionDef, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("regions csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return parseTable(rows, "regions csv")
}

// LoadXLSX reads the boundary table from the first sheet of a workbook,
// laid out like the CSV form.
func LoadXLSX(r io.Reader) ([]model.RegionDef, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("regions xlsx: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("regions xlsx: workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("regions xlsx sheet %s: %w", sheets[0], err)
	}
	return parseTable(rows, "regions xlsx")
}

// parseTable turns header-addressed boundary rows into definitions.
func parseTable(rows [][]string, kind string) ([]model.RegionDef, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty file", kind)
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	nameIdx, ok := col["Name"]
	if !ok {
		return nil, fmt.Errorf("%s: missing Name column", kind)
	}
	shapeIdx, hasShape := col["Shape"]

	var coordIdx []int
	for n := 1; n <= MaxCoordinateCells; n++ {
		if i, ok := col[fmt.Sprintf("Coordinate %d", n)]; ok {
			coordIdx = append(coordIdx, i)
		}
	}

	var defs []model.RegionDef
	for _, rec := range rows[1:] {
		name := cell(rec, nameIdx)
		if name == "" {
			continue
		}
		d := model.RegionDef{Name: name}
		if hasShape {
			d.Label = cell(rec, shapeIdx)
		}
		for _, i := range coordIdx {
			if v, ok := ParseCoordinate(cell(rec, i)); ok {
				d.Boundary = append(d.Boundary, v)
			}
		}
		if len(d.Boundary) == 0 {
			continue
		}
		defs = append(defs, d)
	}
	return defs, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// yamlFile is the schema for YAML region files:
//
//	regions:
//	  - name: Docks
//	    label: A
//	    boundary: [[0, 0], [200, 0], [200, 200], [0, 200]]
type yamlFile struct {
	Regions []struct {
		Name     string       `yaml:"name"`
		Label    string       `yaml:"label"`
		Boundary [][]float64 `yaml:"boundary"`
	} `yaml:"regions"`
}

// LoadYAML reads region definitions from a YAML document. Entries without a
// name or without vertices are dropped.
func LoadYAML(r io.Reader) ([]model.RegionDef, error) {
	var doc yamlFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, errors.New("regions yaml: empty file")
		}
		return nil, fmt.Errorf("regions yaml: %w", err)
	}
	var defs []model.RegionDef
	for _, e := range doc.Regions {
		if e.Name == "" {
			continue
		}
		d := model.RegionDef{Name: e.Name, Label: e.Label}
		for _, xy := range e.Boundary {
			if len(xy) != 2 {
				continue
			}
			d.Boundary = append(d.Boundary, model.Vertex{X: xy[0], Y: xy[1]})
		}
		if len(d.Boundary) == 0 {
			continue
		}
		defs = append(defs, d)
	}
	return defs, nil
}
