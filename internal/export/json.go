package export

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dgallion1/harvestparse/internal/harvest"
)

//go:embed schema/*.json
var schemaFS embed.FS

var (
	schemaOnce     sync.Once
	resultSchema   *jsonschema.Schema
	combinedSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchemas() error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		for _, name := range []string{"result.json", "combined.json"} {
			b, err := schemaFS.ReadFile("schema/" + name)
			if err != nil {
				schemaErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
				schemaErr = fmt.Errorf("add schema %s: %w", name, err)
				return
			}
		}
		if resultSchema, schemaErr = compiler.Compile("result.json"); schemaErr != nil {
			schemaErr = fmt.Errorf("compile result schema: %w", schemaErr)
			return
		}
		if combinedSchema, schemaErr = compiler.Compile("combined.json"); schemaErr != nil {
			schemaErr = fmt.Errorf("compile combined schema: %w", schemaErr)
		}
	})
	return schemaErr
}

// Combined merges the results of several documents of one species.
type Combined struct {
	Species string                  `json:"species"`
	Years   []int                   `json:"years"`
	Harvest []harvest.HarvestRecord `json:"harvest_records"`
	DAU     []harvest.DAURecord     `json:"dau_records"`
}

// JSONName returns the per-year JSON bundle file name.
func JSONName(species string, year int) string {
	return fmt.Sprintf("%s_harvest_%d.json", species, year)
}

// CombinedJSONName returns the multi-year bundle file name.
func CombinedJSONName(species string) string {
	return fmt.Sprintf("%s_harvest_combined.json", species)
}

// EncodeResult encodes a result as indented JSON and checks it against the
// bundle schema.
func EncodeResult(res *harvest.Result) ([]byte, error) {
	if err := loadSchemas(); err != nil {
		return nil, err
	}
	return encode(res, resultSchema)
}

// WriteJSON writes one result bundle to path.
func WriteJSON(path string, res *harvest.Result) error {
	b, err := EncodeResult(res)
	if err != nil {
		return err
	}
	return writeFile(path, b)
}

// Combine concatenates records across results in the order given and lists
// the distinct years in ascending order.
func Combine(species string, results []*harvest.Result) *Combined {
	c := &Combined{
		Species: species,
		Years:   []int{},
		Harvest: []harvest.HarvestRecord{},
		DAU:     []harvest.DAURecord{},
	}
	seen := map[int]bool{}
	for _, r := range results {
		if !seen[r.Year] {
			seen[r.Year] = true
			c.Years = append(c.Years, r.Year)
		}
		c.Harvest = append(c.Harvest, r.Harvest...)
		c.DAU = append(c.DAU, r.DAU...)
	}
	sort.Ints(c.Years)
	return c
}

// WriteCombinedJSON writes the combined bundle for results to path.
func WriteCombinedJSON(path, species string, results []*harvest.Result) error {
	if err := loadSchemas(); err != nil {
		return err
	}
	b, err := encode(Combine(species, results), combinedSchema)
	if err != nil {
		return err
	}
	return writeFile(path, b)
}

func encode(v any, schema *jsonschema.Schema) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("json does not match schema: %w", err)
	}
	return b, nil
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
