// Package catalog loads the reference dataset of materials and per-standard
// NDT requirements. A Catalog is read-only after Load and may be shared
// between goroutines without locking.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MechanicalProperties are minimum thresholds quoted in final control criteria
type MechanicalProperties struct {
	UTSMinMPa     float64 `json:"UTS_min_MPa" yaml:"UTS_min_MPa"`
	YSMinMPa      float64 `json:"YS_min_MPa" yaml:"YS_min_MPa"`
	ElongationMin float64 `json:"elongation_min" yaml:"elongation_min"`
}

// Material sub-field keys as spelled in catalog files. Keys under
// mechanical_properties are written as a dotted path.
const (
	KeyChemicalComposition  = "chemical_composition"
	KeyMechanicalProperties = "mechanical_properties"
	KeyUTSMin               = KeyMechanicalProperties + ".UTS_min_MPa"
	KeyYSMin                = KeyMechanicalProperties + ".YS_min_MPa"
	KeyElongationMin        = KeyMechanicalProperties + ".elongation_min"
)

var materialKeys = []string{KeyChemicalComposition, KeyMechanicalProperties, KeyUTSMin, KeyYSMin, KeyElongationMin}

// Material identifies one alloy/grade family
type Material struct {
	Grades               []string              `json:"grades" yaml:"grades"`
	ChemicalComposition  string                `json:"chemical_composition" yaml:"chemical_composition"`
	MechanicalProperties *MechanicalProperties `json:"mechanical_properties,omitempty" yaml:"mechanical_properties"`

	// absent holds the sub-field keys the catalog file did not carry
	absent map[string]bool
}

// Missing returns the keys among keys that the material lacks. A key under
// mechanical_properties is missing whenever its parent is.
func (m Material) Missing(keys ...string) []string {
	var out []string
	for _, k := range keys {
		if m.lacks(k) {
			out = append(out, k)
		}
	}
	return out
}

func (m Material) lacks(key string) bool {
	if m.absent[key] {
		return true
	}
	parent, _, _ := strings.Cut(key, ".")
	return parent == KeyMechanicalProperties && m.MechanicalProperties == nil
}

// NDTRequirements maps a standard name to category -> required test description
type NDTRequirements map[string]map[string]string

// LoadError reports a missing or malformed catalog resource
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load catalog %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

var (
	ErrMissingKey    = errors.New("missing required key")
	ErrNoMaterials   = errors.New("catalog has no materials")
	ErrUnknownFormat = errors.New("unsupported catalog format")
)

type alias struct {
	text     string
	material int
}

// Catalog is the immutable reference dataset
type Catalog struct {
	materials []Material
	ndt       NDTRequirements
	aliases   []alias
}

// Load reads a catalog from a .json, .yaml or .yml file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var decode func([]byte) (map[string]any, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", "":
		decode = decodeJSON
	case ".yaml", ".yml":
		decode = decodeYAML
	default:
		return nil, &LoadError{Path: path, Err: ErrUnknownFormat}
	}

	cat, err := parse(data, decode)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return cat, nil
}

// Parse builds a catalog from JSON bytes
func Parse(data []byte) (*Catalog, error) {
	return parse(data, decodeJSON)
}

type document struct {
	Materials       []Material      `json:"materials" yaml:"materials"`
	NDTRequirements NDTRequirements `json:"ndt_requirements" yaml:"ndt_requirements"`
}

func parse(data []byte, decode func([]byte) (map[string]any, error)) (*Catalog, error) {
	top, err := decode(data)
	if err != nil {
		return nil, err
	}
	for _, key := range []string{"materials", "ndt_requirements"} {
		if _, ok := top[key]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingKey, key)
		}
	}

	// Re-encode the checked top level through JSON so both formats share one shape.
	normalized, err := json.Marshal(top)
	if err != nil {
		return nil, fmt.Errorf("normalize catalog: %w", err)
	}
	var doc document
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(doc.Materials) == 0 {
		return nil, ErrNoMaterials
	}
	if doc.NDTRequirements == nil {
		doc.NDTRequirements = NDTRequirements{}
	}
	if raw, ok := top["materials"].([]any); ok {
		for i := range doc.Materials {
			doc.Materials[i].absent = absentKeys(raw[i])
		}
	}

	return newCatalog(doc.Materials, doc.NDTRequirements), nil
}

// absentKeys records which material sub-fields a decoded entry lacks
func absentKeys(entry any) map[string]bool {
	fields, _ := entry.(map[string]any)
	mech, _ := fields[KeyMechanicalProperties].(map[string]any)

	absent := make(map[string]bool)
	for _, k := range materialKeys {
		parent, child, nested := strings.Cut(k, ".")
		if nested {
			if _, ok := mech[child]; !ok {
				absent[k] = true
			}
			continue
		}
		if _, ok := fields[parent]; !ok {
			absent[k] = true
		}
	}
	if len(absent) == 0 {
		return nil
	}
	return absent
}

func decodeJSON(data []byte) (map[string]any, error) {
	var top map[string]any
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return top, nil
}

func decodeYAML(data []byte) (map[string]any, error) {
	var top map[string]any
	if err := yaml.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return top, nil
}

func newCatalog(materials []Material, ndt NDTRequirements) *Catalog {
	c := &Catalog{materials: materials, ndt: ndt}
	for i, m := range materials {
		for _, g := range m.Grades {
			g = strings.ToUpper(strings.TrimSpace(g))
			if g == "" {
				continue
			}
			c.aliases = append(c.aliases, alias{text: g, material: i})
		}
	}
	return c
}

// IdentifyMaterial returns the first material, in catalog order, owning an
// alias contained in the uppercased grade text. When nothing matches the
// catalog's first material is returned with matched=false.
func (c *Catalog) IdentifyMaterial(grade string) (material Material, matched bool) {
	text := strings.ToUpper(grade)
	for _, a := range c.aliases {
		if strings.Contains(text, a.text) {
			return c.materials[a.material], true
		}
	}
	return c.Default(), false
}

// Default is the fallback material
func (c *Catalog) Default() Material {
	return c.materials[0]
}

// Materials returns a copy of the material list
func (c *Catalog) Materials() []Material {
	out := make([]Material, len(c.materials))
	copy(out, c.materials)
	return out
}

// HasStandard reports whether NDT requirements exist for the standard
func (c *Catalog) HasStandard(standard string) bool {
	_, ok := c.ndt[standard]
	return ok
}

// NDTDescriptions returns the union of required test descriptions for the
// given standards with duplicates collapsed. Order follows the standards
// argument, then category key.
func (c *Catalog) NDTDescriptions(standards []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, std := range standards {
		reqs, ok := c.ndt[std]
		if !ok {
			continue
		}
		keys := make([]string, 0, len(reqs))
		for k := range reqs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			desc := reqs[k]
			if seen[desc] {
				continue
			}
			seen[desc] = true
			out = append(out, desc)
		}
	}
	return out
}
