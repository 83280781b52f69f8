// internal/models/catalog.go
package models

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var ErrInvalidCatalog = errors.New("INVALID_CATALOG")

// Catalog is the fixed set of selectable programs and modes.
type Catalog struct {
	CoCPrograms   []string `yaml:"coc_programs" json:"cocPrograms"`
	ShortCourses  []string `yaml:"short_courses" json:"shortCourses"`
	StudyModes    []string `yaml:"study_modes" json:"studyModes"`
	DeliveryModes []string `yaml:"delivery_modes" json:"deliveryModes"`
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog from path, or returns the embedded one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidCatalog, path, err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if len(c.CoCPrograms) == 0 || len(c.ShortCourses) == 0 {
		return nil, fmt.Errorf("%w: programs and short courses must not be empty", ErrInvalidCatalog)
	}
	if len(c.StudyModes) == 0 || len(c.DeliveryModes) == 0 {
		return nil, fmt.Errorf("%w: study and delivery modes must not be empty", ErrInvalidCatalog)
	}
	return &c, nil
}

func (c *Catalog) HasCoCProgram(name string) bool   { return slices.Contains(c.CoCPrograms, name) }
func (c *Catalog) HasShortCourse(name string) bool  { return slices.Contains(c.ShortCourses, name) }
func (c *Catalog) HasStudyMode(mode string) bool    { return slices.Contains(c.StudyModes, mode) }
func (c *Catalog) HasDeliveryMode(mode string) bool { return slices.Contains(c.DeliveryModes, mode) }
