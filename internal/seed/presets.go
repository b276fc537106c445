package seed

import (
	"fmt"
	"os"

	"speedgarage/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// PresetCar pins an exact car in a preset file.
type PresetCar struct {
	Brand string `yaml:"brand"`
	Model string `yaml:"model"`
	Year  int    `yaml:"year"`
}

// Preset is a named seeding profile loaded from YAML.
type Preset struct {
	Name    string      `yaml:"name"`
	Users   int         `yaml:"users"`
	Reviews int         `yaml:"reviews"`
	Cars    []PresetCar `yaml:"cars"`
}

// LoadPresets parses a YAML preset file.
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var presets []Preset
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("failed to parse preset file: %w", err)
	}
	return presets, nil
}

// FindPreset returns the preset with the given name.
func FindPreset(presets []Preset, name string) (*Preset, error) {
	for i := range presets {
		if presets[i].Name == name {
			return &presets[i], nil
		}
	}
	return nil, fmt.Errorf("preset %q not found", name)
}

// ApplyPreset seeds the preset's pinned cars, then fills in users, reviews,
// likes and images around them.
func ApplyPreset(db *gorm.DB, preset *Preset) error {
	factory := NewFactory(db)

	cars := make([]*models.Car, 0, len(preset.Cars))
	for _, pc := range preset.Cars {
		var car models.Car
		err := db.
			Where("brand = ? AND model = ? AND year = ?", pc.Brand, pc.Model, pc.Year).
			FirstOrCreate(&car, models.Car{Brand: pc.Brand, Model: pc.Model, Year: pc.Year}).Error
		if err != nil {
			return fmt.Errorf("failed to create preset car %s %s: %w", pc.Brand, pc.Model, err)
		}
		cars = append(cars, &car)
	}

	users, err := createUsers(factory, preset.Users)
	if err != nil {
		return err
	}

	reviews, err := createReviews(factory, users, cars, preset.Reviews)
	if err != nil {
		return err
	}

	if _, err := addLikes(factory, users, reviews); err != nil {
		return err
	}
	_, err = addImages(factory, cars)
	return err
}
