package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"foodgram/internal/config"
	"foodgram/internal/db"
	"foodgram/models"

	"gorm.io/gorm"
)

func main() {
	ingredientsPath := flag.String("ingredients", "", "CSV file with ingredient rows: name,measurement_unit")
	tagsPath := flag.String("tags", "", "CSV file with tag rows: name,color,slug")
	flag.Parse()

	if *ingredientsPath == "" && *tagsPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to load: pass -ingredients and/or -tags")
		os.Exit(2)
	}

	if err := run(*ingredientsPath, *tagsPath); err != nil {
		fmt.Fprintf(os.Stderr, "load failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ingredientsPath, tagsPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if ingredientsPath != "" {
		imported, skipped, err := loadIngredients(database, ingredientsPath)
		if err != nil {
			return err
		}
		fmt.Printf("ingredients: %d imported, %d already present\n", imported, skipped)
	}

	if tagsPath != "" {
		imported, skipped, err := loadTags(database, tagsPath)
		if err != nil {
			return err
		}
		fmt.Printf("tags: %d imported, %d already present\n", imported, skipped)
	}

	return nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

func loadIngredients(database *gorm.DB, path string) (imported, skipped int, err error) {
	records, err := readCSV(path)
	if err != nil {
		return 0, 0, err
	}

	for idx, record := range records {
		if len(record) < 2 {
			return imported, skipped, fmt.Errorf("ingredient row %d: expected name,measurement_unit", idx+1)
		}
		name := strings.TrimSpace(record[0])
		unit := strings.TrimSpace(record[1])
		if name == "" || unit == "" {
			return imported, skipped, fmt.Errorf("ingredient row %d: name and unit must not be empty", idx+1)
		}

		err := database.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Ingredient{}).
				Where("name = ? AND measurement_unit = ?", name, unit).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				skipped++
				return nil
			}
			imported++
			return tx.Create(&models.Ingredient{Name: name, MeasurementUnit: unit}).Error
		})
		if err != nil {
			return imported, skipped, fmt.Errorf("ingredient row %d (%s): %w", idx+1, name, err)
		}
	}

	return imported, skipped, nil
}

func loadTags(database *gorm.DB, path string) (imported, skipped int, err error) {
	records, err := readCSV(path)
	if err != nil {
		return 0, 0, err
	}

	for idx, record := range records {
		if len(record) < 3 {
			return imported, skipped, fmt.Errorf("tag row %d: expected name,color,slug", idx+1)
		}
		name := strings.TrimSpace(record[0])
		color := strings.TrimSpace(record[1])
		slug := strings.TrimSpace(record[2])
		if name == "" || slug == "" {
			return imported, skipped, fmt.Errorf("tag row %d: name and slug must not be empty", idx+1)
		}
		if !models.ValidHexColor(color) {
			return imported, skipped, fmt.Errorf("tag row %d (%s): color must be a #RRGGBB hex code", idx+1, name)
		}

		err := database.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Tag{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				skipped++
				return nil
			}
			imported++
			return tx.Create(&models.Tag{Name: name, Color: color, Slug: slug}).Error
		})
		if err != nil {
			return imported, skipped, fmt.Errorf("tag row %d (%s): %w", idx+1, name, err)
		}
	}

	return imported, skipped, nil
}
