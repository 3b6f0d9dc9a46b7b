// Command seed imports the campus directory from a spreadsheet into
// Postgres. The workbook carries a Contacts sheet (name, role,
// department, phone, email) and a Locations sheet (name, building,
// floor, description), one header row each.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rudradey/campus-companion/internal/config"
	"github.com/rudradey/campus-companion/internal/core/domain"
	"github.com/rudradey/campus-companion/internal/infrastructure/repository/postgres"
)

func main() {
	file := flag.String("file", "directory.xlsx", "path to the directory workbook")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	defer db.Close()

	directory := postgres.NewDirectoryRepository(db)
	if err := directory.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure directory schema: %v", err)
	}

	workbook, err := excelize.OpenFile(*file)
	if err != nil {
		log.Fatalf("open workbook: %v", err)
	}
	defer workbook.Close()

	contacts, err := readContacts(workbook)
	if err != nil {
		log.Fatalf("read contacts: %v", err)
	}
	locations, err := readLocations(workbook)
	if err != nil {
		log.Fatalf("read locations: %v", err)
	}

	for _, contact := range contacts {
		if err := directory.UpsertContact(ctx, contact); err != nil {
			log.Fatalf("upsert contact %q: %v", contact.Name, err)
		}
	}
	for _, location := range locations {
		if err := directory.UpsertLocation(ctx, location); err != nil {
			log.Fatalf("upsert location %q: %v", location.Name, err)
		}
	}

	log.Printf("seeded %d contacts and %d locations", len(contacts), len(locations))
}

func readContacts(workbook *excelize.File) ([]domain.ContactRecord, error) {
	rows, err := sheetRows(workbook, "Contacts")
	if err != nil {
		return nil, err
	}

	var records []domain.ContactRecord
	for i, row := range rows {
		name := cell(row, 0)
		if name == "" {
			continue
		}
		record := domain.ContactRecord{
			Name:       name,
			Role:       cell(row, 1),
			Department: cell(row, 2),
			Phone:      cell(row, 3),
			Email:      cell(row, 4),
		}
		if record.Phone == "" && record.Email == "" {
			return nil, fmt.Errorf("row %d: contact %q has neither phone nor email", i+2, name)
		}
		records = append(records, record)
	}
	return records, nil
}

func readLocations(workbook *excelize.File) ([]domain.LocationRecord, error) {
	rows, err := sheetRows(workbook, "Locations")
	if err != nil {
		return nil, err
	}

	var records []domain.LocationRecord
	for _, row := range rows {
		name := cell(row, 0)
		if name == "" {
			continue
		}
		records = append(records, domain.LocationRecord{
			Name:        name,
			Building:    cell(row, 1),
			Floor:       cell(row, 2),
			Description: cell(row, 3),
		})
	}
	return records, nil
}

func sheetRows(workbook *excelize.File, sheet string) ([][]string, error) {
	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	// Skip the header row.
	return rows[1:], nil
}

func cell(row []string, index int) string {
	if index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}
