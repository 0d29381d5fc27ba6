// Package excel imports sentence decks from spreadsheet files into the
// content store.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/lithuaningo/internal/storage"
	"github.com/example/lithuaningo/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	DeckColumn        string // Column with the deck name
	TextColumn        string // Column with the Lithuanian sentence
	TranslationColumn string // Column with the translation
	DifficultyColumn  string // Column with the difficulty
	SheetName         string // Name of the sheet to import
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		DeckColumn:        "A",
		TextColumn:        "B",
		TranslationColumn: "C",
		DifficultyColumn:  "D",
		SheetName:         "Sheet1",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Imported       int
	Skipped        int
	Errors         []string
}

// ImportSentences imports sentences from an Excel or CSV file
func ImportSentences(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return importFromCSV(ctx, config)
	}
	return importFromExcel(ctx, config)
}

// importFromExcel imports sentences from an Excel file
func importFromExcel(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	repo := storage.NewSentenceRepository()
	result := &ImportResult{Errors: make([]string, 0)}

	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		if err := processRow(ctx, repo, row, config, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

// importFromCSV imports sentences from a CSV file, mapping column letters to
// zero-based positions
func importFromCSV(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	repo := storage.NewSentenceRepository()
	result := &ImportResult{Errors: make([]string, 0)}

	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		result.TotalProcessed++
		if err := processRow(ctx, repo, row, config, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

func processRow(ctx context.Context, repo *storage.SentenceRepository, row []string, config ImportConfig, result *ImportResult) error {
	deck := cell(row, config.DeckColumn)
	text := cell(row, config.TextColumn)
	translation := cell(row, config.TranslationColumn)
	if text == "" || translation == "" {
		result.Skipped++
		return nil
	}
	if deck == "" {
		deck = "default"
	}

	difficulty := 1
	if raw := cell(row, config.DifficultyColumn); raw != "" {
		if d, err := strconv.Atoi(raw); err == nil && d >= 1 && d <= 5 {
			difficulty = d
		}
	}

	s := &models.Sentence{
		Deck:        deck,
		Text:        text,
		Translation: translation,
		Difficulty:  difficulty,
	}
	if err := repo.CreateOrUpdate(ctx, s); err != nil {
		return err
	}
	result.Imported++
	return nil
}

// cell returns the trimmed value at a column letter, or "" when the row is
// too short
func cell(row []string, column string) string {
	idx := columnIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// columnIndex converts a column letter like "A" or "AB" to a zero-based index
func columnIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	idx := 0
	for _, r := range column {
		if r < 'A' || r > 'Z' {
			return -1
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1
}
