package filesystem

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Shows"

var workbookHeader = []string{
	"ID", "Name", "Genre", "Available on Netflix", "Release date",
	"Stars", "Price", "Currency", "Synopsis", "Created at",
}

// WriteWorkbook escribe shows como hoja de cálculo xlsx.
func WriteWorkbook(w io.Writer, shows []*showDomain.TvShow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A1", &workbookHeader); err != nil {
		return err
	}
	for i, s := range shows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := toRow(s)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row for show %s: %w", s.ID, err)
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

func toRow(s *showDomain.TvShow) []interface{} {
	genre, release := "", ""
	if s.Genre != nil {
		genre = s.Genre.Name
	}
	if s.ReleaseDate != nil {
		release = *s.ReleaseDate
	}
	stars := make([]string, len(s.StarRatings))
	for i, sr := range s.StarRatings {
		stars[i] = strconv.Itoa(sr.Stars)
	}
	return []interface{}{
		s.ID.String(), s.Name, genre, s.AvailableOnNetflix, release,
		strings.Join(stars, ","), s.Price.Amount, s.Price.Currency, s.Synopsis,
		s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ReadWorkbook lee la primera hoja con el formato de WriteWorkbook. Las
// columnas ID y Created at pueden venir vacías.
func ReadWorkbook(r io.Reader) ([]*showDomain.TvShow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("no rows found in file")
	}

	var shows []*showDomain.TvShow
	for i, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		s, err := fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		shows = append(shows, s)
	}
	return shows, nil
}

func fromRow(row []string) (*showDomain.TvShow, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	s := &showDomain.TvShow{Name: cell(1), Synopsis: cell(8)}
	if id := cell(0); id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", id, err)
		}
		s.ID = parsed
	}
	if genre := cell(2); genre != "" {
		s.Genre = &showDomain.Genre{Name: genre}
	}
	if v := cell(3); v != "" {
		b, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return nil, fmt.Errorf("invalid netflix flag %q: %w", v, err)
		}
		s.AvailableOnNetflix = b
	}
	if release := cell(4); release != "" {
		s.ReleaseDate = &release
	}
	if stars := cell(5); stars != "" {
		for _, part := range strings.Split(stars, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("invalid stars %q: %w", stars, err)
			}
			s.StarRatings = append(s.StarRatings, showDomain.StarRating{Stars: n})
		}
	}
	if price := cell(6); price != "" {
		amount, err := strconv.ParseFloat(price, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q: %w", price, err)
		}
		s.Price.Amount = amount
	}
	s.Price.Currency = cell(7)
	if created := cell(9); created != "" {
		t, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("invalid created at %q: %w", created, err)
		}
		s.CreatedAt = t
	}
	return s, nil
}
