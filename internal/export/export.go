// Package export writes the ranked matchup table as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ramonehamilton/matchups/internal/matchups"
	"github.com/ramonehamilton/matchups/internal/stats"
)

// Format represents the export format.
type Format string

const (
	// FormatCSV writes one line per ranked row.
	FormatCSV Format = "csv"
	// FormatJSON writes the records as a JSON array.
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// RankingRecord is one exported row. Missing rates are nil in JSON and
// empty in CSV.
type RankingRecord struct {
	Rank             int      `json:"rank" csv:"rank"`
	ID               int      `json:"id" csv:"id"`
	Name             string   `json:"name" csv:"name"`
	PlayerClass      string   `json:"player_class" csv:"player_class"`
	PopularityTotal  float64  `json:"popularity_total" csv:"popularity_total"`
	PopularityClass  float64  `json:"popularity_class" csv:"popularity_class"`
	WinRate          *float64 `json:"win_rate" csv:"win_rate"`
	EffectiveWinRate *float64 `json:"effective_win_rate" csv:"effective_win_rate"`
	Favorite         bool     `json:"favorite" csv:"favorite"`
}

var csvHeader = []string{
	"rank", "id", "name", "player_class", "popularity_total",
	"popularity_class", "win_rate", "effective_win_rate", "favorite",
}

// Records flattens view into rows in ranked order.
func Records(view matchups.ViewModel, state matchups.State) []RankingRecord {
	records := make([]RankingRecord, len(view.Rows))
	for i, row := range view.Rows {
		records[i] = RankingRecord{
			Rank:             i + 1,
			ID:               row.ID,
			Name:             row.Name,
			PlayerClass:      row.PlayerClass.String(),
			PopularityTotal:  stats.Round2(row.PopularityTotal),
			PopularityClass:  stats.Round2(row.PopularityClass),
			WinRate:          rounded(row.WinRate),
			EffectiveWinRate: rounded(row.EffectiveWinRate),
			Favorite:         state.Favorites.Has(row.ID),
		}
	}
	return records
}

func rounded(v float64) *float64 {
	p := stats.Nullable(v)
	if p != nil {
		*p = stats.Round2(*p)
	}
	return p
}

// WriteRanking writes the ranked view to w in format.
func WriteRanking(w io.Writer, format Format, view matchups.ViewModel, state matchups.State) error {
	records := Records(view, state)
	switch format {
	case FormatCSV:
		return writeCSV(w, records)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func writeCSV(w io.Writer, records []RankingRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, r := range records {
		row := []string{
			strconv.Itoa(r.Rank),
			strconv.Itoa(r.ID),
			r.Name,
			r.PlayerClass,
			formatFloat(&r.PopularityTotal),
			formatFloat(&r.PopularityClass),
			formatFloat(r.WinRate),
			formatFloat(r.EffectiveWinRate),
			strconv.FormatBool(r.Favorite),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
