// Package insee downloads time series from the INSEE statistics bank
// (bdm.insee.fr) and derives portage rate suggestions from them.
//
// The engine itself never fetches anything: this package only serves the
// `cct insee` command, which prints a series and the yearly rate it implies
// so a co-ownership can pick an indexation rate grounded on a public index.
package insee

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/castorhq/castor"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// idBanks of the series co-ownerships typically index on.
const (
	// IRL is the rent reference index (indice de référence des loyers).
	IRL = "001515333"
	// ICC is the construction cost index (indice du coût de la construction).
	ICC = "000008630"
)

// Fetch downloads and parses the INSEE time series idBank, restricted to the
// requested date range.
func Fetch(idBank string, r castor.Range) (*Series, error) {
	url := seriesURL(idBank, r)
	log.Debug().Str("idBank", idBank).Str("url", url).Msg("downloading INSEE series")

	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download from INSEE for ID %s: %w", idBank, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download from INSEE for ID %s: received status %s", idBank, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return extractSeries(body, idBank)
}

// seriesURL builds the bdm.insee.fr CSV download URL. The site wants the
// bounds as quarter and year pairs whatever the series granularity.
func seriesURL(idBank string, r castor.Range) string {
	quarter := func(d castor.Date) int { return (int(d.Month()) - 1) / 3 + 1 }
	return fmt.Sprintf("https://bdm.insee.fr/series/%s/csv?lang=fr&ordre=antechronologique&transposition=donneescolonne&periodeDebut=%d&anneeDebut=%d&periodeFin=%d&anneeFin=%d&revision=sansrevisions",
		idBank,
		quarter(r.From), r.From.Year(),
		quarter(r.To), r.To.Year(),
	)
}

// extractSeries opens the zip archive INSEE serves and parses the values file
// inside, whichever granularity it carries.
func extractSeries(body []byte, idBank string) (*Series, error) {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive from INSEE response: %w", err)
	}
	var found []string
	for _, f := range zr.File {
		found = append(found, f.Name)
		if f.Name != "valeurs_trimestrielles.csv" && f.Name != "valeurs_mensuelles.csv" {
			continue
		}
		log.Debug().Str("file", f.Name).Msg("found values file")
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open '%s' from zip archive: %w", f.Name, err)
		}
		defer rc.Close()
		return parseSeries(rc)
	}
	return nil, fmt.Errorf("could not find a values file (mensuelles or trimestrielles) in downloaded zip file for ID %s (found: %s)", idBank, strings.Join(found, ", "))
}

// Series holds the data from an INSEE time series CSV file.
type Series struct {
	Libelle    string
	IDBank     string
	LastUpdate time.Time
	Values     map[castor.Date]float64
}

// AnnualizedRate derives the constant yearly growth rate between the oldest
// and the newest observations of the series within r, rounded to the basis
// point. This is the rate a portage formula indexed on the series would
// charge per year.
func (s *Series) AnnualizedRate(r castor.Range) (castor.Rate, error) {
	var first, last castor.Date
	for date := range s.Values {
		if !r.Contains(date) {
			continue
		}
		if first.IsZero() || date.Before(first) {
			first = date
		}
		if last.IsZero() || date.After(last) {
			last = date
		}
	}
	if first.IsZero() || first == last {
		return castor.Rate{}, fmt.Errorf("not enough observations between %s and %s to annualize", r.From, r.To)
	}
	if s.Values[first] <= 0 {
		return castor.Rate{}, fmt.Errorf("cannot annualize from a non-positive observation %f on %s", s.Values[first], first)
	}

	days := dayOf(last).Sub(dayOf(first)).Hours() / 24
	years := days / 365.25
	rate := math.Pow(s.Values[last]/s.Values[first], 1/years) - 1
	return castor.R(decimal.NewFromFloat(rate).Round(4)), nil
}

func dayOf(d castor.Date) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// endOfPeriod converts an INSEE period label, "2025-T2" for a quarter or
// "2025-08" for a month, into the last day of that period.
func endOfPeriod(s string) (castor.Date, error) {
	if before, after, ok := strings.Cut(s, "-T"); ok {
		year, err := strconv.Atoi(before)
		if err != nil {
			return castor.Date{}, fmt.Errorf("invalid year in quarterly date %q: %w", s, err)
		}
		quarter, err := strconv.Atoi(after)
		if err != nil {
			return castor.Date{}, fmt.Errorf("invalid quarter in quarterly date %q: %w", s, err)
		}
		if quarter < 1 || quarter > 4 {
			return castor.Date{}, fmt.Errorf("invalid quarter in quarterly date %q", s)
		}
		// day 0 of the next month is the quarter's last day
		return castor.NewDate(year, time.Month(quarter*3)+1, 0), nil
	}

	before, after, ok := strings.Cut(s, "-")
	if !ok {
		return castor.Date{}, fmt.Errorf("unrecognized insee date format: %q", s)
	}
	year, err := strconv.Atoi(before)
	if err != nil {
		return castor.Date{}, fmt.Errorf("invalid year in monthly date %q: %w", s, err)
	}
	month, err := strconv.Atoi(after)
	if err != nil {
		return castor.Date{}, fmt.Errorf("invalid month in monthly date %q: %w", s, err)
	}
	if month < 1 || month > 12 {
		return castor.Date{}, fmt.Errorf("invalid month in monthly date %q", s)
	}
	return castor.NewDate(year, time.Month(month)+1, 0), nil
}

// parseSeries reads the INSEE CSV format from an io.Reader.
func parseSeries(r io.Reader) (*Series, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	// Four header rows come before the data: libellé, idBank, last update
	// and the period column captions.
	if len(rows) < 4 {
		return nil, fmt.Errorf("not enough records in csv to parse series")
	}
	updated, err := time.Parse("02/01/2006 15:04", rows[2][1])
	if err != nil {
		return nil, fmt.Errorf("failed to parse last update date %q: %w", rows[2][1], err)
	}

	series := &Series{
		Libelle:    rows[0][1],
		IDBank:     rows[1][1],
		LastUpdate: updated,
		Values:     make(map[castor.Date]float64, len(rows)-4),
	}
	for _, row := range rows[4:] {
		if len(row) < 2 || row[1] == "" {
			// provisional periods are published without a value yet
			continue
		}
		day, err := endOfPeriod(row[0])
		if err != nil {
			return nil, err
		}
		value, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse value %q for date %q: %w", row[1], row[0], err)
		}
		series.Values[day] = value
	}
	return series, nil
}
