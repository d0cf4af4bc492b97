package castor

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// This file reads scenario exports of the original browser calculator and
// converts them into a registry. The browser format nests everything under
// a "scenario" object, stores the indexation rate in percent points, and
// stores amounts as plain numbers, sometimes as localized strings.

// jsonAt resolves a jsonpath query to a single value.
func jsonAt(jobj any, path string) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	return jval, nil
}

// jsonList resolves a jsonpath query to a list of values. A missing
// section is not an error, it resolves to an empty list.
func jsonList(jobj any, path string) []any {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		log.Debug().Str("path", path).Msg("section missing from legacy export")
		return nil
	}
	jlist, ok := jval.([]any)
	if !ok {
		return []any{jval}
	}
	return jlist
}

// jsonNumber coerces a decoded json value into a decimal. The browser
// sometimes exports numbers as localized strings ("3 437,50").
func jsonNumber(jval any) (decimal.Decimal, error) {
	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		s := strings.ReplaceAll(v, ",", ".")
		s = strings.ReplaceAll(s, " ", "")
		s = strings.TrimSuffix(s, "%")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("value is an invalid number string %q: %w", v, err)
		}
		return d, nil
	case nil:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("value %v is neither a number nor a string", jval)
	}
}

// jsonString returns the string under key, or "" when absent.
func jsonString(jmap map[string]any, key string) string {
	s, _ := jmap[key].(string)
	return s
}

// DecodeLegacy decodes a scenario export of the original browser
// calculator from r and returns the equivalent registry.
//
// The indexation rate is read in percent points (2 means 2% per period).
// The reserve ratio is read as a fraction when it is 1 or less, and in
// percent points above that, so both historic encodings of the field load
// the same way.
func DecodeLegacy(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read legacy export: %w", err)
	}
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return nil, fmt.Errorf("cannot parse legacy export: %w", err)
	}

	reg := NewRegistry()

	jdeed, err := jsonAt(jobj, "$.scenario.config.deedDate")
	if err != nil {
		return nil, err
	}
	deed, ok := jdeed.(string)
	if !ok {
		return nil, fmt.Errorf("deedDate is not a string: %v", jdeed)
	}
	reference, err := ParseDate(deed)
	if err != nil {
		return nil, fmt.Errorf("invalid deedDate: %w", err)
	}

	jrate, err := jsonAt(jobj, "$.scenario.config.indexRate")
	if err != nil {
		return nil, err
	}
	points, err := jsonNumber(jrate)
	if err != nil {
		return nil, fmt.Errorf("invalid indexRate: %w", err)
	}

	formula := NewPortageFormula(R(points.Shift(-2)), reference)
	if cur, err := jsonAt(jobj, "$.scenario.config.currency"); err == nil {
		if s, ok := cur.(string); ok && s != "" {
			formula.Currency = s
		}
	}
	if jperiod, err := jsonAt(jobj, "$.scenario.config.period"); err == nil {
		if s, ok := jperiod.(string); ok && s != "" {
			period, err := ParsePeriod(s)
			if err != nil {
				return nil, err
			}
			formula.Period = period
		}
	}
	reg.SetFormula(formula)

	jratio, err := jsonAt(jobj, "$.scenario.config.reserveRatio")
	if err != nil {
		return nil, err
	}
	ratio, err := jsonNumber(jratio)
	if err != nil {
		return nil, fmt.Errorf("invalid reserveRatio: %w", err)
	}
	if ratio.GreaterThan(decimal.New(1, 0)) {
		ratio = ratio.Shift(-2)
	}
	reg.SetRatio(R(ratio))

	for _, jlot := range jsonList(jobj, "$.scenario.lots[*]") {
		jmap, ok := jlot.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("lot is not an object: %v", jlot)
		}
		id := jsonString(jmap, "id")
		seller := jsonString(jmap, "seller")
		if seller == "" {
			seller = CoOwnership
		}
		if junit, exists := jmap["unitPrice"]; exists {
			unit, err := jsonNumber(junit)
			if err != nil {
				return nil, fmt.Errorf("lot %q: invalid unitPrice: %w", id, err)
			}
			reg.SetLot(NewSurfaceLot(id, M(unit, formula.Currency)))
			continue
		}
		price, err := jsonNumber(jmap["price"])
		if err != nil {
			return nil, fmt.Errorf("lot %q: invalid price: %w", id, err)
		}
		reg.SetLot(NewLot(id, seller, M(price, formula.Currency)))
	}

	for _, jp := range jsonList(jobj, "$.scenario.participants[*]") {
		jmap, ok := jp.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("participant is not an object: %v", jp)
		}
		name := jsonString(jmap, "name")
		entry, err := ParseDate(jsonString(jmap, "entryDate"))
		if err != nil {
			return nil, fmt.Errorf("participant %q: invalid entryDate: %w", name, err)
		}
		capital, err := jsonNumber(jmap["capital"])
		if err != nil {
			return nil, fmt.Errorf("participant %q: invalid capital: %w", name, err)
		}
		p := NewParticipant(name, entry, M(capital, formula.Currency))
		p.Founder, _ = jmap["founder"].(bool)
		p.Lot = jsonString(jmap, "lot")
		if jsurface, exists := jmap["surface"]; exists {
			surface, err := jsonNumber(jsurface)
			if err != nil {
				return nil, fmt.Errorf("participant %q: invalid surface: %w", name, err)
			}
			p.Surface = S(surface)
		}
		reg.SetParticipant(p)
	}

	return reg, nil
}
