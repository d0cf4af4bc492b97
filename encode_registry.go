package castor

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// Registry files persist decimals as bare JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// amountCmd reads a money value spread over the two fields EmbedFrom writes.
type amountCmd struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (a amountCmd) Money() Money { return M(a.Amount, a.Currency) }

// unitCmd reads a per-surface unit price spread over the two fields
// PrefixFrom writes.
type unitCmd struct {
	UnitAmount   decimal.Decimal `json:"unitAmount"`
	UnitCurrency string          `json:"unitCurrency"`
}

func (a unitCmd) UnitMoney() Money {
	if a.UnitAmount.IsZero() {
		return Money{}
	}
	return M(a.UnitAmount, a.UnitCurrency).exact()
}

// DecodeRegistry reads a JSONL stream and assembles the Registry it
// describes. The registry is decoded as is, callers validate it or commit
// it to an Engine.
func DecodeRegistry(r io.Reader) (*Registry, error) {
	reg := NewRegistry()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		if err := decodeRecord(raw, reg); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return reg, nil
}

// decodeRecord decodes one registry line into reg. The command field selects
// the record type, the remaining fields are the record itself.
func decodeRecord(raw []byte, reg *Registry) error {
	var head struct {
		Command CommandType `json:"command"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return fmt.Errorf("could not identify command in line %q: %w", raw, err)
	}

	switch head.Command {
	case CmdFormula:
		var f PortageFormula
		if err := json.Unmarshal(raw, &f); err != nil {
			return err
		}
		reg.SetFormula(f)
	case CmdRatio:
		var r struct {
			Value Rate `json:"value"`
		}
		if err := json.Unmarshal(raw, &r); err != nil {
			return err
		}
		reg.SetRatio(r.Value)
	case CmdLot:
		var l Lot
		if err := json.Unmarshal(raw, &l); err != nil {
			return err
		}
		reg.SetLot(l)
	case CmdJoin:
		var p Participant
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		reg.SetParticipant(p)
	default:
		return fmt.Errorf("unknown record command: %q", head.Command)
	}
	return nil
}

// EncodeRecord marshals a single record and writes it as one JSONL line.
func EncodeRecord(w io.Writer, record any) error {
	decimal.MarshalJSONWithoutQuotes = true
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// EncodeRegistry persists the registry to w as canonical JSONL: the formula
// first, then the reserve ratio, the lots sorted by id, and the participants
// in chronological entry order. Encoding an unchanged registry always
// produces the same bytes.
func EncodeRegistry(w io.Writer, reg *Registry) error {
	decimal.MarshalJSONWithoutQuotes = true

	var ratio jsonObjectWriter
	ratio.Append("command", CmdRatio)
	ratio.Append("value", reg.Ratio())

	records := []any{reg.Formula(), &ratio}
	for lot := range reg.Lots() {
		records = append(records, lot)
	}
	for _, p := range reg.Participants() {
		records = append(records, p)
	}

	for _, record := range records {
		if err := EncodeRecord(w, record); err != nil {
			return err
		}
	}
	return nil
}
