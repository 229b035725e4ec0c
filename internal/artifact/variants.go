package artifact

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/domain"
	"github.com/mrz1836/qaforge/internal/errors"
)

// Columns returns the table header for a set of variants: Scenario_ID and
// Variant_ID first, then the union of axis names in sorted order.
func Columns(variants []domain.Variant) []string {
	set := make(map[string]struct{})
	for _, v := range variants {
		for name := range v.Values {
			set[name] = struct{}{}
		}
	}
	return headerFor(set)
}

func headerFor(set map[string]struct{}) []string {
	delete(set, constants.ColumnScenarioID)
	delete(set, constants.ColumnVariantID)
	axes := make([]string, 0, len(set))
	for name := range set {
		axes = append(axes, name)
	}
	sort.Strings(axes)
	return append([]string{constants.ColumnScenarioID, constants.ColumnVariantID}, axes...)
}

// EncodeVariants writes variants as CSV. Cells for axes a row does not
// define are filled with N/A.
func EncodeVariants(w io.Writer, variants []domain.Variant) error {
	header := Columns(variants)
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, v := range variants {
		row[0], row[1] = v.ScenarioID, v.ID
		for i, col := range header[2:] {
			value, ok := v.Values[col]
			if !ok {
				value = constants.MissingValue
			}
			row[i+2] = value
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteVariants atomically writes the variants table to path.
func WriteVariants(path string, variants []domain.Variant) error {
	if len(variants) == 0 {
		return errors.ErrNoVariants
	}
	var buf bytes.Buffer
	if err := EncodeVariants(&buf, variants); err != nil {
		return fmt.Errorf("encode variants: %w", err)
	}
	return WriteFileAtomic(path, buf.Bytes())
}

// ReadVariants loads a variants table. Columns other than Scenario_ID and
// Variant_ID become axis values; N/A cells are kept verbatim so a rewrite
// reproduces the same table.
func ReadVariants(path string) ([]domain.Variant, error) {
	f, err := os.Open(path) //#nosec G304 -- path is constructed internally
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	var variants []domain.Variant
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		v := domain.Variant{Values: make(map[string]string, len(header))}
		for i, col := range header {
			if i >= len(record) {
				break
			}
			switch col {
			case constants.ColumnScenarioID:
				v.ScenarioID = record[i]
			case constants.ColumnVariantID:
				v.ID = record[i]
			default:
				v.Values[col] = record[i]
			}
		}
		variants = append(variants, v)
	}
	return variants, nil
}
