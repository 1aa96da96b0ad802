package domain

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodeRawRecords reads a JSON array of objects. Numbers are kept as
// json.Number so scores survive without float rounding.
func DecodeRawRecords(r io.Reader) ([]RawRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raws []RawRecord
	if err := dec.Decode(&raws); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if raws == nil {
		raws = []RawRecord{}
	}
	return raws, nil
}
