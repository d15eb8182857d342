package indices

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeRecords decodes a ledger: a JSON array of flat objects.
//
// The order of records and of the fields inside each record is preserved. An empty input is an
// empty ledger.
func DecodeRecords(r io.Reader) ([]*Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("could not decode ledger: %w", err)
	}
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("could not decode ledger: record #%d is null", i)
		}
	}
	return records, nil
}

// EncodeRecords writes records as a JSON array, one record per line, so that ledgers
// stay readable and diff well under version control.
func EncodeRecords(w io.Writer, records []*Record) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("[\n")
	for i, rec := range records {
		b, err := rec.MarshalJSON()
		if err != nil {
			return fmt.Errorf("could not encode record #%d: %w", i, err)
		}
		bw.Write(b)
		if i < len(records)-1 {
			bw.WriteString(",")
		}
		bw.WriteString("\n")
	}
	bw.WriteString("]\n")
	return bw.Flush()
}
