package roster

import (
	"bytes"
	"encoding/json"

	"github.com/mcoot/tourneybot/internal/model"
)

const jsonIndent = "    "

func newJSONStore() ([]byte, error) {
	return []byte("[]"), nil
}

// appendJSONRecord appends rec to the JSON array. Existing elements are kept
// as raw JSON so fields added by hand survive the rewrite.
func appendJSONRecord(data []byte, rec model.Registration) ([]byte, error) {
	records := []json.RawMessage{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
	}

	encoded, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	records = append(records, encoded)

	return json.MarshalIndent(records, "", jsonIndent)
}
