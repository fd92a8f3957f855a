package treasury

import (
	gojson "github.com/goccy/go-json"

	"github.com/relicware/treasury/pkg/id"
)

// marshalRecord and unmarshalRecord persist id.Record using goccy/go-json
// rather than encoding/json: records are read on every Fetch, and this is
// the only hot path in the treasury index worth the faster codec.
func marshalRecord(rec *id.Record) ([]byte, error) {
	return gojson.Marshal(rec)
}

func unmarshalRecord(data []byte) (*id.Record, error) {
	var rec id.Record
	if err := gojson.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
