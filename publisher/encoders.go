package publisher

import (
	"encoding/json"

	"github.com/vizfeed/beacon/encoding"
)

func init() {
	RegisterEncoder("msgpack", func() Encoder { return msgpackEncoder{} })
	RegisterEncoder("json", func() Encoder { return jsonEncoder{} })
}

// msgpackEncoder is the default batch encoder
type msgpackEncoder struct{}

func (msgpackEncoder) Encode(batch MarkerBatch) ([]byte, error) {
	return encoding.Marshal(batch)
}

// jsonEncoder encodes batches as JSON for sinks whose consumers prefer a
// self-describing format
type jsonEncoder struct{}

func (jsonEncoder) Encode(batch MarkerBatch) ([]byte, error) {
	return json.Marshal(batch)
}
