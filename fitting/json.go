package fitting

import (
	"bytes"
	"encoding/json"
	"math"
)

// MarshalJSON writes unbounded limits as null and the error as a string.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	out := struct {
		plain
		MaxWidth  *float64 `json:"maxWidth"`
		MaxHeight *float64 `json:"maxHeight"`
		Error     string   `json:"error,omitempty"`
	}{
		plain:     plain(r),
		MaxWidth:  finite(r.MaxWidth),
		MaxHeight: finite(r.MaxHeight),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	// 由外层编码器决定是否转义 HTML
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
