package layout

import (
	"encoding/json"
	"io"
	"os"
)

// WriteDebugJSON 将拟合结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeJSON(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeJSON writes res as indented JSON.
func EncodeJSON(w io.Writer, res *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}
