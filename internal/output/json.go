package output

import (
	"encoding/json"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatCalls renders call reports as JSON.
func (f *JSONFormatter) FormatCalls(reports []CallReport) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(reports, "", "  ")
	} else {
		data, err = json.Marshal(reports)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
