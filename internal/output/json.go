package output

import (
	"encoding/json"

	"github.com/viralstrategist/viralstrategist/internal/strategist"
)

// JSONFormatter renders outcomes as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatOutcome renders an outcome as JSON.
func (f *JSONFormatter) FormatOutcome(out *strategist.Outcome) (string, error) {
	if out == nil {
		return "", nil
	}

	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
