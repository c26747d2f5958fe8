package extract

import (
	"regexp"
	"strings"
	"sync"
)

// Record maps schema field names to extracted values.
type Record map[string]string

// Get returns the value for a field, or "" when absent.
func (r Record) Get(name string) string {
	if r == nil {
		return ""
	}
	return r[name]
}

// Empty reports whether every value in the record is blank.
func (r Record) Empty() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Hashtags holds the tokens found in a reply. Raw keeps the reply text when no
// token matched so callers can display it verbatim.
type Hashtags struct {
	Tags []string `json:"tags"`
	Raw  string   `json:"raw,omitempty"`
}

// labelValueSuffix follows the escaped label: optional colon, optional 📋
// glyph, optional opening bracket, then the value up to a newline or "]".
const labelValueSuffix = `:?\s*(?:📋\s*)?\[?([^\]\n]+)\]?`

var (
	patternMu    sync.RWMutex
	patternCache = map[string]*regexp.Regexp{}
)

// compile caches patterns keyed by source; labels come from a handful of
// prompt files so the cache stays small.
func compile(expr string) (*regexp.Regexp, error) {
	patternMu.RLock()
	re, ok := patternCache[expr]
	patternMu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	patternMu.Lock()
	patternCache[expr] = re
	patternMu.Unlock()
	return re, nil
}

func labelPattern(label string) *regexp.Regexp {
	// QuoteMeta makes any label a literal; the expression cannot fail to compile.
	re, _ := compile(`(?i)` + regexp.QuoteMeta(label) + labelValueSuffix)
	return re
}

// FieldValue returns the trimmed value following label in text, or "" if the label
// does not occur.
func FieldValue(text, label string) string {
	if strings.TrimSpace(label) == "" || text == "" {
		return ""
	}
	m := labelPattern(label).FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// HasFailureMarker reports whether text carries one of the markers.
func HasFailureMarker(text string, markers []string) bool {
	for _, marker := range markers {
		if marker != "" && strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// ExtractRecord applies the schema's fields to text. Every schema field is
// present in the result; misses are "".
func ExtractRecord(schema Schema, text string) Record {
	record := make(Record, len(schema.Fields))
	if HasFailureMarker(text, schema.failureMarkers()) {
		return record
	}
	fillRecord(record, schema.Fields, text)
	return record
}

func fillRecord(record Record, fields []Field, text string) {
	for _, f := range fields {
		value := ""
		for _, label := range f.Labels {
			if value = FieldValue(text, label); value != "" {
				break
			}
		}
		for _, s := range f.Strip {
			if s != "" {
				value = strings.ReplaceAll(value, s, "")
			}
		}
		record[f.Name] = strings.TrimSpace(value)
	}
}

// ExtractBlocks splits text on the schema delimiter and extracts one record
// per block, in source order.
//
// Text before the first delimiter is a preamble, not a block. When the
// delimiter never occurs, the whole text is treated as a single candidate
// block. Blocks whose trimmed length does not exceed MinBlockLength are
// dropped.
func ExtractBlocks(schema Schema, text string) []Record {
	if HasFailureMarker(text, schema.failureMarkers()) {
		return []Record{}
	}

	segments := splitBlocks(schema.Delimiter, text)
	min := schema.minBlockLength()

	records := make([]Record, 0, len(segments))
	for _, segment := range segments {
		if len(strings.TrimSpace(segment)) <= min {
			continue
		}
		record := make(Record, len(schema.Fields))
		fillRecord(record, schema.Fields, segment)
		records = append(records, record)
	}
	return records
}

func splitBlocks(delimiter, text string) []string {
	if strings.TrimSpace(delimiter) == "" {
		return []string{text}
	}
	re, err := compile(delimiter)
	if err != nil {
		return []string{text}
	}

	parts := re.Split(text, -1)
	if len(parts) <= 1 {
		return parts
	}
	return parts[1:]
}

// ExtractHashtags returns every token matching the schema's token pattern in
// order of appearance.
func ExtractHashtags(schema Schema, text string) Hashtags {
	if HasFailureMarker(text, schema.failureMarkers()) {
		return Hashtags{Tags: []string{}}
	}

	re, err := compile(schema.tokenPattern())
	if err != nil {
		re, _ = compile(defaultTokenPattern)
	}

	tags := re.FindAllString(text, -1)
	if len(tags) == 0 {
		return Hashtags{Tags: []string{}, Raw: strings.TrimSpace(text)}
	}
	return Hashtags{Tags: tags}
}

var copyReplacer = strings.NewReplacer("📋 ", "", "[", "", "]", "", "*", "")

// CleanCopyText strips presentation markers from a value before it is copied.
func CleanCopyText(value string) string {
	return strings.TrimSpace(copyReplacer.Replace(value))
}
