package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deckforge/deckforge/pkg/errors"
)

// Document output formats for report commands.
const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatTree = "tree"
)

// writeDocument marshals payload and writes it to output, or stdout when
// output is empty. Format is json (optionally pretty-printed) or yaml.
func writeDocument(payload any, output, format string, pretty bool) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "", formatJSON:
		if pretty {
			data, err = json.MarshalIndent(payload, "", "  ")
		} else {
			data, err = json.Marshal(payload)
		}
	case formatYAML:
		data, err = yaml.Marshal(payload)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown output format %q (json, yaml)", format)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding %s output", format)
	}

	if output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "writing %s", output)
	}
	printSuccess("Wrote %s", output)
	return nil
}

// loadJSONMap reads a JSON object of string values, used for palette and
// color mapping files.
func loadJSONMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading %s", path)
	}
	var out map[string]string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing %s: expected a JSON object of strings", path)
	}
	return out, nil
}

// formatSlideRanges renders sorted slide numbers compactly, e.g. "1-3, 7".
func formatSlideRanges(slides []int) string {
	if len(slides) == 0 {
		return ""
	}
	var ranges []string
	start, prev := slides[0], slides[0]
	for _, num := range slides[1:] {
		if num == prev+1 {
			prev = num
			continue
		}
		ranges = append(ranges, formatRange(start, prev))
		start, prev = num, num
	}
	ranges = append(ranges, formatRange(start, prev))
	return strings.Join(ranges, ", ")
}

func formatRange(start, end int) string {
	if start == end {
		return strconv.Itoa(start)
	}
	return fmt.Sprintf("%d-%d", start, end)
}
