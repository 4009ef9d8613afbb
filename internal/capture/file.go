package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileProvider reads records from a JSON, YAML or HAR file. The file is
// read on every call so it can be rewritten between checks.
type FileProvider struct {
	Path string
}

// GetRequests loads the file.
func (p *FileProvider) GetRequests(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}

	var records []Record
	switch strings.ToLower(filepath.Ext(p.Path)) {
	case ".yaml", ".yml":
		records, err = decodeYAML(data)
	default:
		records, err = DecodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse records file %s: %w", p.Path, err)
	}
	return records, nil
}

// document covers the object forms a records file may take: a webdriver
// style {"value": [...]} result or a HAR archive.
type document struct {
	Value []Record `json:"value" yaml:"value"`
	Log   *harLog  `json:"log" yaml:"log"`
}

type harLog struct {
	Entries []harEntry `json:"entries" yaml:"entries"`
}

type harEntry struct {
	StartedDateTime time.Time  `json:"startedDateTime" yaml:"startedDateTime"`
	Request         harRequest `json:"request" yaml:"request"`
}

type harRequest struct {
	Method  string      `json:"method" yaml:"method"`
	URL     string      `json:"url" yaml:"url"`
	Headers []harHeader `json:"headers" yaml:"headers"`
}

type harHeader struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

func (d *document) records() []Record {
	if d.Log == nil {
		if d.Value == nil {
			return []Record{}
		}
		return d.Value
	}
	out := make([]Record, 0, len(d.Log.Entries))
	for _, e := range d.Log.Entries {
		rec := Record{
			Name:   e.Request.URL,
			Method: e.Request.Method,
			Time:   e.StartedDateTime,
		}
		if len(e.Request.Headers) > 0 {
			rec.Headers = make(map[string]string, len(e.Request.Headers))
			for _, h := range e.Request.Headers {
				rec.Headers[h.Name] = h.Value
			}
		}
		out = append(out, rec)
	}
	return out
}

// DecodeJSON decodes a bare record list, a {"value": [...]} object or a HAR
// archive.
func DecodeJSON(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return doc.records(), nil
}

func decodeYAML(data []byte) ([]Record, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return []Record{}, nil
	}

	node := root.Content[0]
	if node.Kind == yaml.SequenceNode {
		var records []Record
		if err := node.Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var doc document
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.records(), nil
}
