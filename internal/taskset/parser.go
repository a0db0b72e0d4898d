// Package taskset reads task sets from text or YAML, validates them, and
// normalizes fractional time values to a common integer unit.
package taskset

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/me/rtsched/pkg/model"
	"gopkg.in/yaml.v3"
)

// Format selects the input syntax.
type Format string

const (
	FormatAuto Format = ""
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// FormatForPath picks YAML for .yaml and .yml files and text otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatText
}

// RawTask is a task as written, before normalization.
type RawTask struct {
	Name          string   `json:"name" yaml:"name"`
	ComputingTime Quantity `json:"computing_time" yaml:"computing_time"`
	Period        Quantity `json:"period" yaml:"period"`
	Deadline      Quantity `json:"deadline" yaml:"deadline"`
	Line          int      `json:"-" yaml:"-"`
}

// Document is a parsed task-set file.
type Document struct {
	Name  string    `json:"name" yaml:"name"`
	Tasks []RawTask `json:"tasks" yaml:"tasks"`
}

// Parser turns task-set files into validated, normalized task sets.
type Parser struct {
	logger    *slog.Logger
	validator *Validator
}

// New creates a Parser with the given logger.
func New(logger *slog.Logger) *Parser {
	return &Parser{
		logger:    logger.With("component", "taskset"),
		validator: NewValidator(logger),
	}
}

// Check validates and normalizes an already-decoded document.
func (p *Parser) Check(doc *Document) (*Normalized, error) {
	if apiErr := p.validator.Validate(doc); apiErr != nil {
		return nil, apiErr
	}
	n, err := Normalize(doc)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("loaded", "name", n.Name, "tasks", len(n.Tasks), "scale", n.Scale)
	return n, nil
}

// Load parses, validates and normalizes data. Input problems are returned as
// *model.APIError with one FieldError per offending value.
func (p *Parser) Load(data []byte, format Format) (*Normalized, error) {
	doc, err := p.Parse(data, format)
	if err != nil {
		return nil, err
	}
	return p.Check(doc)
}

// Parse reads data in the given format. FormatAuto sniffs the content.
func (p *Parser) Parse(data []byte, format Format) (*Document, error) {
	if format == FormatAuto {
		format = sniff(data)
	}
	switch format {
	case FormatText:
		return p.ParseText(data)
	case FormatYAML:
		return p.ParseYAML(data)
	default:
		return nil, fmt.Errorf("unknown task-set format %q", format)
	}
}

// ParseText reads one task per line as "name, C, T[, D]". Blank lines and
// lines starting with # are skipped.
func (p *Parser) ParseText(data []byte) (*Document, error) {
	doc := &Document{}
	var errs []model.FieldError

	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, ",")
		if len(fields) != 3 && len(fields) != 4 {
			errs = append(errs, model.FieldError{
				Line:    line,
				Message: fmt.Sprintf("expected 3 or 4 comma-separated fields, got %d", len(fields)),
			})
			continue
		}

		rt := RawTask{Name: strings.TrimSpace(fields[0]), Line: line}
		targets := []struct {
			field string
			q     *Quantity
		}{
			{"computing_time", &rt.ComputingTime},
			{"period", &rt.Period},
			{"deadline", &rt.Deadline},
		}
		ok := true
		for i, v := range fields[1:] {
			q, err := ParseQuantity(v)
			if err != nil {
				errs = append(errs, model.FieldError{Field: targets[i].field, Line: line, Message: err.Error()})
				ok = false
				continue
			}
			*targets[i].q = q
		}
		if ok {
			doc.Tasks = append(doc.Tasks, rt)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read task set: %w", err)
	}
	if len(errs) > 0 {
		return nil, model.NewValidationError("task set parse failed", errs...)
	}
	return doc, nil
}

// ParseYAML reads a document with a name and a list of tasks.
func (p *Parser) ParseYAML(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	doc := &Document{}
	if len(root.Content) == 0 {
		return doc, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("YAML parse error: line %d: expected a mapping with name and tasks", top.Line)
	}

	var errs []model.FieldError
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i], top.Content[i+1]
		switch key.Value {
		case "name":
			doc.Name = val.Value
		case "tasks":
			if val.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("YAML parse error: line %d: tasks must be a list", val.Line)
			}
			for _, item := range val.Content {
				var rt RawTask
				if err := item.Decode(&rt); err != nil {
					errs = append(errs, model.FieldError{Field: "tasks", Line: item.Line, Message: err.Error()})
					continue
				}
				rt.Line = item.Line
				doc.Tasks = append(doc.Tasks, rt)
			}
		default:
			p.logger.Warn("unknown key ignored", "key", key.Value, "line", key.Line)
		}
	}
	if len(errs) > 0 {
		return nil, model.NewValidationError("task set parse failed", errs...)
	}
	return doc, nil
}

// sniff treats the content as YAML when its first meaningful line is a
// "key:" entry without commas.
func sniff(data []byte) Format {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") || text == "---" {
			continue
		}
		if !strings.Contains(text, ",") && strings.Contains(text, ":") {
			return FormatYAML
		}
		return FormatText
	}
	return FormatText
}
