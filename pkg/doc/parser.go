package doc

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Parser parses policy document sources into the Document model.
// It handles YAML parsing and structural validation.
type Parser struct {
	maxFileSize int64 // Maximum file size in bytes (default: 1MB)
}

// DefaultMaxFileSize is the default maximum document file size.
// Policy documents are prose-sized; anything larger is almost certainly a
// mistake.
const DefaultMaxFileSize = 1 * 1024 * 1024

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: DefaultMaxFileSize,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// ParseFile parses a document file at the given path.
// It returns an error if the file cannot be read, exceeds the size limit,
// is not valid UTF-8, has invalid YAML syntax, or fails structural
// validation.
func (p *Parser) ParseFile(path string) (*Document, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &ParseError{
			SourceFile: path,
			Message:    "failed to access file",
			Cause:      err,
		}
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, &ParseError{
			SourceFile: path,
			Message:    "not a regular file",
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &ParseError{
			SourceFile: path,
			Message:    fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{
			SourceFile: path,
			Message:    "failed to read file",
			Cause:      err,
		}
	}

	return p.ParseBytes(data, path)
}

// ParseBytes parses document YAML from a byte slice.
// This is useful for testing or parsing documents from memory.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*Document, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &ParseError{
			SourceFile: sourcePath,
			Message:    fmt.Sprintf("data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
		}
	}

	if !utf8.Valid(data) {
		return nil, &ParseError{
			SourceFile: sourcePath,
			Message:    "document contains invalid UTF-8 encoding",
		}
	}

	var raw yamlDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{
			SourceFile: sourcePath,
			Message:    "YAML parsing failed",
			Cause:      err,
		}
	}

	return p.build(&raw, sourcePath)
}

// build transforms the intermediate YAML structure into a validated Document.
func (p *Parser) build(raw *yamlDocument, sourcePath string) (*Document, error) {
	if strings.TrimSpace(raw.Name) == "" {
		return nil, &SchemaError{
			Document: sourcePath,
			Field:    "name",
			Message:  "document name is required",
		}
	}

	document := &Document{
		Name:        raw.Name,
		Description: raw.Description,
		SourceFile:  sourcePath,
	}

	relations, err := p.buildRelations(raw)
	if err != nil {
		return nil, err
	}
	document.Relations = relations

	if raw.AppliesTo != nil {
		document.Selector = &Selector{
			Language: strings.ToLower(raw.AppliesTo.Language),
			Signals:  raw.AppliesTo.Signals,
		}
	}

	directives, err := p.buildDirectives(raw)
	if err != nil {
		return nil, err
	}
	document.Directives = directives

	return document, nil
}

// buildRelations collects relations from both the singular `relation:` field
// and the `relations:` list.
func (p *Parser) buildRelations(raw *yamlDocument) ([]Relation, error) {
	var rawRelations []yamlRelation
	if raw.Relation != nil {
		rawRelations = append(rawRelations, *raw.Relation)
	}
	rawRelations = append(rawRelations, raw.Relations...)

	relations := make([]Relation, 0, len(rawRelations))
	for i, rel := range rawRelations {
		kind := RelationKind(strings.ToLower(rel.Kind))
		if !kind.IsValid() {
			return nil, &SchemaError{
				Document: raw.Name,
				Field:    fmt.Sprintf("relations[%d].kind", i),
				Message:  fmt.Sprintf("unknown relation kind %q (expected %q or %q)", rel.Kind, RelationSupplements, RelationExtends),
			}
		}
		if strings.TrimSpace(rel.Target) == "" {
			return nil, &SchemaError{
				Document: raw.Name,
				Field:    fmt.Sprintf("relations[%d].target", i),
				Message:  "relation target is required",
			}
		}
		if rel.Target == raw.Name {
			return nil, &SchemaError{
				Document: raw.Name,
				Field:    fmt.Sprintf("relations[%d].target", i),
				Message:  "document cannot relate to itself",
			}
		}
		relations = append(relations, Relation{Kind: kind, Target: rel.Target})
	}

	return relations, nil
}

// buildDirectives transforms body sections into directives.
// Within a single document a topic may repeat only when the later section is
// flagged augment; a document cannot override itself.
func (p *Parser) buildDirectives(raw *yamlDocument) ([]*Directive, error) {
	directives := make([]*Directive, 0, len(raw.Sections))
	seenTopics := make(map[string]bool, len(raw.Sections))

	for i, section := range raw.Sections {
		if strings.TrimSpace(section.Topic) == "" {
			return nil, &SchemaError{
				Document: raw.Name,
				Field:    fmt.Sprintf("sections[%d].topic", i),
				Message:  "section topic is required",
			}
		}
		if strings.TrimSpace(section.Rule) == "" {
			return nil, &SchemaError{
				Document: raw.Name,
				Field:    fmt.Sprintf("sections[%d].rule", i),
				Message:  "section rule is required",
			}
		}

		mode := MergeOverride
		if section.Mode != "" {
			mode = MergeMode(strings.ToLower(section.Mode))
			if !mode.IsValid() {
				return nil, &SchemaError{
					Document: raw.Name,
					Field:    fmt.Sprintf("sections[%d].mode", i),
					Message:  fmt.Sprintf("unknown merge mode %q (expected %q or %q)", section.Mode, MergeOverride, MergeAugment),
				}
			}
		}

		if seenTopics[section.Topic] && mode != MergeAugment {
			return nil, &SchemaError{
				Document: raw.Name,
				Field:    fmt.Sprintf("sections[%d].topic", i),
				Message:  fmt.Sprintf("topic %q repeats within the document; repeated sections must use mode augment", section.Topic),
			}
		}
		seenTopics[section.Topic] = true

		directives = append(directives, &Directive{
			Topic:        section.Topic,
			Statement:    section.Rule,
			Mode:         mode,
			Examples:     section.Examples,
			AntiPatterns: section.AntiPatterns,
		})
	}

	return directives, nil
}
