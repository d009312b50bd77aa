package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/waypoint/internal/dto"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format selects the document syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Parser converts raw route documents into a RouteFile.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes data into a generic document first, then maps it onto the DTO.
// Unknown keys are rejected so typos in route files surface early.
func (p *Parser) Parse(data []byte, format Format) (*dto.RouteFile, error) {
	var raw map[string]any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse routes json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse routes yaml: %w", err)
		}
	}
	if raw == nil {
		return nil, fmt.Errorf("routes document is empty")
	}

	var file dto.RouteFile
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &file,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode routes: %w", err)
	}
	if len(file.Routes) == 0 {
		return nil, fmt.Errorf("routes document declares no routes")
	}
	return &file, nil
}
