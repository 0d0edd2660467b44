package tables

import (
	"encoding/json"
	"path"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/cockroachdb/errors"
	"github.com/gofhir/fhir/r4"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a table file.
type Format int

// Supported formats.
const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatFor picks the decoder for a file name by its extension.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, errors.Newf("unsupported table file extension: %q", name)
	}
}

// malformed wraps ErrMalformedTable with the offending entry.
func malformed(format string, args ...any) error {
	return errors.Wrapf(ErrMalformedTable, format, args...)
}

// --- Sets ---

// ParseSet decodes a membership set. The keys of the top-level object are the
// members; numeric values are kept as depths. A JSON document whose
// resourceType is "CodeSystem" is read as a FHIR CodeSystem instead.
func ParseSet(data []byte, format Format) (*Set, error) {
	switch format {
	case FormatJSON:
		if isCodeSystem(data) {
			return parseCodeSystemSet(data)
		}
		return parseJSONSet(data)
	case FormatYAML:
		return parseYAMLSet(data)
	default:
		return nil, errors.Newf("unsupported format: %v", format)
	}
}

func isCodeSystem(data []byte) bool {
	rt, err := jsonparser.GetString(data, "resourceType")
	return err == nil && rt == "CodeSystem"
}

func parseJSONSet(data []byte) (*Set, error) {
	if err := expectJSONObject(data); err != nil {
		return nil, err
	}

	depths := make(map[string]int)
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		depths[normalize(string(key))] = jsonDepth(value, dataType)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(ErrMalformedTable, err.Error())
	}
	return &Set{depths: depths}, nil
}

func jsonDepth(value []byte, dataType jsonparser.ValueType) int {
	if dataType != jsonparser.Number {
		return UnknownDepth
	}
	if n, err := jsonparser.ParseInt(value); err == nil {
		return int(n)
	}
	if f, err := jsonparser.ParseFloat(value); err == nil {
		return int(f)
	}
	return UnknownDepth
}

func parseCodeSystemSet(data []byte) (*Set, error) {
	var cs r4.CodeSystem
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, errors.Wrapf(ErrMalformedTable, "invalid CodeSystem: %v", err)
	}

	depths := make(map[string]int)
	collectConcepts(cs.Concept, 1, depths)
	return &Set{depths: depths}, nil
}

// collectConcepts records every concept code with its nesting level.
func collectConcepts(concepts []r4.CodeSystemConcept, depth int, into map[string]int) {
	for i := range concepts {
		concept := &concepts[i]
		if concept.Code != nil {
			into[normalize(*concept.Code)] = depth
		}
		if len(concept.Concept) > 0 {
			collectConcepts(concept.Concept, depth+1, into)
		}
	}
}

func parseYAMLSet(data []byte) (*Set, error) {
	root, err := yamlMapping(data)
	if err != nil {
		return nil, err
	}

	depths := make(map[string]int, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		depth := UnknownDepth
		if value.Kind == yaml.ScalarNode {
			if n, err := strconv.Atoi(value.Value); err == nil {
				depth = n
			}
		}
		depths[normalize(key.Value)] = depth
	}
	return &Set{depths: depths}, nil
}

// --- Mappings ---

// ParseMapping decodes a mapping table. Each value is either a single code or
// a list of codes; anything else is ErrMalformedTable.
func ParseMapping(data []byte, format Format) (*Mapping, error) {
	var (
		entries map[string][]string
		err     error
	)
	switch format {
	case FormatJSON:
		entries, err = parseJSONLists(data)
	case FormatYAML:
		entries, err = parseYAMLLists(data)
	default:
		return nil, errors.Newf("unsupported format: %v", format)
	}
	if err != nil {
		return nil, err
	}
	return &Mapping{entries: entries}, nil
}

// ParseRevisions decodes a revision table. Each value must be a single code,
// either as a string or a one-element list.
func ParseRevisions(data []byte, format Format) (*Revisions, error) {
	var (
		lists map[string][]string
		err   error
	)
	switch format {
	case FormatJSON:
		lists, err = parseJSONLists(data)
	case FormatYAML:
		lists, err = parseYAMLLists(data)
	default:
		return nil, errors.Newf("unsupported format: %v", format)
	}
	if err != nil {
		return nil, err
	}

	entries := make(map[string]string, len(lists))
	for code, targets := range lists {
		if len(targets) != 1 {
			return nil, malformed("revision entry %q has %d replacement codes, want 1", code, len(targets))
		}
		entries[code] = targets[0]
	}
	return &Revisions{entries: entries}, nil
}

func parseJSONLists(data []byte) (map[string][]string, error) {
	if err := expectJSONObject(data); err != nil {
		return nil, err
	}

	entries := make(map[string][]string)
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		code := string(key)
		targets, err := jsonCodes(code, value, dataType)
		if err != nil {
			return err
		}
		entries[normalize(code)] = targets
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrMalformedTable) {
			return nil, err
		}
		return nil, errors.Wrap(ErrMalformedTable, err.Error())
	}
	return entries, nil
}

func jsonCodes(code string, value []byte, dataType jsonparser.ValueType) ([]string, error) {
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, malformed("entry %q: %v", code, err)
		}
		return []string{s}, nil

	case jsonparser.Array:
		targets := make([]string, 0, 1)
		var elemErr error
		_, err := jsonparser.ArrayEach(value, func(elem []byte, elemType jsonparser.ValueType, _ int, _ error) {
			if elemErr != nil {
				return
			}
			if elemType != jsonparser.String {
				elemErr = malformed("entry %q has a %s element, want string", code, elemType)
				return
			}
			s, err := jsonparser.ParseString(elem)
			if err != nil {
				elemErr = malformed("entry %q: %v", code, err)
				return
			}
			targets = append(targets, s)
		})
		if elemErr != nil {
			return nil, elemErr
		}
		if err != nil {
			return nil, malformed("entry %q: %v", code, err)
		}
		if len(targets) == 0 {
			return nil, malformed("entry %q has an empty target list", code)
		}
		return targets, nil

	default:
		return nil, malformed("entry %q has a %s value, want string or array", code, dataType)
	}
}

func parseYAMLLists(data []byte) (map[string][]string, error) {
	root, err := yamlMapping(data)
	if err != nil {
		return nil, err
	}

	entries := make(map[string][]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		switch value.Kind {
		case yaml.ScalarNode:
			if value.Tag == "!!null" {
				return nil, malformed("entry %q has a null value", key.Value)
			}
			entries[normalize(key.Value)] = []string{value.Value}
		case yaml.SequenceNode:
			if len(value.Content) == 0 {
				return nil, malformed("entry %q has an empty target list", key.Value)
			}
			targets := make([]string, 0, len(value.Content))
			for _, elem := range value.Content {
				if elem.Kind != yaml.ScalarNode {
					return nil, malformed("entry %q has a non-scalar element", key.Value)
				}
				targets = append(targets, elem.Value)
			}
			entries[normalize(key.Value)] = targets
		default:
			return nil, malformed("entry %q has a non-scalar, non-list value", key.Value)
		}
	}
	return entries, nil
}

// --- helpers ---

func expectJSONObject(data []byte) error {
	_, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return errors.Wrapf(ErrMalformedTable, "invalid JSON: %v", err)
	}
	if dataType != jsonparser.Object {
		return malformed("top-level value is %s, want object", dataType)
	}
	return nil
}

// yamlMapping returns the top-level mapping node of a YAML document.
// Scalar keys are taken verbatim, so codes such as "0010" keep their zeros.
func yamlMapping(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(ErrMalformedTable, "invalid YAML: %v", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, malformed("empty YAML document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, malformed("top-level YAML node is not a mapping")
	}
	return root, nil
}
