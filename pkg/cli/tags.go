package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/haivivi/opusmux/pkg/audio/oggopus"
)

// LoadTags loads comment tags from a YAML or JSON file.
func LoadTags(path string) ([]oggopus.Comment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	tags, err := ParseTags(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tags, nil
}

// ParseTags parses a mapping of tag names to values, keeping file order.
//
//	TITLE: Morning
//	ARTIST: [Ann, Bo]   # one comment per element
//	ENCODER: ~          # unset; dropped when the header is written
//
// An empty document yields no tags.
func ParseTags(data []byte) ([]oggopus.Comment, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tags: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("tags must be a mapping (line %d)", root.Line)
	}

	var tags []oggopus.Comment
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			tags = append(tags, scalarTag(key.Value, val))
		case yaml.SequenceNode:
			for _, item := range val.Content {
				if item.Kind != yaml.ScalarNode {
					return nil, fmt.Errorf("tag %q: list items must be scalars (line %d)", key.Value, item.Line)
				}
				tags = append(tags, scalarTag(key.Value, item))
			}
		default:
			return nil, fmt.Errorf("tag %q: value must be a scalar or a list (line %d)", key.Value, val.Line)
		}
	}
	return tags, nil
}

func scalarTag(key string, n *yaml.Node) oggopus.Comment {
	if n.Tag == "!!null" {
		return oggopus.UnsetComment(key)
	}
	return oggopus.NewComment(key, n.Value)
}
