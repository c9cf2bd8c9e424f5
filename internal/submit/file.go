package submit

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/issho/internal/errors"
)

// LoadOptionsFile reads spark options from a YAML mapping, keeping the
// file's key order. Scalars are used as-is; a list becomes a
// comma-separated value, which is what --jars and --files expect.
//
//	master: yarn
//	deploy_mode: cluster
//	jars:
//	  - hdfs:///libs/a.jar
//	  - hdfs:///libs/b.jar
func LoadOptionsFile(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't read spark options file %s", path),
			"Check the path passed to --conf-file.")
	}
	return ParseOptions(data, path)
}

// ParseOptions decodes a YAML mapping into Options. source names the input
// in error messages.
func ParseOptions(data []byte, source string) (*Options, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("%s isn't valid YAML", source),
			"Spark options files are a flat mapping of option: value.")
	}

	opts := NewOptions()
	if len(doc.Content) == 0 {
		return opts, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("%s must be a mapping of option: value", source),
			"Example:\n    master: yarn\n    num_executors: 4")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]

		switch value.Kind {
		case yaml.ScalarNode:
			opts.Set(key.Value, value.Value)
		case yaml.SequenceNode:
			items := make([]string, 0, len(value.Content))
			for _, item := range value.Content {
				if item.Kind != yaml.ScalarNode {
					return nil, nestedValueError(source, key)
				}
				items = append(items, item.Value)
			}
			opts.Set(key.Value, strings.Join(items, ","))
		default:
			return nil, nestedValueError(source, key)
		}
	}

	return opts, nil
}

func nestedValueError(source string, key *yaml.Node) error {
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("%s line %d: option '%s' has a nested value", source, key.Line, key.Value),
		"Use a string, number, or list of strings.")
}
