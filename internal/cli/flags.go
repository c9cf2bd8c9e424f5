package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/issho/internal/errors"
)

// parseKeyValues splits repeated --option key=value flags. A bare key
// maps to an empty value, which drops the option.
func parseKeyValues(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' isn't a key=value option", pair),
				"Use --option num_executors=4")
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

// parsePort parses a TCP port argument.
func parsePort(s, what string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || port < 1 || port > 65535 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a valid %s port", s, what),
			"Use a number between 1 and 65535.")
	}
	return port, nil
}
