// Package submit builds the command lines for Hive queries (beeline) and
// Spark jobs (spark-submit) that a session runs on the remote host.
package submit

import (
	"sort"
	"strings"
)

// Options is an insertion-ordered option map. Keys are stored as given
// until Clean canonicalises them.
type Options struct {
	keys   []string
	values map[string]string
}

// NewOptions returns an empty option map.
func NewOptions() *Options {
	return &Options{values: make(map[string]string)}
}

// OptionsFromMap copies m into a new Options. Map order is random, so the
// keys are inserted sorted to keep results reproducible.
func OptionsFromMap(m map[string]string) *Options {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	o := NewOptions()
	for _, k := range keys {
		o.Set(k, m[k])
	}
	return o
}

// Set stores value under key, overriding any previous value. An existing
// key keeps its original position.
func (o *Options) Set(key, value string) {
	if o.values == nil {
		o.values = make(map[string]string)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key exactly as written.
func (o *Options) Get(key string) (string, bool) {
	if o == nil {
		return "", false
	}
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Options) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of stored options.
func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Merge overlays other onto o; values in other win.
func (o *Options) Merge(other *Options) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		o.Set(k, other.values[k])
	}
}

// Clone returns an independent copy. A nil receiver yields empty Options.
func (o *Options) Clone() *Options {
	c := NewOptions()
	c.Merge(o)
	return c
}

// CanonicalKey maps an option name to its command-line flag:
// leading dashes are normalised to two and underscores become dashes,
// so driver_class_path, -driver-class-path and --driver_class_path all
// become --driver-class-path.
func CanonicalKey(key string) string {
	k := strings.TrimLeft(strings.TrimSpace(key), "-")
	if k == "" {
		return ""
	}
	return "--" + strings.ReplaceAll(k, "_", "-")
}

// Clean returns a copy with canonical keys and empty values dropped.
// When two keys canonicalise to the same flag, the one written later wins.
func (o *Options) Clean() *Options {
	c := NewOptions()
	if o == nil {
		return c
	}
	for _, k := range o.keys {
		v := strings.TrimSpace(o.values[k])
		ck := CanonicalKey(k)
		if ck == "" || v == "" {
			continue
		}
		c.Set(ck, v)
	}
	return c
}

// Render cleans the options and returns them as "<flag> <value>" token
// pairs sorted by flag, so equal option sets always render identically.
func (o *Options) Render() []string {
	c := o.Clean()
	keys := c.Keys()
	sort.Strings(keys)

	tokens := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		tokens = append(tokens, k, c.values[k])
	}
	return tokens
}

// String renders the options as a single space-joined segment.
func (o *Options) String() string {
	return strings.Join(o.Render(), " ")
}
