package scanbdconfig

import "strings"

// GetString looks up a scalar string path, e.g. "global.scriptdir". ok is false when the path is
// absent or not a string.
func (d *Document) GetString(path string) (string, bool) {
	v, ok := d.lookup(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt looks up a scalar integer path, e.g. "global.timeout".
func (d *Document) GetInt(path string) (int, bool) {
	v, ok := d.lookup(path)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// GetBool looks up a scalar boolean path, e.g. "global.multiple_actions".
func (d *Document) GetBool(path string) (bool, bool) {
	v, ok := d.lookup(path)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// lookup walks the generic parse tree by dot-separated path. It is used
// only for scalar global.* paths; multisection
// paths (action[*], function[*], device[*]) are accessed through the typed
// Document.Global.Actions / Functions / Devices fields instead, since a
// dotted-path string cannot express "the Nth element matching a filter"
// any more clearly than a Go slice index already does.
func (d *Document) lookup(path string) (interface{}, bool) {
	if d == nil || d.tree == nil {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var cur interface{} = d.tree
	for _, p := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		v, ok := m[p]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}
