package formatenforcer

import "strings"

// resolveRef resolves a $ref string to its target Schema. Only the two
// forms spec §6 names are supported: "#/definitions/NAME" and
// "#/$defs/NAME" (schema.go folds both spellings into Schema.Defs at
// parse time, so both prefixes land in the same table here).
func (s *Schema) resolveRef(ref string) (*Schema, error) {
	const (
		definitionsPrefix = "#/definitions/"
		defsPrefix        = "#/$defs/"
	)

	var name string
	switch {
	case strings.HasPrefix(ref, definitionsPrefix):
		name = ref[len(definitionsPrefix):]
	case strings.HasPrefix(ref, defsPrefix):
		name = ref[len(defsPrefix):]
	default:
		return nil, newSentinelEvaluationError(ErrUnsupportedReferenceForm, "$ref", "unsupported_reference_form",
			"reference '{ref}' is not of the form #/definitions/NAME or #/$defs/NAME", map[string]any{"ref": ref})
	}

	root := s.root
	if root == nil {
		root = s
	}

	target, ok := root.Defs[name]
	if !ok || target == nil {
		return nil, newSentinelEvaluationError(ErrReferenceResolution, "$ref", "reference_resolution",
			"reference to '{ref}' could not be resolved against definitions/$defs", map[string]any{"ref": ref})
	}
	return target, nil
}
