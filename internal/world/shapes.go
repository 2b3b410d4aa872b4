package world

import (
	"bytes"
	"encoding/json"
)

type jsonType uint8

const (
	typeInvalid jsonType = iota
	typeNull
	typeBool
	typeNumber
	typeString
	typeArray
	typeObject
)

func jsonTypeOf(raw json.RawMessage) jsonType {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return typeInvalid
	}
	switch c := raw[0]; {
	case c == '{':
		return typeObject
	case c == '[':
		return typeArray
	case c == '"':
		return typeString
	case c == 't' || c == 'f':
		return typeBool
	case c == 'n':
		return typeNull
	case c == '-' || (c >= '0' && c <= '9'):
		return typeNumber
	}
	return typeInvalid
}

// Shape names one structural variant a legacy record can take.
type Shape string

const (
	ShapeWildCulture         Shape = "wild-culture"
	ShapeCulture             Shape = "culture"
	ShapeBurgPlaceholder     Shape = "burg-placeholder"
	ShapeBurg                Shape = "burg"
	ShapeNeutralState        Shape = "neutral-state"
	ShapeState               Shape = "state"
	ShapeProvincePlaceholder Shape = "province-placeholder"
	ShapeProvince            Shape = "province"
	ShapeNoReligion          Shape = "no-religion"
	ShapeReligion            Shape = "religion"
	ShapeRiver               Shape = "river"
	ShapeMarker              Shape = "marker"
	ShapeRoute               Shape = "route"
	ShapeNote                Shape = "note"
)

// ShapePriority is the order in which shapes are tried. The first match wins,
// so placeholders come before the full variant of the same kind.
var ShapePriority = []Shape{
	ShapeWildCulture,
	ShapeCulture,
	ShapeBurgPlaceholder,
	ShapeBurg,
	ShapeNeutralState,
	ShapeState,
	ShapeProvincePlaceholder,
	ShapeProvince,
	ShapeNoReligion,
	ShapeReligion,
	ShapeRiver,
	ShapeMarker,
	ShapeRoute,
	ShapeNote,
}

// Kind returns the entity kind a shape belongs to.
func (s Shape) Kind() Kind {
	switch s {
	case ShapeWildCulture, ShapeCulture:
		return KindCulture
	case ShapeBurgPlaceholder, ShapeBurg:
		return KindBurg
	case ShapeNeutralState, ShapeState:
		return KindState
	case ShapeProvincePlaceholder, ShapeProvince:
		return KindProvince
	case ShapeNoReligion, ShapeReligion:
		return KindReligion
	case ShapeRiver:
		return KindRiver
	case ShapeMarker:
		return KindMarker
	case ShapeRoute:
		return KindRoute
	case ShapeNote:
		return KindNote
	}
	return ""
}

// Placeholder reports whether the shape is an id-0 placeholder variant.
func (s Shape) Placeholder() bool {
	switch s {
	case ShapeWildCulture, ShapeBurgPlaceholder, ShapeNeutralState, ShapeProvincePlaceholder, ShapeNoReligion:
		return true
	}
	return false
}

// shapeSpec is a structural type guard over a JSON object.
// allowed, when set, closes the key set.
type shapeSpec struct {
	required  map[string]jsonType
	forbidden []string
	allowed   map[string]bool
}

func (s shapeSpec) match(obj map[string]json.RawMessage) bool {
	for key, want := range s.required {
		raw, ok := obj[key]
		if !ok || jsonTypeOf(raw) != want {
			return false
		}
	}
	for _, key := range s.forbidden {
		if _, ok := obj[key]; ok {
			return false
		}
	}
	if s.allowed != nil {
		for key := range obj {
			if !s.allowed[key] {
				return false
			}
		}
	}
	return true
}

func with(base map[string]jsonType, extra map[string]jsonType) map[string]jsonType {
	out := make(map[string]jsonType, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

var (
	cultureCore = map[string]jsonType{
		"i": typeNumber, "base": typeNumber, "name": typeString,
		"origins": typeArray, "shield": typeString,
	}
	stateCore = map[string]jsonType{
		"i": typeNumber, "name": typeString, "urban": typeNumber, "rural": typeNumber,
		"burgs": typeNumber, "area": typeNumber, "cells": typeNumber,
		"neighbors": typeArray, "diplomacy": typeArray, "provinces": typeArray,
	}

	shapeSpecs = map[Shape]shapeSpec{
		ShapeWildCulture: {
			required:  cultureCore,
			forbidden: []string{"center", "code", "color", "expansionism", "type"},
		},
		ShapeCulture: {
			required: with(cultureCore, map[string]jsonType{
				"center": typeNumber, "code": typeString, "color": typeString,
				"expansionism": typeNumber, "type": typeString,
			}),
		},
		ShapeBurg: {
			required: map[string]jsonType{
				"i": typeNumber, "name": typeString, "cell": typeNumber,
				"x": typeNumber, "y": typeNumber, "culture": typeNumber,
				"state": typeNumber, "population": typeNumber,
			},
		},
		ShapeNeutralState: {
			required:  stateCore,
			forbidden: []string{"form", "fullName", "capital", "color", "center", "culture", "type", "expansionism"},
		},
		ShapeState: {
			required: with(stateCore, map[string]jsonType{
				"form": typeString, "fullName": typeString, "color": typeString,
				"center": typeNumber, "culture": typeNumber, "type": typeString,
				"expansionism": typeNumber,
			}),
		},
		ShapeProvince: {
			required: map[string]jsonType{
				"i": typeNumber, "state": typeNumber, "name": typeString,
				"formName": typeString, "fullName": typeString, "center": typeNumber,
				"burg": typeNumber, "burgs": typeArray,
			},
		},
		ShapeNoReligion: {
			required: map[string]jsonType{"i": typeNumber, "name": typeString},
			allowed: map[string]bool{
				"i": true, "name": true, "origins": true, "area": true, "cells": true,
				"rural": true, "urban": true, "lock": true, "removed": true,
			},
		},
		ShapeReligion: {
			required: map[string]jsonType{
				"i": typeNumber, "name": typeString, "type": typeString, "form": typeString,
				"center": typeNumber, "culture": typeNumber,
			},
		},
		ShapeRiver: {
			required: map[string]jsonType{
				"i": typeNumber, "name": typeString, "source": typeNumber,
				"mouth": typeNumber, "parent": typeNumber, "cells": typeArray,
			},
		},
		ShapeMarker: {
			required: map[string]jsonType{
				"i": typeNumber, "icon": typeString, "x": typeNumber,
				"y": typeNumber, "cell": typeNumber,
			},
		},
		ShapeRoute: {
			required: map[string]jsonType{
				"i": typeNumber, "points": typeArray, "group": typeString,
			},
		},
		ShapeNote: {
			required: map[string]jsonType{
				"id": typeString, "name": typeString, "legend": typeString,
			},
		},
	}
)

// MatchShape reports whether raw has the given shape.
func MatchShape(s Shape, raw json.RawMessage) bool {
	switch s {
	case ShapeProvincePlaceholder:
		var n float64
		return jsonTypeOf(raw) == typeNumber && json.Unmarshal(raw, &n) == nil && n == 0
	case ShapeBurgPlaceholder:
		if jsonTypeOf(raw) != typeObject {
			return false
		}
		var obj map[string]json.RawMessage
		return json.Unmarshal(raw, &obj) == nil && len(obj) == 0
	}
	if jsonTypeOf(raw) != typeObject {
		return false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return false
	}
	spec, ok := shapeSpecs[s]
	return ok && spec.match(obj)
}

// ClassifyRecord returns the first shape in ShapePriority that raw matches.
func ClassifyRecord(raw json.RawMessage) (Shape, bool) {
	for _, s := range ShapePriority {
		if MatchShape(s, raw) {
			return s, true
		}
	}
	return "", false
}

// ClassifyLine classifies every element of a JSON array line. The line is
// accepted only when all elements map to the same kind; shapes are returned
// per element.
func ClassifyLine(elems []json.RawMessage) (Kind, []Shape, bool) {
	if len(elems) == 0 {
		return "", nil, false
	}
	var kind Kind
	shapes := make([]Shape, len(elems))
	for i, raw := range elems {
		s, ok := ClassifyRecord(raw)
		if !ok {
			return "", nil, false
		}
		if i == 0 {
			kind = s.Kind()
		} else if s.Kind() != kind {
			return "", nil, false
		}
		shapes[i] = s
	}
	return kind, shapes, true
}
