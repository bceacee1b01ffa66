package model

import (
	"errors"
	"strconv"

	"github.com/launchdarkly/go-jsonstream/v3/jreader"
)

// ErrNoFeatures is returned by ParseFeatureCollection when a document is valid JSON but does not contain
// a "features" array.
var ErrNoFeatures = errors.New("document does not contain a features collection")

// ParseFeatureCollection parses a client features document of the form
//
//	{
//	  "version": 1,
//	  "features": [
//	    { "name": "f1", "enabled": true, "strategies": [ ... ], "variants": [ ... ] }
//	  ]
//	}
//
// Unknown properties are ignored. Features without a name are dropped. An empty document, malformed JSON,
// or a document without a "features" array is an error.
func ParseFeatureCollection(data []byte) (FeatureCollection, error) {
	r := jreader.NewReader(data)
	coll, found := readFeatureCollection(&r)
	if err := r.Error(); err != nil {
		return FeatureCollection{}, err
	}
	if !found {
		return FeatureCollection{}, ErrNoFeatures
	}
	return coll, nil
}

func readFeatureCollection(r *jreader.Reader) (FeatureCollection, bool) {
	var coll FeatureCollection
	found := false
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "version":
			coll.Version, _ = r.IntOrNull()
		case "features":
			arr := r.ArrayOrNull()
			found = arr.IsDefined()
			for arr.Next() {
				f := readFeature(r)
				if f.Name != "" {
					coll.Features = append(coll.Features, f)
				}
			}
		default:
			_ = r.SkipValue()
		}
	}
	return coll, found
}

func readFeature(r *jreader.Reader) FeatureDefinition {
	var f FeatureDefinition
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "name":
			f.Name = r.String()
		case "description":
			f.Description, _ = r.StringOrNull()
		case "project":
			f.Project, _ = r.StringOrNull()
		case "enabled":
			f.Enabled = r.Bool()
		case "strategies":
			for arr := r.ArrayOrNull(); arr.Next(); {
				f.Strategies = append(f.Strategies, readStrategy(r))
			}
		case "variants":
			for arr := r.ArrayOrNull(); arr.Next(); {
				f.Variants = append(f.Variants, readVariant(r))
			}
		default:
			_ = r.SkipValue()
		}
	}
	return f
}

func readStrategy(r *jreader.Reader) ActivationStrategy {
	var s ActivationStrategy
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "name":
			s.Name = r.String()
		case "parameters":
			for params := r.ObjectOrNull(); params.Next(); {
				if s.Parameters == nil {
					s.Parameters = make(map[string]string)
				}
				name := string(params.Name())
				if value, ok := readScalarAsString(r); ok {
					s.Parameters[name] = value
				}
			}
		case "constraints":
			for arr := r.ArrayOrNull(); arr.Next(); {
				s.Constraints = append(s.Constraints, readConstraint(r))
			}
		default:
			_ = r.SkipValue()
		}
	}
	return s
}

func readConstraint(r *jreader.Reader) Constraint {
	var c Constraint
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "contextName":
			c.ContextName = r.String()
		case "operator":
			c.Operator = Operator(r.String())
		case "values":
			c.Values = readStringArray(r)
		case "value":
			c.Value, _ = readScalarAsString(r)
		case "inverted":
			c.Inverted, _ = r.BoolOrNull()
		case "caseInsensitive":
			c.CaseInsensitive, _ = r.BoolOrNull()
		default:
			_ = r.SkipValue()
		}
	}
	return c
}

func readVariant(r *jreader.Reader) VariantDefinition {
	var v VariantDefinition
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "name":
			v.Name = r.String()
		case "weight":
			v.Weight, _ = r.IntOrNull()
		case "stickiness":
			v.Stickiness, _ = r.StringOrNull()
		case "payload":
			v.Payload = readPayload(r)
		case "overrides":
			for arr := r.ArrayOrNull(); arr.Next(); {
				v.Overrides = append(v.Overrides, readOverride(r))
			}
		default:
			_ = r.SkipValue()
		}
	}
	if v.Weight < 0 {
		v.Weight = 0
	}
	return v
}

func readPayload(r *jreader.Reader) *Payload {
	obj := r.ObjectOrNull()
	if !obj.IsDefined() {
		return nil
	}
	p := &Payload{}
	for obj.Next() {
		switch string(obj.Name()) {
		case "type":
			p.Type, _ = r.StringOrNull()
		case "value":
			p.Value, _ = readScalarAsString(r)
		default:
			_ = r.SkipValue()
		}
	}
	return p
}

func readOverride(r *jreader.Reader) Override {
	var o Override
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "contextName":
			o.ContextName = r.String()
		case "values":
			o.Values = readStringArray(r)
		default:
			_ = r.SkipValue()
		}
	}
	return o
}

func readStringArray(r *jreader.Reader) []string {
	var values []string
	for arr := r.ArrayOrNull(); arr.Next(); {
		if s, ok := readScalarAsString(r); ok {
			values = append(values, s)
		}
	}
	return values
}

// readScalarAsString accepts strings, numbers and booleans. The server is not consistent about quoting
// numeric strategy parameters, so "50" and 50 must be read the same way. Arrays and objects are skipped.
func readScalarAsString(r *jreader.Reader) (string, bool) {
	v := r.Any()
	switch v.Kind {
	case jreader.StringValue:
		return v.String, true
	case jreader.NumberValue:
		return strconv.FormatFloat(v.Number, 'f', -1, 64), true
	case jreader.BoolValue:
		return strconv.FormatBool(v.Bool), true
	case jreader.ArrayValue:
		for v.Array.Next() {
			_ = r.SkipValue()
		}
	case jreader.ObjectValue:
		for v.Object.Next() {
			_ = r.SkipValue()
		}
	}
	return "", false
}
