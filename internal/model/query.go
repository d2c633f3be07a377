package model

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrNotFound is returned when a looked up thing does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoValueSet is returned when no value set matches the requested scope.
	ErrNoValueSet = errors.New("no value set for option and state")
)

// QueryValues returns the actual values of the parameter for the given
// option and state, typed by the parameter class: bool for boolean, string
// for text and enumeration, float64 for quantity. Numbers are parsed
// culture-invariantly.
func (p *Parameter) QueryValues(option *Option, state *ActualState) ([]any, error) {
	vs, ok := p.ValueSet(option, state)
	if !ok {
		return nil, fmt.Errorf("parameter %s: %w", p.Type.ShortName, ErrNoValueSet)
	}

	return typedValues(p.Type, vs.ActualValue())
}

// QueryQuantity returns the actual values of a quantity parameter.
func (p *Parameter) QueryQuantity(option *Option, state *ActualState) ([]float64, error) {
	if p.Type.Class != ClassQuantity {
		return nil, fmt.Errorf("parameter %s is %s, not quantity", p.Type.ShortName, p.Type.Class)
	}

	values, err := p.QueryValues(option, state)
	if err != nil {
		return nil, err
	}

	result := make([]float64, len(values))
	for i, v := range values {
		result[i], _ = v.(float64)
	}

	return result, nil
}

func typedValues(pt *ParameterType, raw []string) ([]any, error) {
	result := make([]any, 0, len(raw))

	for i, s := range raw {
		switch pt.Class {
		case ClassBoolean:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, fmt.Errorf("parameter %s value %d: %w", pt.ShortName, i, err)
			}

			result = append(result, b)
		case ClassQuantity:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("parameter %s value %d: %w", pt.ShortName, i, err)
			}

			result = append(result, f)
		case ClassText, ClassEnumeration:
			result = append(result, s)
		default:
			return nil, fmt.Errorf("parameter %s: unsupported class %s", pt.ShortName, pt.Class)
		}
	}

	return result, nil
}
