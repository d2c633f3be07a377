package valueset

import "product-sync/internal/model"

// Profile is the dependency profile of a parameter.
type Profile interface {
	isProfile()
}

// None is the profile of a parameter that depends on neither options nor
// states.
type None struct{}

// OptionOnly is the profile of an option dependent parameter.
type OptionOnly struct{}

// StateOnly is the profile of a parameter depending on a finite state list.
type StateOnly struct {
	States *model.ActualFiniteStateList
}

// OptionAndState is the profile of a parameter depending on both.
type OptionAndState struct {
	States *model.ActualFiniteStateList
}

func (None) isProfile()           {}
func (OptionOnly) isProfile()     {}
func (StateOnly) isProfile()      {}
func (OptionAndState) isProfile() {}

// ProfileOf returns the profile matching the dependency flags of an owner.
func ProfileOf(owner model.ValueSetOwner) Profile {
	optionDependent, states := owner.Dependency()

	return NewProfile(optionDependent, states)
}

// NewProfile returns the profile for the given dependency flags.
func NewProfile(optionDependent bool, states *model.ActualFiniteStateList) Profile {
	switch {
	case optionDependent && states != nil:
		return OptionAndState{States: states}
	case optionDependent:
		return OptionOnly{}
	case states != nil:
		return StateOnly{States: states}
	default:
		return None{}
	}
}

// Flags returns the parameter dependency flags a profile stands for.
func Flags(p Profile) (optionDependent bool, states *model.ActualFiniteStateList) {
	switch p := p.(type) {
	case OptionOnly:
		return true, nil
	case StateOnly:
		return false, p.States
	case OptionAndState:
		return true, p.States
	default:
		return false, nil
	}
}
