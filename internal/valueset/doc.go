// Package valueset builds the value sets of a parameter from its dependency
// profile and the raw values the mapping rule computed.
//
// A Profile is one of None, OptionOnly, StateOnly or OptionAndState. The
// Builder consumes it with an exhaustive type switch, so the number of
// value sets produced for each profile can be checked on its own:
//
//	None            one set, no option, no state
//	OptionOnly      one set per option
//	StateOnly       one set per state of the list
//	OptionAndState  one set per (option, state) pair
//
// Dependent profiles only apply while the matching option or state is
// selected; Builder.Effective downgrades a profile to what the current
// selection supports.
package valueset
