package valueset

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"product-sync/internal/common"
	"product-sync/internal/model"
)

// ErrNoSelection is returned by Update when the owner depends on an option
// or state that is not currently selected. The update is skipped.
var ErrNoSelection = errors.New("no active option or state selection")

// Selection is the option and state currently selected by the user.
type Selection struct {
	Option *model.Option
	State  *model.ActualState
}

// Builder produces and updates value sets for one selection.
type Builder struct {
	// Options are the options known to the active configuration.
	Options   []*model.Option
	Selection Selection

	logger *zap.Logger
}

// NewBuilder creates a builder. A nil logger disables logging.
func NewBuilder(logger *zap.Logger, options []*model.Option, selection Selection) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Builder{Options: options, Selection: selection, logger: logger}
}

// Effective downgrades p to the profile the current selection supports.
// An option dependent profile needs a selected option, a state dependent
// one a selected state.
func (b *Builder) Effective(p Profile) Profile {
	optionSelected := b.Selection.Option != nil && len(b.Options) > 0
	stateSelected := b.Selection.State != nil

	switch p := p.(type) {
	case OptionAndState:
		switch {
		case optionSelected && p.States != nil:
			return p
		case optionSelected:
			return OptionOnly{}
		case stateSelected && p.States != nil:
			return StateOnly(p)
		default:
			return None{}
		}
	case OptionOnly:
		if optionSelected {
			return p
		}

		return None{}
	case StateOnly:
		if stateSelected && p.States != nil {
			return p
		}

		return None{}
	default:
		return None{}
	}
}

// Build creates the value sets of a new parameter. Every set carries the
// raw values in its computed slot and a placeholder in every other slot.
func (b *Builder) Build(p Profile, raw ...any) []*model.ValueSet {
	values := FormatValues(raw...)

	switch p := b.Effective(p).(type) {
	case OptionAndState:
		sets := make([]*model.ValueSet, 0, len(b.Options)*len(p.States.States))
		for _, o := range b.Options {
			for _, s := range p.States.States {
				sets = append(sets, newValueSet(o, s, values))
			}
		}

		return sets
	case OptionOnly:
		sets := make([]*model.ValueSet, 0, len(b.Options))
		for _, o := range b.Options {
			sets = append(sets, newValueSet(o, nil, values))
		}

		return sets
	case StateOnly:
		sets := make([]*model.ValueSet, 0, len(p.States.States))
		for _, s := range p.States.States {
			sets = append(sets, newValueSet(nil, s, values))
		}

		return sets
	case None:
		return []*model.ValueSet{newValueSet(nil, nil, values)}
	default:
		panic(fmt.Sprintf("valueset: unknown profile %T", p))
	}
}

// Mirror creates value sets scoped exactly like template, each carrying
// raw values. Overrides use it so their sets line up with the parameter's.
func (b *Builder) Mirror(template []*model.ValueSet, raw ...any) []*model.ValueSet {
	values := FormatValues(raw...)

	sets := make([]*model.ValueSet, 0, len(template))
	for _, vs := range template {
		sets = append(sets, newValueSet(vs.ActualOption, vs.ActualState, values))
	}

	return sets
}

// Update writes raw values into the owner's value set for the current
// selection, adding the set when the selected option or state has none
// yet. It returns ErrNoSelection, after logging a warning, when the owner
// is dependent but the matching selection is not active.
func (b *Builder) Update(owner model.ValueSetOwner, raw ...any) error {
	optionDependent, states := owner.Dependency()

	var (
		option *model.Option
		state  *model.ActualState
	)

	if optionDependent {
		if b.Selection.Option == nil {
			return b.skip(owner, "option")
		}

		option = b.Selection.Option
	}

	if states != nil {
		if b.Selection.State == nil {
			return b.skip(owner, "state")
		}

		if _, ok := states.State(b.Selection.State.ShortName); !ok {
			return b.skip(owner, "state of "+states.ShortName)
		}

		state = b.Selection.State
	}

	values := FormatValues(raw...)

	sets := owner.Sets()

	i := slices.IndexFunc(sets, func(vs *model.ValueSet) bool { return vs.Matches(option, state) })
	if i < 0 {
		owner.AddValueSet(newValueSet(option, state, values))
		return nil
	}

	vs := sets[i]
	vs.Computed = values
	vs.Switch = model.ValueKindComputed

	for _, slot := range []*[]string{&vs.Manual, &vs.Reference, &vs.Formula, &vs.Published} {
		if len(*slot) != len(values) {
			*slot = placeholders(len(values))
		}
	}

	return nil
}

func (b *Builder) skip(owner model.ValueSetOwner, missing string) error {
	b.logger.Warn("skipping value update without active selection",
		zap.String("parameter", owner.TypeShortName()),
		zap.String("missing", missing))

	return fmt.Errorf("parameter %s needs a selected %s: %w", owner.TypeShortName(), missing, ErrNoSelection)
}

func newValueSet(option *model.Option, state *model.ActualState, values []string) *model.ValueSet {
	return &model.ValueSet{
		ID:           uuid.New(),
		ActualOption: option,
		ActualState:  state,
		Computed:     slices.Clone(values),
		Manual:       placeholders(len(values)),
		Reference:    placeholders(len(values)),
		Formula:      placeholders(len(values)),
		Published:    placeholders(len(values)),
		Switch:       model.ValueKindComputed,
	}
}

func placeholders(n int) []string {
	result := make([]string, n)
	for i := range result {
		result[i] = common.Placeholder
	}

	return result
}

// FormatValues formats raw values as culture-invariant strings.
func FormatValues(raw ...any) []string {
	result := make([]string, len(raw))
	for i, v := range raw {
		result[i] = FormatValue(v)
	}

	return result
}

// FormatValue formats a single raw value. Floating point numbers use the
// shortest representation that round-trips, with a '.' decimal separator.
func FormatValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
