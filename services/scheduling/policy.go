package scheduling

import (
	"fmt"
	"sort"
	"time"

	"fieldservice/models"
)

// Window is one business-hours span of a day. Open is always bookable; Close is
// bookable only when CloseInclusive is set.
type Window struct {
	Open           models.TimeSlot
	Close          models.TimeSlot
	CloseInclusive bool
}

// Policy is a named booking form: its grid interval, business windows and closed weekdays.
type Policy struct {
	Name     string
	Interval int // minutes between consecutive slots
	Windows  []Window
	Weekend  []time.Weekday
}

// DefaultWeekend closes Saturday and Sunday.
var DefaultWeekend = []time.Weekday{time.Saturday, time.Sunday}

// Validate checks the grid and window layout. The interval must divide an hour so
// that a one-hour DST shift never moves a grid point off the grid.
func (p Policy) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("policy name is required")
	}
	if p.Interval <= 0 || 60%p.Interval != 0 {
		return fmt.Errorf("policy %s: interval %d must be a positive divisor of 60", p.Name, p.Interval)
	}
	if len(p.Windows) == 0 {
		return fmt.Errorf("policy %s: at least one business window is required", p.Name)
	}
	for i, w := range p.Windows {
		if w.Open < 0 || w.Close > models.MinutesPerDay || w.Open >= w.Close {
			return fmt.Errorf("policy %s, window %d: open %s must be before close %s", p.Name, i+1, w.Open, w.Close)
		}
		if !w.Open.Aligned(p.Interval) || !w.Close.Aligned(p.Interval) {
			return fmt.Errorf("policy %s, window %d: boundaries must sit on the %d-minute grid", p.Name, i+1, p.Interval)
		}
		if w.CloseInclusive && w.Close >= models.MinutesPerDay {
			return fmt.Errorf("policy %s, window %d: inclusive close cannot be 24:00", p.Name, i+1)
		}
		if i > 0 {
			prev := p.Windows[i-1]
			if w.Open < prev.Close || (w.Open == prev.Close && prev.CloseInclusive) {
				return fmt.Errorf("policy %s, window %d overlaps the previous window", p.Name, i+1)
			}
		}
	}
	return nil
}

// IsClosedDay reports whether the weekday is excluded from booking.
func (p Policy) IsClosedDay(wd time.Weekday) bool {
	for _, w := range p.Weekend {
		if w == wd {
			return true
		}
	}
	return false
}

// OnGrid reports whether s is one of the slots the policy can ever generate.
func (p Policy) OnGrid(s models.TimeSlot) bool {
	if !s.Aligned(p.Interval) {
		return false
	}
	for _, w := range p.Windows {
		if s >= w.Open && (s < w.Close || (w.CloseInclusive && s == w.Close)) {
			return true
		}
	}
	return false
}

// View renders the policy for API clients.
func (p Policy) View(isDefault bool) models.PolicyView {
	v := models.PolicyView{Name: p.Name, IntervalMinutes: p.Interval, Default: isDefault}
	for _, w := range p.Windows {
		v.Windows = append(v.Windows, models.WindowView{Open: w.Open, Close: w.Close, CloseInclusive: w.CloseInclusive})
	}
	return v
}

// PolicySet holds every booking form of a deployment.
type PolicySet struct {
	policies    map[string]Policy
	defaultName string
}

// NewPolicySet validates each policy and the default selection.
func NewPolicySet(defaultName string, policies ...Policy) (*PolicySet, error) {
	set := &PolicySet{policies: make(map[string]Policy, len(policies)), defaultName: defaultName}
	for _, p := range policies {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := set.policies[p.Name]; dup {
			return nil, fmt.Errorf("duplicate policy %q", p.Name)
		}
		set.policies[p.Name] = p
	}
	if _, ok := set.policies[defaultName]; !ok {
		return nil, fmt.Errorf("default policy %q is not configured", defaultName)
	}
	return set, nil
}

// Resolve returns the named policy, or the default one for an empty name.
func (s *PolicySet) Resolve(name string) (Policy, error) {
	if name == "" {
		name = s.defaultName
	}
	p, ok := s.policies[name]
	if !ok {
		return Policy{}, newError(KindInvalidPolicy, fmt.Sprintf("unknown booking policy %q", name), nil)
	}
	return p, nil
}

// Views lists all policies sorted by name.
func (s *PolicySet) Views() []models.PolicyView {
	views := make([]models.PolicyView, 0, len(s.policies))
	for name, p := range s.policies {
		views = append(views, p.View(name == s.defaultName))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views
}

// DiagnosticPolicy is the 15-minute diagnostic-visit form: 09:00-14:00 and 15:00-18:00, both closes inclusive.
func DiagnosticPolicy() Policy {
	return Policy{
		Name:     "diagnostic",
		Interval: 15,
		Windows: []Window{
			{Open: models.NewTimeSlot(9, 0), Close: models.NewTimeSlot(14, 0), CloseInclusive: true},
			{Open: models.NewTimeSlot(15, 0), Close: models.NewTimeSlot(18, 0), CloseInclusive: true},
		},
		Weekend: DefaultWeekend,
	}
}

// VisitPolicy is the hourly appointment form: 08:00 through 21:00.
func VisitPolicy() Policy {
	return Policy{
		Name:     "visit",
		Interval: 60,
		Windows: []Window{
			{Open: models.NewTimeSlot(8, 0), Close: models.NewTimeSlot(21, 0), CloseInclusive: true},
		},
		Weekend: DefaultWeekend,
	}
}
