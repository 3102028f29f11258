package scheduling

import (
	"fmt"
	"strings"
	"time"

	"fieldservice/config"
	"fieldservice/models"
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// PolicySetFromConfig builds the deployment's policies. With no POLICIES configured the
// built-in diagnostic and visit forms are used.
func PolicySetFromConfig(defaultName string, raw map[string]config.PolicyConfig) (*PolicySet, error) {
	if len(raw) == 0 {
		return NewPolicySet(defaultName, DiagnosticPolicy(), VisitPolicy())
	}
	policies := make([]Policy, 0, len(raw))
	for name, pc := range raw {
		p, err := policyFromConfig(strings.ToLower(name), pc)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return NewPolicySet(strings.ToLower(defaultName), policies...)
}

func policyFromConfig(name string, pc config.PolicyConfig) (Policy, error) {
	p := Policy{Name: name, Interval: pc.Interval, Weekend: DefaultWeekend}
	for i, wc := range pc.Windows {
		open, err := models.ParseTimeSlot(wc.Open)
		if err != nil {
			return Policy{}, fmt.Errorf("policy %s, window %d: %w", name, i+1, err)
		}
		closeAt, err := parseClose(wc.Close)
		if err != nil {
			return Policy{}, fmt.Errorf("policy %s, window %d: %w", name, i+1, err)
		}
		p.Windows = append(p.Windows, Window{Open: open, Close: closeAt, CloseInclusive: wc.CloseInclusive})
	}
	if len(pc.Weekend) > 0 {
		p.Weekend = nil
		for _, day := range pc.Weekend {
			day = strings.ToLower(strings.TrimSpace(day))
			if day == "none" {
				continue
			}
			wd, ok := weekdayNames[day]
			if !ok {
				return Policy{}, fmt.Errorf("policy %s: unknown weekday %q", name, day)
			}
			p.Weekend = append(p.Weekend, wd)
		}
	}
	return p, p.Validate()
}

// parseClose also accepts "24:00" for a window running to midnight.
func parseClose(label string) (models.TimeSlot, error) {
	if strings.TrimSpace(label) == "24:00" {
		return models.MinutesPerDay, nil
	}
	return models.ParseTimeSlot(label)
}
