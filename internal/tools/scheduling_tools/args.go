package scheduling_tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/deskflow/slotbooker/internal/scheduling"
)

// policyInputFromArgs builds the raw scheduling configuration from tool
// arguments. It only shapes the input; all validation happens in
// scheduling.NewPolicy.
func policyInputFromArgs(args map[string]interface{}) (scheduling.PolicyInput, error) {
	var in scheduling.PolicyInput

	if v, ok := args["timezone"].(string); ok {
		in.Timezone = v
	}
	if v, ok := args["daysAheadHorizon"].(float64); ok {
		in.DaysAheadHorizon = int(v)
	}
	if v, ok := args["slotDurationMinutes"].(float64); ok {
		in.SlotDurationMinutes = int(v)
	}
	if v, ok := args["slotIntervalMinutes"].(float64); ok {
		in.SlotIntervalMinutes = int(v)
	}
	if v, ok := args["maxSlotsReturned"].(float64); ok {
		in.MaxSlotsReturned = int(v)
	}
	if v, ok := args["skipPastTimeToday"].(bool); ok {
		in.SkipPastTimeToday = &v
	}
	if v, ok := args["bufferMinutes"].(float64); ok {
		buffer := int(v)
		in.BufferMinutes = &buffer
	}
	if v, ok := args["maxBookingsPerDay"].(float64); ok {
		in.MaxBookingsPerDay = int(v)
	}
	if v, ok := args["maxBookingsPerWeek"].(float64); ok {
		in.MaxBookingsPerWeek = int(v)
	}

	if v, ok := args["businessHours"].(string); ok && v != "" {
		hours, err := parseBusinessHours(v)
		if err != nil {
			return in, err
		}
		in.BusinessHours = hours
	}
	if v, ok := args["closedWeekdays"].(string); ok && v != "" {
		in.ClosedWeekdays = splitCommaList(v)
	}
	if v, ok := args["holidayDates"].(string); ok && v != "" {
		in.HolidayDates = splitCommaList(v)
	}

	return in, nil
}

// parseBusinessHours decodes a JSON object mapping weekday names to
// "HH:MM-HH:MM" ranges. The value "closed" marks a day without hours.
func parseBusinessHours(raw string) (map[string]scheduling.HoursInput, error) {
	var byDay map[string]string
	if err := json.Unmarshal([]byte(raw), &byDay); err != nil {
		return nil, &scheduling.ConfigurationError{
			Field:  "businessHours",
			Reason: fmt.Sprintf("not a valid JSON object: %v", err),
		}
	}

	hours := make(map[string]scheduling.HoursInput, len(byDay))
	for day, window := range byDay {
		if strings.EqualFold(strings.TrimSpace(window), "closed") {
			continue
		}
		open, close, found := strings.Cut(window, "-")
		if !found {
			return nil, &scheduling.ConfigurationError{
				Field:  "businessHours",
				Reason: fmt.Sprintf("%s: expected \"HH:MM-HH:MM\" or \"closed\", got %q", day, window),
			}
		}
		hours[day] = scheduling.HoursInput{
			Open:  strings.TrimSpace(open),
			Close: strings.TrimSpace(close),
		}
	}
	return hours, nil
}

func splitCommaList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// toolErrorMessage prefixes the error with its classification so agents can
// react to conflicts, quota rejections and calendar outages differently.
func toolErrorMessage(err error) string {
	var calErr *scheduling.ExternalCalendarError
	var cfgErr *scheduling.ConfigurationError
	var valErr *scheduling.ValidationError
	var conflictErr *scheduling.ConflictError
	var quotaErr *scheduling.QuotaExceededError

	switch {
	case errors.As(err, &calErr):
		return fmt.Sprintf("%s: %v", calErr.Kind, err)
	case errors.As(err, &cfgErr):
		return fmt.Sprintf("configuration_error: %v", err)
	case errors.As(err, &valErr):
		return fmt.Sprintf("validation_error: %v", err)
	case errors.As(err, &conflictErr):
		return fmt.Sprintf("conflict: %v", err)
	case errors.As(err, &quotaErr):
		return fmt.Sprintf("quota_exceeded: %v", err)
	}
	return err.Error()
}
