package alarm

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/scheduler"
	"github.com/oshokin/alarm-clock/internal/service/clock"
)

// Field names used in Struct messages.
const (
	FieldID              = "id"
	FieldTime            = "time"
	FieldEnabled         = "enabled"
	FieldLabel           = "label"
	FieldHasDuration     = "hasDuration"
	FieldDurationMinutes = "durationMinutes"
	FieldCreated         = "created"
	FieldNextTrigger     = "nextTrigger"

	FieldActive    = "active"
	FieldAlarm     = "alarm"
	FieldTriggered = "triggered"
	FieldEnds      = "ends"
	FieldOverdue   = "overdueMinutes"

	FieldType   = "type"
	FieldAt     = "at"
	FieldAlarms = "alarms"
	FieldAlert  = "alert"
)

// EventSnapshot is the type of the first message of a Watch stream.
const EventSnapshot = string(clock.EventSnapshot)

// ErrMissingField is returned when a required Struct field is absent or mistyped.
var ErrMissingField = errors.New("missing or invalid field")

// Event is a decoded Watch message.
type Event struct {
	// Type is "snapshot" or one of the store event types.
	Type string
	// At is when the event happened on the daemon.
	At time.Time
	// Alarms is the alarm list in display order.
	Alarms []*domain.Alarm
	// Alert is the active alert, or nil.
	Alert *domain.Alert
}

// AlarmToStruct encodes an alarm. nextTrigger is included for enabled alarms.
func AlarmToStruct(a *domain.Alarm, now time.Time) *structpb.Struct {
	fields := map[string]*structpb.Value{
		FieldID:              structpb.NewStringValue(a.ID),
		FieldTime:            structpb.NewStringValue(a.Time),
		FieldEnabled:         structpb.NewBoolValue(a.Enabled),
		FieldLabel:           structpb.NewStringValue(a.Label),
		FieldHasDuration:     structpb.NewBoolValue(a.HasDuration),
		FieldDurationMinutes: structpb.NewNumberValue(float64(a.DurationMinutes)),
		FieldCreated:         timeValue(a.Created),
	}

	if next := scheduler.NextTrigger(a, now); !next.IsZero() {
		fields[FieldNextTrigger] = timeValue(next)
	}

	return &structpb.Struct{Fields: fields}
}

// AlarmFromStruct decodes an alarm encoded by AlarmToStruct.
func AlarmFromStruct(s *structpb.Struct) (*domain.Alarm, error) {
	id := stringField(s, FieldID)
	if id == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, FieldID)
	}

	created, err := timeField(s, FieldCreated)
	if err != nil {
		return nil, err
	}

	return &domain.Alarm{
		ID:              id,
		Time:            stringField(s, FieldTime),
		Enabled:         boolField(s, FieldEnabled),
		Label:           stringField(s, FieldLabel),
		HasDuration:     boolField(s, FieldHasDuration),
		DurationMinutes: int(numberField(s, FieldDurationMinutes)),
		Created:         created,
	}, nil
}

// AlarmsToList encodes alarms in the given order.
func AlarmsToList(alarms []*domain.Alarm, now time.Time) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(alarms))
	for _, a := range alarms {
		values = append(values, structpb.NewStructValue(AlarmToStruct(a, now)))
	}

	return &structpb.ListValue{Values: values}
}

// AlarmsFromList decodes a list encoded by AlarmsToList.
func AlarmsFromList(list *structpb.ListValue) ([]*domain.Alarm, error) {
	result := make([]*domain.Alarm, 0, len(list.GetValues()))

	for i, value := range list.GetValues() {
		a, err := AlarmFromStruct(value.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("alarm %d: %w", i, err)
		}

		result = append(result, a)
	}

	return result, nil
}

// AlertToStruct encodes the active alert. A nil alert encodes as {"active": false}.
func AlertToStruct(alert *domain.Alert, now time.Time) *structpb.Struct {
	if alert == nil {
		return &structpb.Struct{Fields: map[string]*structpb.Value{
			FieldActive: structpb.NewBoolValue(false),
		}}
	}

	fields := map[string]*structpb.Value{
		FieldActive:    structpb.NewBoolValue(true),
		FieldAlarm:     structpb.NewStructValue(AlarmToStruct(&alert.Alarm, now)),
		FieldTriggered: timeValue(alert.Triggered),
		FieldOverdue:   structpb.NewNumberValue(float64(alert.OverdueMinutes(now))),
	}

	if alert.HasEnd() {
		fields[FieldEnds] = timeValue(alert.Ends)
	}

	return &structpb.Struct{Fields: fields}
}

// AlertFromStruct decodes an alert encoded by AlertToStruct; inactive yields nil.
func AlertFromStruct(s *structpb.Struct) (*domain.Alert, error) {
	if !boolField(s, FieldActive) {
		return nil, nil //nolint:nilnil // No active alert is not an error.
	}

	a, err := AlarmFromStruct(s.GetFields()[FieldAlarm].GetStructValue())
	if err != nil {
		return nil, fmt.Errorf("alert alarm: %w", err)
	}

	triggered, err := timeField(s, FieldTriggered)
	if err != nil {
		return nil, err
	}

	var ends time.Time
	if _, ok := s.GetFields()[FieldEnds]; ok {
		if ends, err = timeField(s, FieldEnds); err != nil {
			return nil, err
		}
	}

	return &domain.Alert{
		Alarm:     *a,
		Triggered: triggered,
		Ends:      ends,
	}, nil
}

// EventToStruct encodes a Watch message from a store event.
func EventToStruct(eventType string, at time.Time, alarms []*domain.Alarm, alert *domain.Alert) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldType:   structpb.NewStringValue(eventType),
		FieldAt:     timeValue(at),
		FieldAlarms: structpb.NewListValue(AlarmsToList(domain.SortForDisplay(alarms), at)),
		FieldAlert:  structpb.NewStructValue(AlertToStruct(alert, at)),
	}}
}

// EventFromStruct decodes a Watch message.
func EventFromStruct(s *structpb.Struct) (*Event, error) {
	at, err := timeField(s, FieldAt)
	if err != nil {
		return nil, err
	}

	alarms, err := AlarmsFromList(s.GetFields()[FieldAlarms].GetListValue())
	if err != nil {
		return nil, err
	}

	alert, err := AlertFromStruct(s.GetFields()[FieldAlert].GetStructValue())
	if err != nil {
		return nil, err
	}

	return &Event{
		Type:   stringField(s, FieldType),
		At:     at,
		Alarms: alarms,
		Alert:  alert,
	}, nil
}

// storeEventToStruct encodes an event published by the alarm store.
func storeEventToStruct(event clock.Event) *structpb.Struct {
	return EventToStruct(string(event.Type), event.At, event.Alarms, event.Alert)
}

func timeValue(t time.Time) *structpb.Value {
	return structpb.NewStringValue(t.Format(time.RFC3339Nano))
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func boolField(s *structpb.Struct, name string) bool {
	return s.GetFields()[name].GetBoolValue()
}

func numberField(s *structpb.Struct, name string) float64 {
	return s.GetFields()[name].GetNumberValue()
}

func timeField(s *structpb.Struct, name string) (time.Time, error) {
	raw := stringField(s, name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s", ErrMissingField, name)
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", ErrMissingField, name, err)
	}

	return t, nil
}
