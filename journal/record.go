package journal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ngicks/gapsched/scheduler"
	"github.com/tidwall/gjson"
	"gorm.io/datatypes"
)

type State string

const (
	Scheduled  State = "scheduled"
	Cancelled  State = "cancelled"
	Dispatched State = "dispatched"
	Failed     State = "failed"
)

// Record is one lifecycle transition of an event. Records are only ever appended.
type Record struct {
	Id           string         `json:"id" gorm:"primaryKey;not null"`
	Seq          uint64         `json:"seq" gorm:"not null;index"`
	EventId      string         `json:"event_id" gorm:"not null;index"`
	State        State          `json:"state" gorm:"not null;index"`
	FireAt       time.Time      `json:"fire_at" gorm:"not null"`
	PayloadKind  string         `json:"payload_kind"`
	Payload      datatypes.JSON `json:"payload"`
	DispatchedAt *time.Time     `json:"dispatched_at,omitempty"`
	ErrKind      string         `json:"err_kind,omitempty"`
	Err          string         `json:"err,omitempty"`
	RecordedAt   time.Time      `json:"recorded_at" gorm:"not null;index"`
}

// PayloadPath looks up path in the recorded payload. path follows gjson syntax.
func (r Record) PayloadPath(path string) gjson.Result {
	return gjson.GetBytes(r.Payload, path)
}

func newRecord(state State, eventId string, fireAt, recordedAt time.Time) Record {
	return Record{
		Id:         uuid.NewString(),
		EventId:    eventId,
		State:      state,
		FireAt:     fireAt,
		RecordedAt: recordedAt,
	}
}

func fromEvent(state State, ev scheduler.Event, recordedAt time.Time) Record {
	r := newRecord(state, ev.Id(), ev.FireAt(), recordedAt)
	r.PayloadKind = ev.Payload().Kind().String()
	if ev.Payload().Kind() == scheduler.ValueKind {
		r.Payload, r.Err = encodePayload(ev.Payload().Raw())
	}
	return r
}

func fromFired(fired scheduler.Fired, recordedAt time.Time) Record {
	r := fromEvent(Dispatched, fired.Event, recordedAt)
	r.Payload, r.Err = encodePayload(fired.Value)
	dispatchedAt := fired.DispatchedAt
	r.DispatchedAt = &dispatchedAt
	return r
}

func fromDispatchError(dispatchErr *scheduler.DispatchError, recordedAt time.Time) Record {
	r := newRecord(Failed, dispatchErr.Handle.Id(), dispatchErr.Handle.FireAt(), recordedAt)
	r.ErrKind = string(dispatchErr.Kind)
	r.Err = dispatchErr.Error()
	return r
}

// encodePayload stores JSON bytes as they are and marshals anything else.
// A value that cannot be marshaled is recorded as null with the reason in errStr.
func encodePayload(v any) (payload datatypes.JSON, errStr string) {
	switch x := v.(type) {
	case json.RawMessage:
		if gjson.ValidBytes(x) {
			return datatypes.JSON(x), ""
		}
	case []byte:
		if gjson.ValidBytes(x) {
			return datatypes.JSON(x), ""
		}
	}
	bin, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null"), "payload: " + err.Error()
	}
	return datatypes.JSON(bin), ""
}
