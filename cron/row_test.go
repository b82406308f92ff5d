package cron

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ngicks/gapsched/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fakeCurrent = parseTime("2023-04-20T06:29:04.123456789Z")

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		panic(err)
	}
	return t
}

func assertTimeEqual(t *testing.T, expected, actual time.Time) {
	t.Helper()
	if !expected.Equal(actual) {
		t.Errorf("not equal. expected = %s, actual = %s", expected, actual)
	}
}

func TestJsonExp(t *testing.T) {
	assert := assert.New(t)
	type testCase struct {
		input  RawExpression
		expect time.Time
	}
	for _, tc := range []testCase{
		{
			input:  "@every 4h25m",
			expect: fakeCurrent.Truncate(time.Second).Add(4*time.Hour + 25*time.Minute),
		},
		{
			input:  "1 2 3 4 *",
			expect: parseTime("2024-04-03T02:01:00.000000000Z"),
		},
		{
			input:  "1 2 3 4 5 *",
			expect: parseTime("2023-05-04T03:02:01.000000000Z"),
		},
		{
			input: JsonExp{
				Second: []uint64{15, 30},
			},
			expect: parseTime("2023-04-20T06:29:15Z"),
		},
	} {
		sched, err := ParseRawExpression(tc.input)
		assert.NoError(err)
		next := sched.Next(fakeCurrent)
		assertTimeEqual(t, tc.expect, next)
	}
}

func TestJsonExpFormat(t *testing.T) {
	assert.Equal(
		t,
		"TZ=Asia/Tokyo 0 30 9,18 * * 1,2,3,4,5",
		JsonExp{
			Second:   []uint64{0},
			Minute:   []uint64{30},
			Hour:     []uint64{9, 18},
			Dow:      []uint64{1, 2, 3, 4, 5},
			Location: "Asia/Tokyo",
		}.Format(),
	)
}

func TestParseRawExpressionError(t *testing.T) {
	_, err := ParseRawExpression(12)
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = ParseRawExpression("not a cron")
	assert.Error(t, err)
}

func TestRowRawJSON(t *testing.T) {
	var raws map[string]RowRaw
	err := json.Unmarshal([]byte(`{
		"str": {"schedule": "1 2 3 4 *", "payload": {"type": "report"}},
		"obj": {"schedule": {"Second": [15, 30]}},
		"bad": {"schedule": 12}
	}`), &raws)
	require.ErrorIs(t, err, ErrMalformed)

	err = json.Unmarshal([]byte(`{
		"str": {"schedule": "1 2 3 4 *", "payload": {"type": "report"}},
		"obj": {"schedule": {"Second": [15, 30]}}
	}`), &raws)
	require.NoError(t, err)

	str, err := raws["str"].Parse()
	require.NoError(t, err)
	assert.Equal(t, scheduler.ValueKind, str.Payload.Kind())
	assert.Equal(t, json.RawMessage(`{"type": "report"}`), str.Payload.Raw())
	next, err := str.NextSchedule(fakeCurrent)
	require.NoError(t, err)
	assertTimeEqual(t, parseTime("2024-04-03T02:01:00Z"), next)

	obj, err := raws["obj"].Parse()
	require.NoError(t, err)
	assert.Nil(t, obj.Payload.Raw())
	next, err = obj.NextSchedule(fakeCurrent)
	require.NoError(t, err)
	assertTimeEqual(t, parseTime("2023-04-20T06:29:15Z"), next)
}

func TestRowRawKeepsPayload(t *testing.T) {
	payload := scheduler.Deferred(func() (any, error) { return "foo", nil })
	row, err := RowRaw{Schedule: "@hourly", Payload: payload}.Parse()
	require.NoError(t, err)
	assert.Equal(t, scheduler.DeferredKind, row.GetPayload().Kind())
}

func TestRowNoNext(t *testing.T) {
	// February 30th never comes.
	row, err := RowRaw{Schedule: "0 0 30 2 *"}.Parse()
	require.NoError(t, err)
	_, err = row.NextSchedule(fakeCurrent)
	assert.ErrorIs(t, err, ErrNoNext)

	_, err = Row{}.NextSchedule(fakeCurrent)
	assert.ErrorIs(t, err, ErrMalformed)
}
