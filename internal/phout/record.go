package phout

import (
	"fmt"
	"strconv"
)

// Field identifies one column of a phout line
type Field int

// Phout columns in file order
const (
	FieldTime          Field = iota // timestamp
	FieldTag                        // request tag
	FieldIntervalReal               // connect_time + send_time + latency + receive_time (mks)
	FieldConnectTime                // time to establish connection to the server (mks)
	FieldSendTime                   // time to send request to the server (mks)
	FieldLatency                    // lag for the server response (mks)
	FieldReceiveTime                // time to receive response from the server (mks)
	FieldIntervalEvent              // time to wait for response from the server (mks)
	FieldSizeOut                    // request size (bytes)
	FieldSizeIn                     // answer size (bytes)
	FieldNetCode                    // network response code
	FieldProtoCode                  // protocol response code
)

// FieldCount is the number of tab separated fields in every phout line
const FieldCount = 12

var fieldNames = [FieldCount]string{
	"time",
	"tag",
	"interval_real",
	"connect_time",
	"send_time",
	"latency",
	"receive_time",
	"interval_event",
	"size_out",
	"size_in",
	"net_code",
	"proto_code",
}

// Fields returns all columns in file order
func Fields() []Field {
	fields := make([]Field, FieldCount)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

func (f Field) String() string {
	if f < 0 || int(f) >= FieldCount {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField maps a column name such as "latency" to its Field
func ParseField(name string) (Field, error) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("unknown phout field %q", name)
}

// Record is a single parsed phout line
type Record struct {
	Time          float64
	Tag           string
	IntervalReal  int64
	ConnectTime   int64
	SendTime      int64
	Latency       int64
	ReceiveTime   int64
	IntervalEvent int64
	SizeOut       int64
	SizeIn        int64
	NetCode       int64
	ProtoCode     int64

	// Line is the 1-based line number the record was read from.
	Line int

	raw [FieldCount]string
}

// newRecord builds a Record from exactly FieldCount fields. Only the
// timestamp is validated; other numeric columns that do not parse as
// integers are stored as 0
func newRecord(fields []string, line int) (Record, error) {
	var rec Record
	copy(rec.raw[:], fields)
	rec.Line = line

	t, err := strconv.ParseFloat(fields[FieldTime], 64)
	if err != nil {
		return Record{}, err
	}
	rec.Time = t
	rec.Tag = fields[FieldTag]

	ints := [...]*int64{
		FieldIntervalReal:  &rec.IntervalReal,
		FieldConnectTime:   &rec.ConnectTime,
		FieldSendTime:      &rec.SendTime,
		FieldLatency:       &rec.Latency,
		FieldReceiveTime:   &rec.ReceiveTime,
		FieldIntervalEvent: &rec.IntervalEvent,
		FieldSizeOut:       &rec.SizeOut,
		FieldSizeIn:        &rec.SizeIn,
		FieldNetCode:       &rec.NetCode,
		FieldProtoCode:     &rec.ProtoCode,
	}
	for f := FieldIntervalReal; f <= FieldProtoCode; f++ {
		*ints[f] = parseInt(fields[f])
	}

	return rec, nil
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Int returns the integer value of a numeric column. The timestamp is
// truncated and the tag yields 0
func (r Record) Int(f Field) int64 {
	switch f {
	case FieldTime:
		return int64(r.Time)
	case FieldTag:
		return 0
	case FieldIntervalReal:
		return r.IntervalReal
	case FieldConnectTime:
		return r.ConnectTime
	case FieldSendTime:
		return r.SendTime
	case FieldLatency:
		return r.Latency
	case FieldReceiveTime:
		return r.ReceiveTime
	case FieldIntervalEvent:
		return r.IntervalEvent
	case FieldSizeOut:
		return r.SizeOut
	case FieldSizeIn:
		return r.SizeIn
	case FieldNetCode:
		return r.NetCode
	case FieldProtoCode:
		return r.ProtoCode
	}
	return 0
}

// Float returns the numeric value of a column as float64
func (r Record) Float(f Field) float64 {
	if f == FieldTime {
		return r.Time
	}
	return float64(r.Int(f))
}

// Value returns the grouping key of a column: the tag as written, the
// timestamp as written and the canonical decimal form of integer columns
func (r Record) Value(f Field) string {
	switch f {
	case FieldTime:
		return r.raw[FieldTime]
	case FieldTag:
		return r.Tag
	}
	return strconv.FormatInt(r.Int(f), 10)
}

// Raw returns the column exactly as it appeared in the input line
func (r Record) Raw(f Field) string {
	if f < 0 || int(f) >= FieldCount {
		return ""
	}
	return r.raw[f]
}
