package checkpoint

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Representation records how an entry was stored on disk.
type Representation string

const (
	RepUnix     Representation = "unix"
	RepText     Representation = "unix-string"
	RepISO      Representation = "iso8601"
	RepDateTime Representation = "toml-datetime"
)

const dateOnly = "2006-01-02"

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateOnly,
}

// stamp is a decoded head value plus what is needed to write it back in the
// same shape.
type stamp struct {
	unix   int64
	rep    Representation
	layout string
	loc    *time.Location
}

func decodeValue(raw any) (stamp, error) {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return stamp{unix: n, rep: RepUnix}, nil
		}
		f, err := v.Float64()
		if err != nil {
			return stamp{}, fmt.Errorf("invalid number %q", v.String())
		}
		return stamp{unix: int64(math.Floor(f)), rep: RepUnix}, nil
	case int64:
		return stamp{unix: v, rep: RepUnix}, nil
	case float64:
		return stamp{unix: int64(math.Floor(v)), rep: RepUnix}, nil
	case string:
		return parseText(v)
	case time.Time:
		return stamp{unix: v.Unix(), rep: RepDateTime, loc: v.Location()}, nil
	case toml.LocalDateTime:
		return stamp{unix: v.AsTime(time.Local).Unix(), rep: RepDateTime, loc: time.Local}, nil
	case toml.LocalDate:
		return stamp{unix: v.AsTime(time.Local).Unix(), rep: RepDateTime, loc: time.Local}, nil
	default:
		return stamp{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

func parseText(s string) (stamp, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return stamp{unix: n, rep: RepText}, nil
	}
	for _, layout := range isoLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return stamp{unix: t.Unix(), rep: RepISO, layout: layout, loc: t.Location()}, nil
		}
	}
	return stamp{}, fmt.Errorf("invalid timestamp %q", s)
}

// encode renders unix in the stamp's representation. Date-only entries widen
// to a full timestamp so the run's start time is not truncated.
func (s stamp) encode(unix int64, toTOML bool) any {
	loc := s.loc
	if loc == nil {
		loc = time.UTC
	}
	switch s.rep {
	case RepText:
		return strconv.FormatInt(unix, 10)
	case RepISO:
		layout := s.layout
		if layout == "" || layout == dateOnly {
			layout = time.RFC3339
		}
		return time.Unix(unix, 0).In(loc).Format(layout)
	case RepDateTime:
		return time.Unix(unix, 0).In(loc)
	default:
		if toTOML {
			return unix
		}
		return json.Number(strconv.FormatInt(unix, 10))
	}
}
