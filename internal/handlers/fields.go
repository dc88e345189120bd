package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// decodeJSON reads a JSON request body into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return invalid("Invalid JSON")
	}
	return nil
}

// fields reads optional members of a JSON object. The first decoding error
// is kept and every later read becomes a no-op.
type fields struct {
	body map[string]json.RawMessage
	err  error
}

func readFields(r *http.Request) (*fields, error) {
	body := map[string]json.RawMessage{}
	if err := decodeJSON(r, &body); err != nil {
		return nil, err
	}
	return &fields{body: body}, nil
}

func (f *fields) raw(key string) (json.RawMessage, bool) {
	if f.err != nil {
		return nil, false
	}
	v, ok := f.body[key]
	return v, ok
}

func (f *fields) fail(msg string) {
	if f.err == nil {
		f.err = invalid(msg)
	}
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// str reads a string member. null reads as "".
func (f *fields) str(key string, dst *string) bool {
	v, ok := f.raw(key)
	if !ok {
		return false
	}
	if isNull(v) {
		*dst = ""
		return true
	}
	if err := json.Unmarshal(v, dst); err != nil {
		f.fail(key + " must be a string")
		return false
	}
	return true
}

func (f *fields) boolean(key string, dst *bool) bool {
	v, ok := f.raw(key)
	if !ok {
		return false
	}
	if isNull(v) {
		*dst = false
		return true
	}
	if err := json.Unmarshal(v, dst); err != nil {
		f.fail(key + " must be a boolean")
		return false
	}
	return true
}

// number reads a JSON number or a numeric string. null and "" read as unset.
func (f *fields) number(key string) (*float64, bool) {
	v, ok := f.raw(key)
	if !ok {
		return nil, false
	}
	if isNull(v) {
		return nil, true
	}
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return &n, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		f.fail(key + " must be a number")
		return nil, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(n) {
		f.fail(key + " must be a number")
		return nil, false
	}
	return &n, true
}

func finite(n float64) bool {
	return !math.IsInf(n, 0) && !math.IsNaN(n)
}

func (f *fields) integer(key string, dst **int) bool {
	n, ok := f.number(key)
	if !ok {
		return false
	}
	if n == nil {
		*dst = nil
		return true
	}
	if *n != float64(int(*n)) {
		f.fail(key + " must be a whole number")
		return false
	}
	i := int(*n)
	*dst = &i
	return true
}

func (f *fields) list(key string, dst *[]string) bool {
	v, ok := f.raw(key)
	if !ok {
		return false
	}
	out := []string{}
	if !isNull(v) {
		if err := json.Unmarshal(v, &out); err != nil {
			f.fail(key + " must be a list of strings")
			return false
		}
	}
	*dst = out
	return true
}

// date reads a YYYY-MM-DD string. Malformed dates read as unset.
func (f *fields) date(key string, dst **time.Time) bool {
	var s string
	if !f.str(key, &s) {
		return false
	}
	*dst = parseDate(s)
	return true
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &d
}

func parseFloat(s string) *float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !finite(n) {
		return nil
	}
	return &n
}

func parseInt(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

func parseBool(s string) *bool {
	switch s {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}
