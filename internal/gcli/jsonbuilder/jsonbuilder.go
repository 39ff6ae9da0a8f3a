// Package jsonbuilder is the streaming request-body builder spec.md §4.4
// names: begin_object/end_object/begin_array/end_array/objmember/string/
// number/id/bool/null, enforcing well-formedness as values are appended.
// No direct teacher analogue; styled after the teacher's small
// single-purpose builder types (e.g. internal/adapter/llm/http/json.go).
package jsonbuilder

import (
	"strconv"
	"strings"
)

type frame int

const (
	frameObject frame = iota
	frameArray
)

// Builder assembles a JSON document incrementally, rejecting malformed
// sequences (a bare value inside an object with no preceding objmember, or
// end_object/end_array that doesn't match the innermost open frame) at the
// call site rather than at marshal time.
type Builder struct {
	out   strings.Builder
	stack []frame
	hasKV []bool // per-frame: true if objmember was just called and a value is now due
	first []bool // per-frame: true until the first child has been written
	err   error
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

func (b *Builder) fail(msg string) {
	if b.err == nil {
		b.err = malformedf(msg)
	}
}

func (b *Builder) top() (frame, bool) {
	if len(b.stack) == 0 {
		return 0, false
	}
	return b.stack[len(b.stack)-1], true
}

// beforeValue writes a leading comma where needed and, inside an object,
// requires a preceding Member call.
func (b *Builder) beforeValue() {
	n := len(b.stack)
	if n == 0 {
		return
	}
	if b.stack[n-1] == frameObject {
		if !b.hasKV[n-1] {
			b.fail("object value with no preceding objmember")
			return
		}
		b.hasKV[n-1] = false
	}
	if !b.first[n-1] {
		b.out.WriteByte(',')
	}
	b.first[n-1] = false
}

func (b *Builder) push(f frame, open byte) {
	b.beforeValue()
	b.out.WriteByte(open)
	b.stack = append(b.stack, f)
	b.hasKV = append(b.hasKV, false)
	b.first = append(b.first, true)
}

func (b *Builder) pop(want frame, close byte) {
	n := len(b.stack)
	if n == 0 || b.stack[n-1] != want {
		b.fail("mismatched close")
		return
	}
	if want == frameObject && b.hasKV[n-1] {
		b.fail("objmember with no value")
		return
	}
	b.stack = b.stack[:n-1]
	b.hasKV = b.hasKV[:n-1]
	b.first = b.first[:n-1]
	b.out.WriteByte(close)
}

// BeginObject opens a `{`.
func (b *Builder) BeginObject() *Builder {
	b.push(frameObject, '{')
	return b
}

// EndObject closes the innermost open object.
func (b *Builder) EndObject() *Builder {
	b.pop(frameObject, '}')
	return b
}

// BeginArray opens a `[`.
func (b *Builder) BeginArray() *Builder {
	b.push(frameArray, '[')
	return b
}

// EndArray closes the innermost open array.
func (b *Builder) EndArray() *Builder {
	b.pop(frameArray, ']')
	return b
}

// Member writes an object key; a value call must follow directly.
func (b *Builder) Member(key string) *Builder {
	n := len(b.stack)
	if n == 0 || b.stack[n-1] != frameObject {
		b.fail("objmember outside an object")
		return b
	}
	if b.hasKV[n-1] {
		b.fail("objmember with no value for the previous key")
		return b
	}
	if !b.first[n-1] {
		b.out.WriteByte(',')
	}
	b.first[n-1] = false
	b.out.WriteString(strconv.Quote(key))
	b.out.WriteByte(':')
	b.hasKV[n-1] = true
	return b
}

// String writes a string value.
func (b *Builder) String(s string) *Builder {
	b.beforeValue()
	b.out.WriteString(strconv.Quote(s))
	return b
}

// Number writes a float64 value.
func (b *Builder) Number(n float64) *Builder {
	b.beforeValue()
	b.out.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
	return b
}

// ID writes a uint64 value without floating-point precision loss, matching
// the backend ids spec.md's data model carries (gcli_id).
func (b *Builder) ID(id uint64) *Builder {
	b.beforeValue()
	b.out.WriteString(strconv.FormatUint(id, 10))
	return b
}

// Bool writes a boolean value.
func (b *Builder) Bool(v bool) *Builder {
	b.beforeValue()
	b.out.WriteString(strconv.FormatBool(v))
	return b
}

// Null writes a null value.
func (b *Builder) Null() *Builder {
	b.beforeValue()
	b.out.WriteString("null")
	return b
}

// ToString consumes the builder, returning the serialised document. It
// fails if any frame was left open or a malformed sequence occurred.
func (b *Builder) ToString() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if len(b.stack) != 0 {
		return "", malformedf("unterminated object or array")
	}
	return b.out.String(), nil
}
