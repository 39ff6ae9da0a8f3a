package jsonbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildsSimpleObject(t *testing.T) {
	out, err := New().BeginObject().
		Member("title").String("Fix bug").
		Member("number").ID(42).
		Member("draft").Bool(false).
		EndObject().ToString()
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Fix bug","number":42,"draft":false}`, out)
}

func TestBuildsNestedArrayOfObjects(t *testing.T) {
	out, err := New().BeginObject().
		Member("comments").BeginArray().
		BeginObject().Member("path").String("README").Member("line").Number(3).EndObject().
		BeginObject().Member("path").String("main.go").Member("line").Number(22).EndObject().
		EndArray().
		EndObject().ToString()
	require.NoError(t, err)
	assert.JSONEq(t, `{"comments":[{"path":"README","line":3},{"path":"main.go","line":22}]}`, out)
}

func TestBuildsArrayOfScalars(t *testing.T) {
	out, err := New().BeginArray().String("bug").String("wontfix").EndArray().ToString()
	require.NoError(t, err)
	assert.JSONEq(t, `["bug","wontfix"]`, out)
}

func TestNullValue(t *testing.T) {
	out, err := New().BeginObject().Member("milestone").Null().EndObject().ToString()
	require.NoError(t, err)
	assert.JSONEq(t, `{"milestone":null}`, out)
}

func TestRejectsValueInsideObjectWithoutMember(t *testing.T) {
	_, err := New().BeginObject().String("oops").EndObject().ToString()
	assert.Error(t, err)
}

func TestRejectsMemberWithoutSubsequentValue(t *testing.T) {
	_, err := New().BeginObject().Member("key").EndObject().ToString()
	assert.Error(t, err)
}

func TestRejectsUnterminatedObject(t *testing.T) {
	_, err := New().BeginObject().Member("key").String("v").ToString()
	assert.Error(t, err)
}

func TestRejectsMismatchedClose(t *testing.T) {
	_, err := New().BeginObject().EndArray().ToString()
	assert.Error(t, err)
}

func TestRejectsMemberOutsideObject(t *testing.T) {
	_, err := New().BeginArray().Member("key").ToString()
	assert.Error(t, err)
}
