package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stringerID int

func (s stringerID) String() string { return "id-42" }

func TestInferClassifiesByGoType(t *testing.T) {
	assert.Equal(t, Value{Kind: KindNull}, Infer(nil))
	assert.Equal(t, Value{Kind: KindBool, Bool: true}, Infer(true))
	assert.Equal(t, Value{Kind: KindInt, Int: 7}, Infer(7))
	assert.Equal(t, Value{Kind: KindInt, Int: 7}, Infer(int64(7)))
	assert.Equal(t, Value{Kind: KindString, Str: "hi"}, Infer("hi"))
	assert.Equal(t, Value{Kind: KindString, Str: "id-42"}, Infer(stringerID(1)))
}

func TestInferDefaultsUnknownTypesToString(t *testing.T) {
	type custom struct{ X int }
	v := Infer(custom{X: 3})
	assert.Equal(t, KindString, v.Kind)
	assert.Contains(t, v.Str, "3")
}

func TestValueRawShapes(t *testing.T) {
	assert.Equal(t, int64(7), Value{Kind: KindInt, Int: 7}.Raw())
	assert.Equal(t, true, Value{Kind: KindBool, Bool: true}.Raw())
	assert.Nil(t, Value{Kind: KindNull}.Raw())
	assert.Equal(t, "hi", Value{Kind: KindString, Str: "hi"}.Raw())
}
