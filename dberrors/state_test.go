package dberrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateSetAndClear(t *testing.T) {
	var s State
	assert.Nil(t, s.Get())

	s.Set("boom", nil)
	require := *s.Get()
	assert.Equal(t, "boom", require)

	s.Clear()
	assert.Nil(t, s.Get())
}

func TestStateSetWithContextAppendsSortedPairs(t *testing.T) {
	var s State
	s.Set("boom", map[string]any{"b": 2, "a": 1})
	assert.Equal(t, "boom; Context: a=1, b=2", *s.Get())
}

func TestStateSetErrNilClears(t *testing.T) {
	var s State
	s.Set("boom", nil)
	s.SetErr(nil, nil)
	assert.Nil(t, s.Get())
}

func TestStateSetErrRecordsMessage(t *testing.T) {
	var s State
	s.SetErr(errors.New("disk full"), nil)
	assert.Equal(t, "disk full", *s.Get())
}
