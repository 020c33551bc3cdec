package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManagerOffsetRoundTrip(t *testing.T) {
	m := NewManager(10)
	assert.Equal(t, 0, m.SetPage(1).Offset())
	assert.Equal(t, 20, m.SetPage(3).Offset())
}

func TestManagerSetPageClampsBelowOne(t *testing.T) {
	m := NewManager(10)
	assert.Equal(t, 0, m.SetPage(-5).Offset())
	assert.Equal(t, 1, m.Page())
}

func TestManagerPageCountCeilsAgainstTotal(t *testing.T) {
	m := NewManager(10)
	m.SetTotalCount(100)
	assert.Equal(t, 10, m.PageCount())

	m.SetTotalCount(95)
	assert.Equal(t, 10, m.PageCount())

	m.SetTotalCount(101)
	assert.Equal(t, 11, m.PageCount())
}

func TestManagerPageCountIsOneWhenLimitNonPositive(t *testing.T) {
	m := NewManager(0)
	m.SetTotalCount(1000)
	assert.Equal(t, 1, m.PageCount())
}

func TestManagerNegativeTotalCountClampsToZero(t *testing.T) {
	m := NewManager(10)
	m.SetTotalCount(-5)
	assert.Equal(t, 0, m.PageCount())
}
