package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSort(t *testing.T) {
	assert.Equal(t, []Sort{{Field: "name"}, {Field: "price.amount", Desc: true}}, ParseSort("name, -price.amount"))
	assert.Empty(t, ParseSort(""))
	assert.Empty(t, ParseSort(" , "))
}

func TestOffsetPagination_Clamp(t *testing.T) {
	assert.Equal(t, OffsetPagination{Limit: 50}, OffsetPagination{}.Clamp(50, 500))
	assert.Equal(t, OffsetPagination{Limit: 500, Offset: 10}, OffsetPagination{Limit: 9000, Offset: 10}.Clamp(50, 500))
	assert.Equal(t, OffsetPagination{Limit: 5}, OffsetPagination{Limit: 5, Offset: -3}.Clamp(50, 0))
}
