package shared

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ngo/lumen/internal/platform/httpx"
)

func TestPageParamsDefaults(t *testing.T) {
	page, perPage, err := PageParams(url.Values{"page": {"abc"}, "perPage": {"500"}})
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Equal(t, 100, perPage)
}

func TestPageParamsRejectsHugePage(t *testing.T) {
	_, _, err := PageParams(url.Values{"page": {"4611686018427387904"}})
	require.ErrorIs(t, err, ErrPageOutOfRange)
	assert.True(t, errors.Is(err, httpx.ErrValidation))

	page, _, err := PageParams(url.Values{"page": {"1000000"}})
	require.NoError(t, err)
	assert.Equal(t, MaxPage, page)
}

func TestOffsetNeverNegative(t *testing.T) {
	assert.Equal(t, 0, Offset(0, 20))
	assert.Equal(t, 40, Offset(3, 20))
	assert.Equal(t, (MaxPage-1)*100, Offset(1<<62, 100))
}
