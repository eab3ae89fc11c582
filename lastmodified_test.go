package webcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseHTTPDateToleratesGMTAndUTC(t *testing.T) {
	gmt, ok := parseHTTPDate("Wed, 21 Oct 2015 07:28:00 GMT")
	require.True(t, ok)

	utc, ok := parseHTTPDate("Wed, 21 Oct 2015 07:28:00 UTC")
	require.True(t, ok)

	require.True(t, gmt.Equal(utc))
}

func TestParseHTTPDateRejectsOtherZones(t *testing.T) {
	_, ok := parseHTTPDate("Wed, 21 Oct 2015 07:28:00 EST")
	require.False(t, ok)

	_, ok = parseHTTPDate("not a date at all")
	require.False(t, ok)
}

func TestLastModifiedForPicksOlderOfNowAndHeader(t *testing.T) {
	now := float64(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).Unix())
	older := &Content{Headers: map[string]string{
		"Last-Modified": "Mon, 01 Jan 2024 00:00:00 GMT",
	}}
	require.Equal(t, "Mon, 01 Jan 2024 00:00:00 GMT", lastModifiedFor(now, older))

	newer := &Content{Headers: map[string]string{
		"Last-Modified": "Wed, 03 Jan 2024 00:00:00 GMT",
	}}
	require.Equal(t, makeHTTPDate(time.Unix(int64(now), 0).UTC()), lastModifiedFor(now, newer))

	noHeader := &Content{Headers: map[string]string{}}
	require.Equal(t, makeHTTPDate(time.Unix(int64(now), 0).UTC()), lastModifiedFor(now, noHeader))
}
