package places

import (
	"bytes"
	"strings"
	"testing"

	"github.com/couchcryptid/crowdmap-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_WriteThenRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, domain.SampleCatalog()))

	got, err := ReadCatalog(&buf)
	require.NoError(t, err)
	assert.Equal(t, domain.SampleCatalog(), got)
}

func TestReadCatalog_ReportsEveryInvalidPlace(t *testing.T) {
	in := `{"places":[
		{"id":"a","name":"A","type":"bar","latitude":1,"longitude":1,"rating":4,"priceLevel":2,"peakHours":[22],"basePopularity":50,"source":"synthetic"},
		{"id":"b","name":"B","type":"zoo","latitude":1,"longitude":1,"rating":4,"priceLevel":2,"peakHours":[22],"basePopularity":50,"source":"synthetic"},
		{"id":"c","name":"C","type":"bar","latitude":1,"longitude":1,"rating":9,"priceLevel":2,"peakHours":[22],"basePopularity":50,"source":"synthetic"},
		{"id":"a","name":"A again","type":"bar","latitude":1,"longitude":1,"rating":4,"priceLevel":2,"peakHours":[22],"basePopularity":50,"source":"synthetic"}
	]}`

	_, err := ReadCatalog(strings.NewReader(in))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "place 1 (b)")
	assert.Contains(t, err.Error(), "place 2 (c)")
	assert.Contains(t, err.Error(), `duplicate id "a"`)
}

func TestReadCatalog_RejectsUnknownFields(t *testing.T) {
	_, err := ReadCatalog(strings.NewReader(`{"places":[{"id":"a","popularity":5}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode catalog")
}
