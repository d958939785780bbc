package export

import (
	"encoding/json"
	"strings"
	"testing"

	"sjsage522/eventscraper/internal/crawler"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEvents(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWriter(fs)

	events := []crawler.EventRecord{
		{Source: crawler.ProviderUnstop, URL: "https://unstop.com/o/1023", Title: "Flipkart GRiD 7.0", PrizeInfo: "₹ 10,00,000"},
		{Source: crawler.ProviderDevpost, URL: "https://x.devpost.com/", Title: "R&D <Hack>", StatusLabel: "Open"},
	}
	require.NoError(t, w.WriteEvents("out/events.json", events))

	data, err := afero.ReadFile(fs, "out/events.json")
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "[\n    {\n        \"source\": \"Unstop\""), text)
	assert.Contains(t, text, "₹ 10,00,000", "non-ASCII is written as is")
	assert.Contains(t, text, "R&D <Hack>", "HTML characters are not escaped")
	assert.Equal(t, 1, strings.Count(text, "status_label"), "empty status labels are omitted")

	var decoded []crawler.EventRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, events, decoded)
}

func TestWriteEventsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, NewWriter(fs).WriteEvents("events.json", nil))

	data, err := afero.ReadFile(fs, "events.json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteEventsReadOnly(t *testing.T) {
	w := NewWriter(afero.NewReadOnlyFs(afero.NewMemMapFs()))
	assert.Error(t, w.WriteEvents("events.json", nil))
}
