package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	p, err := Parse(`{"action":"call","confidence":93.6,"reasoning":"Breakout above range","pattern_detected":"Bull flag","entry_price":1.0842}`)
	require.NoError(t, err)
	assert.Equal(t, "CALL", p.Action)
	assert.Equal(t, 94, p.Confidence)
	assert.Equal(t, "1.0842", p.EntryPrice)
	assert.Equal(t, "Breakout above range | Pattern: Bull flag | Entry: 1.0842", Analysis(p))
}

func TestParseClampsConfidence(t *testing.T) {
	p, err := Parse(`{"action":"SELL","confidence":140,"reasoning":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, 100, p.Confidence)

	p, err = Parse(`{"action":"SELL","confidence":-3,"reasoning":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Confidence)

	p, err = Parse(`{"action":"SELL","confidence":1e20,"reasoning":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, 100, p.Confidence)

	p, err = Parse(`{"action":"SELL","confidence":-1e20,"reasoning":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Confidence)
}

func TestParseStripsFence(t *testing.T) {
	p, err := Parse("```json\n{\"action\":\"BUY\",\"confidence\":91,\"reasoning\":\"ok\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "BUY", p.Action)
	assert.Equal(t, "ok", Analysis(p))
}

func TestParseRejectsBadContent(t *testing.T) {
	_, err := Parse("   ")
	assert.ErrorIs(t, err, ErrEmpty)

	for _, body := range []string{
		`not json`,
		`{"confidence":90}`,
		`{"action":"BUY"}`,
		`{"action":"BUY","confidence":"high"}`,
	} {
		_, err := Parse(body)
		assert.Error(t, err, body)
	}
}

func TestUserPromptMentionsInputs(t *testing.T) {
	msg := User(Input{Pair: "EUR/USD", Session: "London", MinConfidence: 90, MarketContext: MarketContext("EUR/USD", "London")})
	assert.Contains(t, msg, "EUR/USD")
	assert.Contains(t, msg, "London")
	assert.Contains(t, msg, "Minimum confidence to act: 90")
}
