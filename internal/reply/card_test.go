package reply

import (
	"encoding/json"
	"testing"

	"github.com/fortuna/courtside/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tatum() *store.PlayerStatRecord {
	return &store.PlayerStatRecord{
		Player:   "Jayson Tatum",
		Minutes:  "39:08",
		Points:   "20",
		Day:      "1225",
		Team:     "BOS",
		Opponent: "BRK",
		DateTime: "5:00 PM, December 25, 2020",
		Venue:    "TD Garden, Boston, Massachusetts",
		ImageID:  "tatumja01",
		GameID:   "202012250BOS",
	}
}

// wire renders a bubble to its JSON object form
func wire(t *testing.T, b Bubble) map[string]any {
	t.Helper()
	data, err := json.Marshal(b)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func contents(t *testing.T, v any) []any {
	t.Helper()
	m, ok := v.(map[string]any)
	require.True(t, ok, "component is not an object: %v", v)
	c, ok := m["contents"].([]any)
	require.True(t, ok, "component has no contents: %v", m)
	return c
}

func TestCompose(t *testing.T) {
	assert.Equal(t, ErrorCard{}, Compose(nil))

	card, ok := Compose(tatum()).(PlayerCard)
	require.True(t, ok)
	assert.Equal(t, "Jayson Tatum", card.Record.Player)
}

func TestPlayerCard_URLs(t *testing.T) {
	card := PlayerCard{Record: tatum()}

	assert.Equal(t, "https://www.basketball-reference.com/req/0/images/players/tatumja01.jpg", card.ImageURL())
	assert.Equal(t, "https://d2p3bygnnzw9w3.cloudfront.net/req/202102091/tlogo/bbr/BOS-2021.png", card.TeamLogoURL())
	assert.Equal(t, "https://www.basketball-reference.com/boxscores/202012250BOS.html", card.BoxScoreURL())
}

func TestPlayerCard_Bubble(t *testing.T) {
	b := wire(t, Compose(tatum()).Bubble())

	assert.Equal(t, "bubble", b["type"])

	hero := b["hero"].(map[string]any)
	assert.Equal(t, "image", hero["type"])
	assert.Equal(t, "https://www.basketball-reference.com/req/0/images/players/tatumja01.jpg", hero["url"])
	assert.Equal(t, "4xl", hero["size"])
	assert.Equal(t, "fit", hero["aspectMode"])
	assert.Equal(t, "#ffffff", hero["backgroundColor"])
	assert.Equal(t, map[string]any{
		"type": "uri",
		"uri":  "https://www.basketball-reference.com/boxscores/202012250BOS.html",
	}, hero["action"])

	body := contents(t, b["body"])
	require.Len(t, body, 4)

	name := body[0].(map[string]any)
	assert.Equal(t, "Jayson Tatum", name["text"])
	assert.Equal(t, "bold", name["weight"])
	assert.Equal(t, "xl", name["size"])

	assert.Equal(t, "separator", body[1].(map[string]any)["type"])

	team := contents(t, body[2])
	require.Len(t, team, 2)
	assert.Equal(t, "icon", team[0].(map[string]any)["type"])
	assert.Equal(t, "https://d2p3bygnnzw9w3.cloudfront.net/req/202102091/tlogo/bbr/BOS-2021.png", team[0].(map[string]any)["url"])
	assert.Equal(t, "BOS", team[1].(map[string]any)["text"])
	assert.Equal(t, float64(0), team[1].(map[string]any)["flex"], "flex 0 is kept on the wire")

	rows := contents(t, body[3])
	require.Len(t, rows, 3)
	wantRows := [][2]string{
		{"Place", "TD Garden, Boston, Massachusetts"},
		{"Time", "5:00 PM, December 25, 2020"},
		{"Stats", StatsPlaceholder},
	}
	for i, want := range wantRows {
		cells := contents(t, rows[i])
		require.Len(t, cells, 2)
		assert.Equal(t, want[0], cells[0].(map[string]any)["text"])
		assert.Equal(t, want[1], cells[1].(map[string]any)["text"])
	}

	footer := contents(t, b["footer"])
	require.Len(t, footer, 2)
	game := footer[0].(map[string]any)["action"].(map[string]any)
	assert.Equal(t, "GAME DETAIL ↗️", game["label"])
	assert.Equal(t, "https://www.basketball-reference.com/boxscores/202012250BOS.html", game["uri"])
	ref := footer[1].(map[string]any)["action"].(map[string]any)
	assert.Equal(t, "BASKETBALL REFERENCE ↗", ref["label"])
	assert.Equal(t, ReferenceURL, ref["uri"])
}

func TestPlayerCard_EmptyTextFallsBackToDash(t *testing.T) {
	rec := tatum()
	rec.Venue, rec.DateTime, rec.Team = "", " ", ""

	b := wire(t, Compose(rec).Bubble())
	body := contents(t, b["body"])

	team := contents(t, body[2])
	assert.Equal(t, "-", team[1].(map[string]any)["text"])

	rows := contents(t, body[3])
	for _, row := range rows[:2] {
		cells := contents(t, row)
		assert.Equal(t, "-", cells[1].(map[string]any)["text"])
	}
}

func TestErrorCard_Bubble(t *testing.T) {
	b := wire(t, Compose(nil).Bubble())

	assert.Equal(t, map[string]any{
		"type": "bubble",
		"body": map[string]any{
			"type":   "box",
			"layout": "horizontal",
			"contents": []any{
				map[string]any{"type": "text", "text": "error"},
			},
		},
	}, b)
}
