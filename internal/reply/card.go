// Package reply turns a resolved player record into the card sent back to chat.
// Cards are typed values; the Flex wire form is built only when sending.
package reply

import (
	"fmt"

	"github.com/fortuna/courtside/internal/store"
)

const (
	// AltText is shown by clients that cannot render Flex messages.
	AltText = "alt_text"

	// StatsPlaceholder fills the Stats row of the player card.
	StatsPlaceholder = "SORRY, UPDATE NOW."

	// ReferenceURL is the box score index linked from every player card.
	ReferenceURL = "https://www.basketball-reference.com/boxscores/"

	// ErrorText is the only content of the error card.
	ErrorText = "error"

	playerImageURL = "https://www.basketball-reference.com/req/0/images/players/%s.jpg"
	teamLogoURL    = "https://d2p3bygnnzw9w3.cloudfront.net/req/202102091/tlogo/bbr/%s-2021.png"
	boxScoreURL    = "https://www.basketball-reference.com/boxscores/%s.html"
)

// Card is either a PlayerCard or an ErrorCard.
type Card interface {
	// Bubble renders the card as a Flex bubble.
	Bubble() Bubble
	isCard()
}

// PlayerCard shows one player's latest game
type PlayerCard struct {
	Record *store.PlayerStatRecord
}

// ErrorCard is sent when no player matched the text
type ErrorCard struct{}

func (PlayerCard) isCard() {}
func (ErrorCard) isCard()  {}

// Compose picks the card for a resolution result. A nil record yields ErrorCard.
func Compose(rec *store.PlayerStatRecord) Card {
	if rec == nil {
		return ErrorCard{}
	}
	return PlayerCard{Record: rec}
}

// ImageURL is the player headshot
func (c PlayerCard) ImageURL() string {
	return fmt.Sprintf(playerImageURL, c.Record.ImageID)
}

// TeamLogoURL is the team icon shown next to the team code
func (c PlayerCard) TeamLogoURL() string {
	return fmt.Sprintf(teamLogoURL, c.Record.Team)
}

// BoxScoreURL links the game the record came from
func (c PlayerCard) BoxScoreURL() string {
	return fmt.Sprintf(boxScoreURL, c.Record.GameID)
}

// Bubble renders the player card
func (c PlayerCard) Bubble() Bubble {
	rec := c.Record
	gameURL := c.BoxScoreURL()

	name := Component{
		Type:     "text",
		Text:     orDash(rec.Player),
		Weight:   "bold",
		Size:     "xl",
		Style:    "italic",
		Position: "relative",
		Align:    "center",
		Gravity:  "center",
	}

	team := box("baseline",
		Component{Type: "icon", Size: "3xl", URL: c.TeamLogoURL()},
		Component{Type: "text", Text: orDash(rec.Team), Size: "md", Color: "#999999", Margin: "md", Flex: flex(0)},
	)
	team.Margin = "md"

	details := box("vertical",
		infoRow("Place", Component{Type: "text", Text: orDash(rec.Venue), Wrap: true, Color: "#666666", Size: "sm", Flex: flex(5)}),
		infoRow("Time", Component{Type: "text", Text: orDash(rec.DateTime), Color: "#666666", Size: "sm", Flex: flex(5)}),
		infoRow("Stats", Component{Type: "text", Text: StatsPlaceholder, Color: "#aaaaaa", Size: "xs", Flex: flex(5)}),
	)
	details.Margin = "lg"
	details.Spacing = "sm"

	body := box("vertical", name, Component{Type: "separator"}, team, details)

	footer := box("vertical",
		linkButton("GAME DETAIL ↗️", gameURL),
		linkButton("BASKETBALL REFERENCE ↗", ReferenceURL),
	)
	footer.Flex = flex(0)
	footer.Spacing = "sm"

	return Bubble{
		Type: "bubble",
		Hero: &Component{
			Type:            "image",
			URL:             c.ImageURL(),
			Size:            "4xl",
			AspectMode:      "fit",
			BackgroundColor: "#ffffff",
			Action:          uriAction("", gameURL),
		},
		Body:   &body,
		Footer: &footer,
	}
}

// Bubble renders the error card
func (ErrorCard) Bubble() Bubble {
	body := box("horizontal", text(ErrorText))
	return Bubble{
		Type: "bubble",
		Body: &body,
	}
}
