package bref

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DidNotPlayPlaceholder fills every statistic column of a player who did not play.
const DidNotPlayPlaceholder = "-"

var boxTableID = regexp.MustCompile(`^box-([A-Z]{3})-game-basic$`)

// Status phrases the site prints in place of numbers for inactive players.
var didNotPlayStatuses = map[string]bool{
	"Did Not Play":     true,
	"Did Not Dress":    true,
	"Not With Team":    true,
	"Player Suspended": true,
}

// Header-cell texts of rows that are not players.
var nonPlayerRows = map[string]bool{
	"Team Totals": true,
	"Reserves":    true,
}

// ParseHTML converts raw HTML to a goquery Document. The site hides some tables
// inside HTML comments, so comment markers are dropped first.
func ParseHTML(htmlContent string) (*goquery.Document, error) {
	clean := strings.ReplaceAll(htmlContent, "<!--", "")
	clean = strings.ReplaceAll(clean, "-->", "")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// ListGameURLs returns the absolute box score URL of every completed game on the
// listing page, in page order.
func ListGameURLs(doc *goquery.Document, listingURL string) ([]string, error) {
	base := strings.TrimRight(listingURL, "/") + "/"

	var (
		urls     []string
		parseErr error
	)
	doc.Find("div.game_summary.expanded.nohover").EachWithBreak(func(i int, s *goquery.Selection) bool {
		link := s.Find("td.gamelink a").First()
		if link.Length() == 0 {
			links := s.Find("a")
			if links.Length() < 2 {
				parseErr = fmt.Errorf("game summary %d has no box score link", i)
				return false
			}
			link = links.Eq(1)
		}

		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			parseErr = fmt.Errorf("game summary %d has an empty box score link", i)
			return false
		}

		urls = append(urls, base+path.Base(strings.TrimSpace(href)))
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return urls, nil
}

// GameIDFromURL returns the file stem of a box score URL ("202012250BOS").
func GameIDFromURL(gameURL string) string {
	p := gameURL
	if u, err := url.Parse(gameURL); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// ParseGamePage extracts both team tables and the shared metadata of one game.
func ParseGamePage(gameURL string, doc *goquery.Document) (*GamePage, error) {
	gameID := GameIDFromURL(gameURL)
	if len(gameID) < 8 {
		return nil, fmt.Errorf("game id %q from %s is too short to carry a date", gameID, gameURL)
	}

	page := &GamePage{
		URL:    gameURL,
		GameID: gameID,
		Day:    gameID[4:8],
	}

	tables := doc.Find("table[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return boxTableID.MatchString(s.AttrOr("id", ""))
	})
	if tables.Length() != 2 {
		return nil, fmt.Errorf("%s: found %d basic box score tables, want 2", gameID, tables.Length())
	}

	var codes [2]string
	for i := range codes {
		codes[i] = boxTableID.FindStringSubmatch(tables.Eq(i).AttrOr("id", ""))[1]
	}

	for i := range codes {
		team, err := parseTeamTable(tables.Eq(i), codes[i], codes[1-i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", gameID, err)
		}
		page.Teams[i] = *team
	}

	meta := doc.Find("div.scorebox_meta").First().Find("div")
	if meta.Length() < 2 {
		return nil, fmt.Errorf("%s: scorebox metadata has %d entries, want at least 2", gameID, meta.Length())
	}
	page.DateTime = cellText(meta.Eq(0))
	page.Venue = cellText(meta.Eq(1))
	if page.DateTime == "" || page.Venue == "" {
		return nil, fmt.Errorf("%s: scorebox metadata is missing the date or venue", gameID)
	}

	return page, nil
}

// parseTeamTable reads one box-XXX-game-basic table. Row 0 is the group header,
// row 1 the column header, the rest are player or separator rows.
func parseTeamTable(tbl *goquery.Selection, team, opponent string) (*TeamBoxScore, error) {
	rows := tbl.Find("tr")
	if rows.Length() < 2 {
		return nil, fmt.Errorf("table for %s has %d rows, want a header", team, rows.Length())
	}

	box := &TeamBoxScore{Team: team, Opponent: opponent}
	rows.Eq(1).ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
		box.Header = append(box.Header, cellText(cell))
	})
	if len(box.Header) < 2 {
		return nil, fmt.Errorf("table for %s has no statistic columns", team)
	}
	statCols := box.Header[1:]
	box.Header = append(box.Header, ImageColumn)

	var rowErr error
	rows.Slice(2, rows.Length()).EachWithBreak(func(i int, row *goquery.Selection) bool {
		player, err := parsePlayerRow(row, statCols)
		if err != nil {
			rowErr = fmt.Errorf("%s row %d: %w", team, i+2, err)
			return false
		}
		if player == nil {
			return true
		}
		player.Team = team
		player.Opponent = opponent
		box.Rows = append(box.Rows, *player)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return box, nil
}

// parsePlayerRow returns nil for separator and totals rows.
func parsePlayerRow(row *goquery.Selection, statCols []string) (*PlayerRow, error) {
	head := row.ChildrenFiltered("th").First()
	if head.Length() == 0 {
		return nil, fmt.Errorf("row has no header cell")
	}

	name := cellText(head)
	if nonPlayerRows[name] {
		return nil, nil
	}

	imageID, ok := head.Attr("data-append-csv")
	if !ok {
		return nil, fmt.Errorf("player %q has no image id", name)
	}

	var cells []string
	row.ChildrenFiltered("td").Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, cellText(td))
	})

	player := &PlayerRow{
		Name:    name,
		ImageID: imageID,
		Stats:   make(map[string]string, len(statCols)),
	}

	for _, c := range cells {
		if didNotPlayStatuses[c] {
			player.DidNotPlay = true
			break
		}
	}

	if player.DidNotPlay {
		for _, col := range statCols {
			player.Stats[col] = DidNotPlayPlaceholder
		}
		return player, nil
	}

	if len(cells) != len(statCols) {
		return nil, fmt.Errorf("player %q has %d cells, header has %d statistic columns", name, len(cells), len(statCols))
	}
	for j, col := range statCols {
		player.Stats[col] = cells[j]
	}

	return player, nil
}

// cellText is the element text with whitespace runs, line breaks included,
// collapsed to single spaces.
func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
