package bref

// ImageColumn is the synthetic trailing header column holding the player image id.
const ImageColumn = "img_id"

// GamePage is one parsed box score page
type GamePage struct {
	URL      string
	GameID   string // file stem, e.g. 202012250BOS
	Day      string // MMDD
	DateTime string
	Venue    string
	Teams    [2]TeamBoxScore
}

// TeamBoxScore is one team's basic box score table
type TeamBoxScore struct {
	Team     string
	Opponent string
	// Header holds the column texts of the table, name column first, with
	// ImageColumn appended.
	Header []string
	Rows   []PlayerRow
}

// PlayerRow is a single player line of a team table
type PlayerRow struct {
	Name       string
	ImageID    string
	Team       string
	Opponent   string
	DidNotPlay bool
	// Stats maps header column -> cell text for every statistic column.
	Stats map[string]string
}
