package store

import "time"

// RecordFieldCount is the number of ordered fields in a serialized player record.
const RecordFieldCount = 16

// PlayerStatRecord is one player's line from the most recent box score scraped for
// them. Values are kept exactly as they appear on the page ("-" for did-not-play,
// empty for a blank percentage).
type PlayerStatRecord struct {
	Player string `json:"player"`

	Minutes        string `json:"mp"`
	ThreeMade      string `json:"three_p"`
	ThreeAttempted string `json:"three_pa"`
	ThreePct       string `json:"three_pct"`
	Rebounds       string `json:"trb"`
	Assists        string `json:"ast"`
	Steals         string `json:"stl"`
	Blocks         string `json:"blk"`
	Points         string `json:"pts"`

	Day      string `json:"day"` // MMDD taken from the game id
	Team     string `json:"team"`
	Opponent string `json:"opp"`
	DateTime string `json:"date_time"`
	Venue    string `json:"venue"`
	ImageID  string `json:"img_id"`
	GameID   string `json:"game_id"`
}

// Fields returns the 16 stored fields in wire order.
func (r *PlayerStatRecord) Fields() []string {
	return []string{
		r.Minutes,
		r.ThreeMade,
		r.ThreeAttempted,
		r.ThreePct,
		r.Rebounds,
		r.Assists,
		r.Steals,
		r.Blocks,
		r.Points,
		r.Day,
		r.Team,
		r.Opponent,
		r.DateTime,
		r.Venue,
		r.ImageID,
		r.GameID,
	}
}

// RecordFromFields builds a record for player from fields in wire order.
func RecordFromFields(player string, fields []string) (*PlayerStatRecord, error) {
	if len(fields) != RecordFieldCount {
		return nil, &FieldCountError{Player: player, Got: len(fields)}
	}

	return &PlayerStatRecord{
		Player:         player,
		Minutes:        fields[0],
		ThreeMade:      fields[1],
		ThreeAttempted: fields[2],
		ThreePct:       fields[3],
		Rebounds:       fields[4],
		Assists:        fields[5],
		Steals:         fields[6],
		Blocks:         fields[7],
		Points:         fields[8],
		Day:            fields[9],
		Team:           fields[10],
		Opponent:       fields[11],
		DateTime:       fields[12],
		Venue:          fields[13],
		ImageID:        fields[14],
		GameID:         fields[15],
	}, nil
}

// StoredPlayer is the raw key/value pair as persisted by a backend.
type StoredPlayer struct {
	Player    string    `json:"player" db:"player"`
	Stats     string    `json:"stats" db:"stats"`
	UpdatedAt time.Time `json:"updated_at,omitempty" db:"updated_at"`
}
