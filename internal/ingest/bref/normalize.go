package bref

import (
	"fmt"

	"github.com/fortuna/courtside/internal/store"
)

// Box score header texts projected into a stored record, in record order.
const (
	colMinutes        = "MP"
	colThreeMade      = "3P"
	colThreeAttempted = "3PA"
	colThreePct       = "3P%"
	colRebounds       = "TRB"
	colAssists        = "AST"
	colSteals         = "STL"
	colBlocks         = "BLK"
	colPoints         = "PTS"
)

// ProjectedColumns lists the statistic columns a record keeps.
var ProjectedColumns = []string{
	colMinutes, colThreeMade, colThreeAttempted, colThreePct,
	colRebounds, colAssists, colSteals, colBlocks, colPoints,
}

// NormalizeGame flattens every player row of both teams into stored records.
func NormalizeGame(page *GamePage) ([]*store.PlayerStatRecord, error) {
	records := make([]*store.PlayerStatRecord, 0, len(page.Teams[0].Rows)+len(page.Teams[1].Rows))
	for _, team := range page.Teams {
		for _, row := range team.Rows {
			rec, err := NormalizeRow(page, row)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", page.GameID, err)
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

// NormalizeRow projects one player row plus the game metadata.
func NormalizeRow(page *GamePage, row PlayerRow) (*store.PlayerStatRecord, error) {
	stat := func(col string) (string, error) {
		v, ok := row.Stats[col]
		if !ok {
			return "", fmt.Errorf("player %q: box score has no %s column", row.Name, col)
		}
		return v, nil
	}

	values := make([]string, len(ProjectedColumns))
	for i, col := range ProjectedColumns {
		v, err := stat(col)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	return &store.PlayerStatRecord{
		Player:         row.Name,
		Minutes:        values[0],
		ThreeMade:      values[1],
		ThreeAttempted: values[2],
		ThreePct:       values[3],
		Rebounds:       values[4],
		Assists:        values[5],
		Steals:         values[6],
		Blocks:         values[7],
		Points:         values[8],
		Day:            page.Day,
		Team:           row.Team,
		Opponent:       row.Opponent,
		DateTime:       page.DateTime,
		Venue:          page.Venue,
		ImageID:        row.ImageID,
		GameID:         page.GameID,
	}, nil
}
