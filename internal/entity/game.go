package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/threetoe-backend/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
)

// MaxPieces is how many live pieces a player keeps before the oldest one vanishes.
const MaxPieces = 3

// BoardSize is the side length of the grid.
const BoardSize = 3

type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	PlayerTie Mark = "-"

	EmptyCell Mark = ""
)

// Opponent returns the other player's mark.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

type Outcome int

const (
	OutcomeOngoing Outcome = iota
	OutcomeWon
	OutcomeDrawn
)

type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Cell) Valid() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

func (that Cell) String() string {
	return fmt.Sprintf("%d,%d", that.Row, that.Col)
}

type Line [3]Cell

// WinLines lists every winning line in scan order: rows, columns, diagonals.
var WinLines = [8]Line{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Transition is the learner's last decision in this game, waiting for its reward.
type Transition struct {
	State  string `json:"state"`
	Action Cell   `json:"action"`
}

type Game struct {
	ID          string                     `json:"id"`
	Board       [BoardSize][BoardSize]Mark `json:"board"`
	Turn        Mark                       `json:"current_player"`
	MovesX      []Cell                     `json:"moves_x"`
	MovesO      []Cell                     `json:"moves_o"`
	Winner      Mark                       `json:"winner,omitempty"`
	WinningLine *Line                      `json:"winning_line,omitempty"`
	AIEnabled   bool                       `json:"is_ai_game"`
	Difficulty  Difficulty                 `json:"difficulty,omitempty"`
	AIMark      Mark                       `json:"ai_mark,omitempty"`
	Positions   map[string]int             `json:"positions,omitempty"`
	Pending     *Transition                `json:"pending,omitempty"`
}

func NewGame(id string, aiEnabled bool, difficulty Difficulty) *Game {
	game := &Game{
		ID:         id,
		Turn:       PlayerX,
		AIEnabled:  aiEnabled,
		Difficulty: difficulty,
	}

	// the human always opens, the computer answers
	if aiEnabled {
		game.AIMark = PlayerO
	}

	return game
}

// Place puts the current player's piece on cell. A fourth piece evicts the
// player's oldest one after the new piece is down, then the winner is checked.
func (that *Game) Place(cell Cell) error {
	if !cell.Valid() {
		return fmt.Errorf("%w: cell %s", apperror.ErrInvalidCoordinate, cell)
	}

	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if that.Board[cell.Row][cell.Col] != EmptyCell {
		return fmt.Errorf("%w: cell %s", apperror.ErrCellOccupied, cell)
	}

	that.Board[cell.Row][cell.Col] = that.Turn

	moves := that.movesOf(that.Turn)
	*moves = append(*moves, cell)

	if len(*moves) > MaxPieces {
		oldest := (*moves)[0]
		*moves = append([]Cell(nil), (*moves)[1:]...)
		that.Board[oldest.Row][oldest.Col] = EmptyCell
	}

	that.updateGameState()

	return nil
}

// Undo clears a cell. It does not restore evicted pieces or history, so
// simulations should run on a Clone instead.
func (that *Game) Undo(cell Cell) {
	if !cell.Valid() {
		return
	}

	that.Board[cell.Row][cell.Col] = EmptyCell
}

// AvailableMoves returns the empty cells in row-major order.
func (that *Game) AvailableMoves() []Cell {
	moves := make([]Cell, 0, BoardSize*BoardSize)
	for row := range BoardSize {
		for col := range BoardSize {
			if that.Board[row][col] == EmptyCell {
				moves = append(moves, Cell{Row: row, Col: col})
			}
		}
	}

	return moves
}

// CheckWinner scans rows, columns and diagonals and reports the first complete line.
func (that *Game) CheckWinner() (Mark, Line, bool) {
	for _, line := range WinLines {
		a := that.Board[line[0].Row][line[0].Col]
		b := that.Board[line[1].Row][line[1].Col]
		c := that.Board[line[2].Row][line[2].Col]

		if a != EmptyCell && a == b && b == c {
			return a, line, true
		}
	}

	return EmptyCell, Line{}, false
}

func (that *Game) Outcome() Outcome {
	switch that.Winner {
	case PlayerX, PlayerO:
		return OutcomeWon
	case PlayerTie:
		return OutcomeDrawn
	}

	if len(that.AvailableMoves()) == 0 {
		return OutcomeDrawn
	}

	return OutcomeOngoing
}

func (that *Game) Status() string {
	if that.IsFinished() {
		return StatusFinished
	}

	return StatusOngoing
}

func (that *Game) IsFinished() bool {
	return that.Winner != EmptyCell
}

func (that *Game) IsDraw() bool {
	return that.Winner == PlayerTie
}

// MarkDraw ends an undecided game without a winner.
func (that *Game) MarkDraw() {
	if that.IsFinished() {
		return
	}

	that.Winner = PlayerTie
}

// Reset clears the board and keeps the session settings.
func (that *Game) Reset() {
	that.Board = [BoardSize][BoardSize]Mark{}
	that.Turn = PlayerX
	that.MovesX = nil
	that.MovesO = nil
	that.Winner = EmptyCell
	that.WinningLine = nil
	that.Positions = nil
	that.Pending = nil
}

// Clone copies the playing state. Session bookkeeping stays with the original.
func (that *Game) Clone() *Game {
	clone := &Game{
		ID:         that.ID,
		Board:      that.Board,
		Turn:       that.Turn,
		MovesX:     append([]Cell(nil), that.MovesX...),
		MovesO:     append([]Cell(nil), that.MovesO...),
		Winner:     that.Winner,
		AIEnabled:  that.AIEnabled,
		Difficulty: that.Difficulty,
		AIMark:     that.AIMark,
	}

	if that.WinningLine != nil {
		line := *that.WinningLine
		clone.WinningLine = &line
	}

	return clone
}

// Key serializes everything that decides how the game continues: both
// histories oldest-first (which fixes the board and the eviction order) and
// the side to move.
func (that *Game) Key() string {
	var sb strings.Builder

	sb.WriteString(string(that.Turn))
	sb.WriteByte('|')
	writeMoves(&sb, that.MovesX)
	sb.WriteByte('|')
	writeMoves(&sb, that.MovesO)

	return sb.String()
}

// PieceCount is the combined history length of both players.
func (that *Game) PieceCount() int {
	return len(that.MovesX) + len(that.MovesO)
}

func (that *Game) Moves(player Mark) []Cell {
	switch player {
	case PlayerX:
		return that.MovesX
	case PlayerO:
		return that.MovesO
	default:
		return nil
	}
}

// IsAITurn reports whether the computer opponent should move now.
func (that *Game) IsAITurn() bool {
	return that.AIEnabled && !that.IsFinished() && that.Turn == that.AIMark
}

func (that *Game) movesOf(player Mark) *[]Cell {
	if player == PlayerX {
		return &that.MovesX
	}

	return &that.MovesO
}

func (that *Game) updateGameState() {
	if winner, line, ok := that.CheckWinner(); ok {
		that.Winner = winner
		that.WinningLine = &line
		return
	}

	if len(that.AvailableMoves()) == 0 {
		that.Winner = PlayerTie
		return
	}

	that.Turn = that.Turn.Opponent()
}

func writeMoves(sb *strings.Builder, moves []Cell) {
	for _, move := range moves {
		sb.WriteByte(byte('0' + move.Row*BoardSize + move.Col))
	}
}
