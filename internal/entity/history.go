package entity

// FromHistory rebuilds a game from both players' histories, oldest first.
func FromHistory(movesX, movesO []Cell, turn Mark) *Game {
	game := NewGame("", false, "")
	game.Turn = turn
	game.MovesX = append([]Cell(nil), movesX...)
	game.MovesO = append([]Cell(nil), movesO...)

	for _, cell := range movesX {
		game.Board[cell.Row][cell.Col] = PlayerX
	}
	for _, cell := range movesO {
		game.Board[cell.Row][cell.Col] = PlayerO
	}

	if winner, line, ok := game.CheckWinner(); ok {
		game.Winner = winner
		game.WinningLine = &line
	}

	return game
}
