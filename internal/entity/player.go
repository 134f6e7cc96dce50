package entity

// Player is a remote participant holding one colour (seat) in a server-mode game.
type Player struct {
	ID     string `json:"id"`
	Stone  Cell   `json:"stone,omitempty"`
	GameID string `json:"game_id,omitempty"`
}

func (that *Player) InGame() bool {
	return that.GameID != ""
}

// Leave - releases the player's seat.
func (that *Player) Leave() {
	that.GameID = ""
	that.Stone = CellEmpty
}
