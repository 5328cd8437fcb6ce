package entity

type Player struct {
	ID     string `json:"id"`
	Mark   string `json:"mark,omitempty"`
	GameID string `json:"game_id,omitempty"`
	Bot    bool   `json:"bot,omitempty"`
}

// NewBotPlayer - builds the computer's seat for a game. Bot players live
// inside the game session only and are never stored on their own.
func NewBotPlayer(gameID, mark string) *Player {
	return &Player{
		ID:     "bot:" + gameID,
		Mark:   mark,
		GameID: gameID,
		Bot:    true,
	}
}

func (that *Player) IsBot() bool {
	return that.Bot
}
