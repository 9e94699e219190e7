package net

// Snapshot is the JSON frame spectators receive.
type Snapshot struct {
	Frame    uint64  `json:"frame"`
	Phase    string  `json:"phase"`
	Section  int     `json:"section"`
	Live     int     `json:"live"`
	Cooldown float64 `json:"cooldown"`
	PlayerX  float64 `json:"player_x"`
	Clouds   int     `json:"clouds"`
	GameTime float64 `json:"game_time"`
	Complete bool    `json:"complete"`
}
