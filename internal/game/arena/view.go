package arena

// PlayerView is the feed-facing slice of the player's state.
type PlayerView struct {
	State     string  `json:"state"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"max_health"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Facing    int     `json:"facing"`
}

// GuardView is the feed-facing slice of one guard's state.
type GuardView struct {
	ID        string  `json:"id"`
	Archetype string  `json:"archetype"`
	State     string  `json:"state"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"max_health"`
	Phase     int     `json:"phase,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// View is one tick's observable snapshot, safe to hand to feeds and
// recorders after the tick returns.
type View struct {
	Tick         uint64      `json:"tick"`
	Elapsed      float64     `json:"elapsed"`
	Player       PlayerView  `json:"player"`
	Guards       []GuardView `json:"guards"`
	PlayerDeaths int         `json:"player_deaths"`
}

// Snapshot copies the observable state out of the arena.
func (a *Arena) Snapshot() View {
	v := View{
		Tick:         a.tick,
		Elapsed:      a.elapsed,
		PlayerDeaths: a.playerDeaths,
		Player: PlayerView{
			State:     string(a.player.State()),
			Health:    a.player.Health(),
			MaxHealth: a.player.MaxHealth(),
			X:         a.player.Position().X,
			Y:         a.player.Position().Y,
			Facing:    int(a.player.Facing()),
		},
	}
	for _, g := range a.guards {
		v.Guards = append(v.Guards, GuardView{
			ID:        g.ID(),
			Archetype: g.Archetype().ID,
			State:     string(g.State()),
			Health:    g.Health(),
			MaxHealth: g.MaxHealth(),
			Phase:     g.Phase(),
			X:         g.Position().X,
			Y:         g.Position().Y,
		})
	}
	return v
}
