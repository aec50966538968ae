package game

// CheckWinner reports the winning faction, or FactionNone if play continues.
// Villagers win once no werewolf is alive; werewolves win once they are at
// least as many as everyone else alive.
func CheckWinner(players []Player) Faction {
	werewolves := len(Werewolves(players))
	others := len(Villagers(players))

	if werewolves == 0 {
		return FactionVillagers
	}
	if werewolves >= others {
		return FactionWerewolves
	}
	return FactionNone
}
