package classifier

// Tally is the vote count for one event label.
type Tally struct {
	Event string `json:"event"`
	Count int    `json:"count"`
}

// Vote picks the most frequent event among conds. Ties go to the label seen
// first, and the returned condition is the first one carrying the winning
// label. An empty input yields NoEvent.
func Vote(conds []Condition) (Condition, []Tally) {
	if len(conds) == 0 {
		return NoEvent, nil
	}

	index := make(map[string]int)
	tallies := make([]Tally, 0, 4)
	firstSeen := make([]Condition, 0, 4)

	for _, c := range conds {
		i, ok := index[c.Event]
		if !ok {
			i = len(tallies)
			index[c.Event] = i
			tallies = append(tallies, Tally{Event: c.Event})
			firstSeen = append(firstSeen, c)
		}
		tallies[i].Count++
	}

	best := 0
	for i := 1; i < len(tallies); i++ {
		if tallies[i].Count > tallies[best].Count {
			best = i
		}
	}

	return firstSeen[best], tallies
}
