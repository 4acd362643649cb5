package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded engine decision.
type SimLogEntry struct {
	Turn     int
	Unit     string  // label e.g. "L0", "R3", or "--" for battle-wide events
	Team     string  // "left", "right", or "--"
	Category string  // battle, target, move, path, combat, outcome
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=004] L0   move      step             (2,0) → (3,0)
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Turn, e.Unit, e.Category, e.Key, e.Value)
}

// SimLog is the battle history: an unbounded, machine-readable record of
// every targeting, movement, combat and outcome decision.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-unit targeting entries
// are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(turn int, unit, team, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Turn:     turn,
		Unit:     unit,
		Team:     team,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(turn int, unit, team, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(turn, unit, team, category, key, value, numVal)
}

func (sl *SimLog) addUnit(turn int, u *UnitRecord, category, key, value string, numVal float64) {
	sl.Add(turn, u.Label, u.Team.String(), category, key, value, numVal)
}

func (sl *SimLog) addBattle(turn int, category, key, value string, numVal float64) {
	sl.Add(turn, "--", "--", category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterUnit returns entries for a specific unit label.
func (sl *SimLog) FilterUnit(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Unit == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTurnRange returns entries within [fromTurn, toTurn] inclusive.
func (sl *SimLog) FilterTurnRange(fromTurn, toTurn int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Turn >= fromTurn && e.Turn <= toTurn {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable account of the battle so far.
func (sl *SimLog) Summary(turn int, units []UnitRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", turn)

	for _, team := range []Team{TeamLeft, TeamRight} {
		alive, hp, maxHP := 0, 0, 0
		for _, u := range units {
			if u.Team != team {
				continue
			}
			maxHP += u.MaxHealth
			if u.Alive {
				alive++
				hp += u.Health
			}
		}
		fmt.Fprintf(&sb, "%-5s alive=%d  hp=%d/%d\n", team, alive, hp, maxHP)
	}

	fmt.Fprintf(&sb, "Moves=%d  Attacks=%d  Kills=%d  Blocked=%d\n",
		sl.CountCategory("move", "step"),
		sl.CountCategory("combat", "hit"),
		sl.CountCategory("combat", "kill"),
		sl.CountCategory("path", "blocked"))

	if e, ok := sl.LastOf("outcome", "ended"); ok {
		fmt.Fprintf(&sb, "Outcome: %s\n", e.Value)
	}
	return sb.String()
}
