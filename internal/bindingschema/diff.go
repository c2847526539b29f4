package bindingschema

// RenamePair is a best-effort guess that an old action was renamed to a new
// one within the same actionmap, based on shared default-binding tokens.
type RenamePair struct {
	ActionMap string
	OldName   string
	NewName   string
}

// DiffReport is the schema-change warning payload (spec.md §4.9 step 6).
type DiffReport struct {
	Added   []string // "actionmap/action"
	Removed []string
	Renamed []RenamePair
}

// Diff compares an old and new schema and reports added actions, removed
// actions, and best-effort rename pairs (by token overlap within the same
// actionmap). Used to warn the user when the simulator's build id changes.
func Diff(old, new Schema) DiffReport {
	oldByMap := actionsByMap(old)
	newByMap := actionsByMap(new)

	var report DiffReport
	removedByMap := map[string][]Action{}
	addedByMap := map[string][]Action{}

	for mapName, oldActions := range oldByMap {
		newActions := newByMap[mapName]
		newSet := actionSet(newActions)
		for _, a := range oldActions {
			if !newSet[a.Name] {
				report.Removed = append(report.Removed, mapName+"/"+a.Name)
				removedByMap[mapName] = append(removedByMap[mapName], a)
			}
		}
	}
	for mapName, newActions := range newByMap {
		oldActions := oldByMap[mapName]
		oldSet := actionSet(oldActions)
		for _, a := range newActions {
			if !oldSet[a.Name] {
				report.Added = append(report.Added, mapName+"/"+a.Name)
				addedByMap[mapName] = append(addedByMap[mapName], a)
			}
		}
	}

	for mapName, removed := range removedByMap {
		added := addedByMap[mapName]
		for _, r := range removed {
			best, bestScore := "", 0
			for _, a := range added {
				if score := tokenOverlap(r, a); score > bestScore {
					best, bestScore = a.Name, score
				}
			}
			if bestScore > 0 {
				report.Renamed = append(report.Renamed, RenamePair{ActionMap: mapName, OldName: r.Name, NewName: best})
			}
		}
	}

	return report
}

func actionsByMap(s Schema) map[string][]Action {
	out := make(map[string][]Action, len(s.ActionMaps))
	for _, am := range s.ActionMaps {
		out[am.Name] = am.Actions
	}
	return out
}

func actionSet(actions []Action) map[string]bool {
	out := make(map[string]bool, len(actions))
	for _, a := range actions {
		out[a.Name] = true
	}
	return out
}

func tokenOverlap(a, b Action) int {
	tokens := make(map[string]bool, len(a.Bindings))
	for _, bd := range a.Bindings {
		tokens[bd.Token] = true
	}
	score := 0
	for _, bd := range b.Bindings {
		if tokens[bd.Token] {
			score++
		}
	}
	return score
}
