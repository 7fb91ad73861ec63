package domain

// FillerTask pads a catalog up to the length the table needs. It is never
// counted as a real task.
const FillerTask = "Free Space"

// largeTableSize is the pre-session headcount that calls for extra chairs.
const largeTableSize = 6

const extraChairsTask = "Bring in extra chairs if needed"

// Catalogs holds the unpadded task labels for each phase.
type Catalogs struct {
	Pre    []string
	During []string
	Post   []string
}

// Labels returns the catalog for phase.
func (c Catalogs) Labels(phase Phase) []string {
	switch phase {
	case PhasePre:
		return c.Pre
	case PhaseDuring:
		return c.During
	case PhasePost:
		return c.Post
	default:
		return nil
	}
}

// BuildCatalogs returns fresh catalogs for roster. The pre-session catalog
// depends on how many participants arrive on time, so catalogs are never
// shared between runs.
func BuildCatalogs(roster Roster) Catalogs {
	return Catalogs{
		Pre:    PreSessionCatalog(len(roster.Pre)),
		During: DuringSessionCatalog(),
		Post:   PostSessionCatalog(),
	}
}

// PreSessionCatalog returns the pre-session labels for the given number of
// on-time participants.
func PreSessionCatalog(participants int) []string {
	labels := []string{
		"Get Dice Trays",
		"Put Initiative name tags on tracker",
		"Wipe TV",
		"Recap",
	}
	if participants >= largeTableSize {
		labels = append(labels, extraChairsTask)
	}
	return labels
}

// DuringSessionCatalog returns the roles held while play is running.
func DuringSessionCatalog() []string {
	return []string{
		"Calendar Master",
		"Loot Master",
		"Lore Master",
		"Battle Master",
		"Rule Master",
		"Inspiration Master",
	}
}

// PostSessionCatalog returns the cleanup chores done after play ends.
func PostSessionCatalog() []string {
	return []string{
		"Food, Drink, and Trash Clear Check",
		"TV(s) off and windows shut and locked",
		"Dice Trays and Books put away",
		"Clean Initiative tracker and put away name labels",
		"Chairs pushed in and extra chairs put back",
		"Post Discord Reminders",
		"Ensure no duplicate snacks for next session",
	}
}
