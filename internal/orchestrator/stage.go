package orchestrator

// Stage is the progress of one library through bundling.
type Stage int

const (
	StageNotStarted Stage = iota
	StageLegacyBuilding
	StageLegacyDone
	StageModernBuilding
	StageModernDone
	StageManifestEmitted
	StageComplete
	StageFailed
)

var stageNames = map[Stage]string{
	StageNotStarted:      "not started",
	StageLegacyBuilding:  "building legacy bundle",
	StageLegacyDone:      "legacy bundle done",
	StageModernBuilding:  "building modern bundle",
	StageModernDone:      "modern bundle done",
	StageManifestEmitted: "manifest emitted",
	StageComplete:        "complete",
	StageFailed:          "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// building returns the in-progress stage of a pass.
func building(legacy bool) Stage {
	if legacy {
		return StageLegacyBuilding
	}
	return StageModernBuilding
}

// done returns the completed stage of a pass.
func done(legacy bool) Stage {
	if legacy {
		return StageLegacyDone
	}
	return StageModernDone
}
