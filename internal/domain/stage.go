package domain

// Stage is a step of the per-video pipeline.
type Stage int

const (
	StageExtracting Stage = iota
	StageTranscribing
	StageSelectingModel
	StageGenerating
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageExtracting:
		return "extracting"
	case StageTranscribing:
		return "transcribing"
	case StageSelectingModel:
		return "selecting_model"
	case StageGenerating:
		return "generating"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}
