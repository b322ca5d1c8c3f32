package pass

// Pass variants implement the hooks they need. The base pass runs its own
// logic first and then calls the hook, if the variant provides it.

type ResetHook interface {
	ResetInternal()
}

// BuildHook runs after owned attachments are created and before the
// template's output connections are processed.
type BuildHook interface {
	BuildAttachmentsInternal()
}

type BuildFinishedHook interface {
	OnBuildAttachmentsFinishedInternal()
}

// FrameBeginHook runs once every attachment of the pass is registered in
// the attachment database.
type FrameBeginHook interface {
	FrameBeginInternal(params FramePrepareParams)
}

type FrameEndHook interface {
	FrameEndInternal()
}

type TimestampReporter interface {
	TimestampResultInternal() TimestampResult
}

type StatisticsReporter interface {
	PipelineStatisticsResultInternal() PipelineStatisticsResult
}

type DrawListProvider interface {
	DrawListTagInternal() string
	PipelineViewTagInternal() string
}
