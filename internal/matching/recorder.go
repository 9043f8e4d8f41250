package matching

// NopEventRecorder discards all events. Used when no broker is configured.
type NopEventRecorder struct{}

func (NopEventRecorder) RecordMatch(userID, partnerID string, score int) {}

func (NopEventRecorder) RecordTimeout(userID string) {}

func (NopEventRecorder) RecordCallEnd(userID, partnerID, reason string) {}
