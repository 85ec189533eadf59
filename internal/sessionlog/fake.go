package sessionlog

import "context"

// FakeStore records appended logs for test assertions.
type FakeStore struct {
	// Logs contains every appended log, in order.
	Logs []Log

	// AppendError, if set, will be returned by Append (the log is not kept).
	AppendError error

	// ListError, if set, will be returned by List.
	ListError error
}

// NewFakeStore creates a FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

// Append records the log.
func (f *FakeStore) Append(_ context.Context, l Log) error {
	if f.AppendError != nil {
		return f.AppendError
	}
	f.Logs = append(f.Logs, l)
	return nil
}

// Last returns the most recent log and whether there was one.
func (f *FakeStore) Last() (Log, bool) {
	if len(f.Logs) == 0 {
		return Log{}, false
	}
	return f.Logs[len(f.Logs)-1], true
}

// List returns stored logs oldest first; limit > 0 keeps only the newest
// limit entries, matching SQLiteStore.
func (f *FakeStore) List(_ context.Context, limit int) ([]Log, error) {
	if f.ListError != nil {
		return nil, f.ListError
	}
	logs := f.Logs
	if limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	return append([]Log(nil), logs...), nil
}
