package prop

// recordingFrame captures the property names read during one reader
// execution of the construction probe. Each reader run gets its own
// frame so that reads made by recursively computed prerequisites do not
// leak into the consumer's prerequisite list.
type recordingFrame struct {
	names []string
	seen  map[string]bool
}

func newRecordingFrame() *recordingFrame {
	return &recordingFrame{seen: make(map[string]bool)}
}

// record logs a read, keeping first-read order and dropping duplicates.
func (f *recordingFrame) record(name string) {
	if f.seen[name] {
		return
	}
	f.seen[name] = true
	f.names = append(f.names, name)
}

// topFrame returns the recording frame of the reader currently
// executing, or nil outside the construction probe.
func (m *Manager) topFrame() *recordingFrame {
	if len(m.recStack) == 0 {
		return nil
	}
	return m.recStack[len(m.recStack)-1]
}

func (m *Manager) pushFrame() *recordingFrame {
	f := newRecordingFrame()
	m.recStack = append(m.recStack, f)
	return f
}

func (m *Manager) popFrame() {
	m.recStack = m.recStack[:len(m.recStack)-1]
}
