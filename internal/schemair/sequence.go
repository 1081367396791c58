package schemair

// SequenceCommand names a sequence operation.
type SequenceCommand string

const (
	CmdCreateSequence       SequenceCommand = "createSequence"
	CmdAlterSequence        SequenceCommand = "alterSequence"
	CmdDropSequence         SequenceCommand = "dropSequence"
	CmdDropSequenceIfExists SequenceCommand = "dropSequenceIfExists"
)

// SequenceCommands lists every sequence command.
func SequenceCommands() []SequenceCommand {
	return []SequenceCommand{CmdCreateSequence, CmdAlterSequence, CmdDropSequence, CmdDropSequenceIfExists}
}

// SequenceBlueprint describes operations on one standalone sequence.
type SequenceBlueprint struct {
	Name string

	commands   []SequenceCommand
	start      int64
	increment  int64
	restart    bool
	restartSet bool
}

// NewSequence returns a sequence blueprint for name after running fn on it.
func NewSequence(name string, fn func(*SequenceBlueprint)) *SequenceBlueprint {
	s := &SequenceBlueprint{Name: name, increment: 1}
	if fn != nil {
		fn(s)
	}
	return s
}

// Create queues CREATE SEQUENCE.
func (s *SequenceBlueprint) Create() { s.commands = append(s.commands, CmdCreateSequence) }

// Drop queues DROP SEQUENCE.
func (s *SequenceBlueprint) Drop() { s.commands = append(s.commands, CmdDropSequence) }

// DropIfExists queues an existence-checked DROP SEQUENCE.
func (s *SequenceBlueprint) DropIfExists() {
	s.commands = append(s.commands, CmdDropSequenceIfExists)
}

// StartWith sets the initial value used by create.
func (s *SequenceBlueprint) StartWith(v int64) { s.start = v }

// IncrementBy sets the step.
func (s *SequenceBlueprint) IncrementBy(n int64) { s.increment = n }

// Restart requests RESTART without a value.
func (s *SequenceBlueprint) Restart() {
	s.restart = true
	s.restartSet = false
}

// RestartWith requests RESTART WITH v.
func (s *SequenceBlueprint) RestartWith(v int64) {
	s.restart = true
	s.restartSet = true
	s.start = v
}

// Start returns the initial or restart value.
func (s *SequenceBlueprint) Start() int64 { return s.start }

// Increment returns the step.
func (s *SequenceBlueprint) Increment() int64 { return s.increment }

// Restarting reports whether a restart was requested and whether it
// carries a value.
func (s *SequenceBlueprint) Restarting() (restart, withValue bool) {
	return s.restart, s.restartSet
}

func (s *SequenceBlueprint) queued(names ...SequenceCommand) bool {
	for _, c := range s.commands {
		for _, n := range names {
			if c == n {
				return true
			}
		}
	}
	return false
}

// Expand returns the command list, with alterSequence in front when the
// increment differs from 1 or a restart was requested and neither a create
// nor a drop is queued.
func (s *SequenceBlueprint) Expand() []SequenceCommand {
	out := make([]SequenceCommand, 0, len(s.commands)+1)
	if (s.restart || s.increment != 1) &&
		!s.queued(CmdCreateSequence, CmdDropSequence, CmdDropSequenceIfExists) {
		out = append(out, CmdAlterSequence)
	}
	return append(out, s.commands...)
}
