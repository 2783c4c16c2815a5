package ceiling

// Manager runs critical sections against a Register.
type Manager struct {
	register *Register
	release  func()
}

// NewManager creates a manager. release, when not nil, is invoked after a
// critical section returns normally and the register has been restored; the
// scheduler uses it as a preemption point.
func NewManager(register *Register, release func()) *Manager {
	return &Manager{register: register, release: release}
}

// Register returns the managed register.
func (m *Manager) Register() *Register { return m.register }

// Lock raises the register to ceiling, runs body and restores the previous
// value on every exit path, including an error result or a panic.
func (m *Manager) Lock(ceiling int, body func() error) error {
	prev := m.register.Raise(ceiling)
	returned := false
	defer func() {
		m.register.Restore(prev)
		if returned && m.release != nil {
			m.release()
		}
	}()
	err := body()
	returned = true
	return err
}
