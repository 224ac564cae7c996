package app

// TrackedLocks reports how many per-patient locks the service holds.
func (s *RiskService) TrackedLocks() int {
	n := 0
	s.locks.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
