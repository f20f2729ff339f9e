package supervisor

import "context"

// Handle is a scoped fleet handle: in a language without deterministic
// destruction, the construct-increments/destroy-decrements reference
// counting idiom is replaced with an explicit Acquire/Release pair. The
// last Release brings the fleet down; Acquire while already running is a
// no-op beyond bumping the count.
type Handle struct {
	sup *Supervisor
}

// Acquire increments the supervisor's instance count, starting the fleet
// on the transition from zero to one, and returns a Handle whose Release
// must be called exactly once.
func Acquire(ctx context.Context, s *Supervisor) (*Handle, error) {
	s.mu.Lock()
	s.refs++
	first := s.refs == 1
	s.mu.Unlock()

	if first {
		if err := s.Start(ctx); err != nil {
			s.mu.Lock()
			s.refs--
			s.mu.Unlock()
			return nil, err
		}
	}
	return &Handle{sup: s}, nil
}

// Release decrements the supervisor's instance count, stopping the fleet
// when it reaches zero. Calling Release more than once on the same Handle
// has no further effect beyond the first call.
func (h *Handle) Release() {
	if h == nil || h.sup == nil {
		return
	}
	s := h.sup
	h.sup = nil

	s.mu.Lock()
	s.refs--
	last := s.refs <= 0
	s.mu.Unlock()

	if last {
		s.Stop()
	}
}
