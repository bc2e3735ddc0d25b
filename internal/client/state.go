package client

// Phase is where a request stands. The zero value is Idle.
type Phase int

const (
	Idle Phase = iota
	InFlight
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case InFlight:
		return "loading"
	case Succeeded:
		return "ok"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// RequestState tracks one kind of request. A new Start keeps the last
// successful value visible until the next result lands.
type RequestState[T any] struct {
	Phase Phase
	Value T
	Err   error
	seq   int
}

func (s *RequestState[T]) Start() int {
	s.seq++
	s.Phase = InFlight
	s.Err = nil
	return s.seq
}

// Succeed records v unless a newer request was started since ticket.
// It reports whether the result was applied.
func (s *RequestState[T]) Succeed(ticket int, v T) bool {
	if ticket != s.seq {
		return false
	}
	s.Phase = Succeeded
	s.Value = v
	s.Err = nil
	return true
}

// Fail records err unless a newer request was started since ticket.
func (s *RequestState[T]) Fail(ticket int, err error) bool {
	if ticket != s.seq {
		return false
	}
	s.Phase = Failed
	s.Err = err
	return true
}

func (s *RequestState[T]) Loading() bool {
	return s.Phase == InFlight
}
