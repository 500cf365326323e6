package flowtest

// ValueStore holds the variables of one flow run: the flow-level
// declarations plus everything extracted from responses so far.
// Bindings accumulate monotonically; an extraction failure never
// removes a previously bound variable. A store is owned by exactly
// one Runner invocation and is never shared across runs.
type ValueStore struct {
	values map[string]any
}

func NewValueStore() *ValueStore {
	return &ValueStore{
		values: make(map[string]any),
	}
}

// Seed copies initial bindings into the store. Later Seed calls
// overwrite earlier bindings for the same name.
func (s *ValueStore) Seed(vars map[string]any) {
	for k, v := range vars {
		s.values[k] = v
	}
}

func (s *ValueStore) Set(key string, value any) {
	s.values[key] = value
}

func (s *ValueStore) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *ValueStore) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// All returns the backing map. Callers must treat it as read-only;
// it is handed to the expression evaluator as its environment.
func (s *ValueStore) All() map[string]any {
	return s.values
}

func (s *ValueStore) Len() int {
	return len(s.values)
}
