package listing

import (
	"math"

	"github.com/dossiers/dossiers/internal/domain/todo"
)

type Stats struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// CompletionStats counts done todos. Percentage is rounded and 0 when there
// are no todos.
func CompletionStats(todos []*todo.Todo) Stats {
	s := Stats{Total: len(todos)}
	for _, t := range todos {
		if t.Completed {
			s.Completed++
		}
	}
	if s.Total > 0 {
		s.Percentage = int(math.Round(float64(s.Completed) * 100 / float64(s.Total)))
	}
	return s
}
