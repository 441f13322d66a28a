package view

import "rickmorty/viewer/internal/domain"

type Screen int

const (
	ListScreen Screen = iota
	DetailScreen
)

func (s Screen) String() string {
	switch s {
	case ListScreen:
		return "list"
	case DetailScreen:
		return "detail"
	default:
		return "unknown"
	}
}

// ViewState is a point-in-time copy of the controller state. Mutating it has no
// effect on the controller.
type ViewState struct {
	Session  string             `json:"session"`
	Items    []domain.Character `json:"items"`
	Selected *domain.Character  `json:"selected"`
	Cursor   domain.Cursor      `json:"cursor"`
	Loading  bool               `json:"loading"`
}

func (s ViewState) Screen() Screen {
	if s.Selected != nil {
		return DetailScreen
	}
	return ListScreen
}

// CanLoadMore reports whether the load-more control should be offered.
func (s ViewState) CanLoadMore() bool {
	return !s.Cursor.IsNone() && !s.Loading
}
