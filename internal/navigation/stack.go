package navigation

import "strconv"

// Route names.
const (
	RouteHome     = "home"
	RouteFilmInfo = "film_info"
)

// Route is one entry of the navigation stack.
type Route struct {
	Name   string
	FilmID *int64
}

// Home is the start route.
func Home() Route { return Route{Name: RouteHome} }

// FilmInfo is the full-screen detail route for id.
func FilmInfo(id int64) Route { return Route{Name: RouteFilmInfo, FilmID: &id} }

// IsFilmInfo reports whether r is a detail route.
func (r Route) IsFilmInfo() bool { return r.Name == RouteFilmInfo }

// String renders the route like a path, e.g. "film_info/301".
func (r Route) String() string {
	if r.FilmID == nil {
		return r.Name
	}
	return r.Name + "/" + strconv.FormatInt(*r.FilmID, 10)
}

// Stack is a navigation back stack. The start route is never popped.
type Stack struct {
	start Route
	stack []Route
}

// NewStack creates a stack holding only start.
func NewStack(start Route) *Stack {
	return &Stack{start: start}
}

// Push makes r the active route.
func (s *Stack) Push(r Route) {
	s.stack = append(s.stack, r)
}

// Pop removes the active route unless it is the start route. It reports the
// removed route and whether anything was popped.
func (s *Stack) Pop() (Route, bool) {
	if len(s.stack) == 0 {
		return Route{}, false
	}
	removed := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return removed, true
}

// PopToStart removes every route above the start route.
func (s *Stack) PopToStart() {
	s.stack = s.stack[:0]
}

// Active returns the route currently shown.
func (s *Stack) Active() Route {
	if len(s.stack) == 0 {
		return s.start
	}
	return s.stack[len(s.stack)-1]
}

// Depth returns the number of routes above the start route.
func (s *Stack) Depth() int {
	return len(s.stack)
}
