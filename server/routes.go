package server

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribe/component"
)

// systemPaths are listed after the API and tagged "(system)".
var systemPaths = map[string]bool{
	"/health":       true,
	"/health/ready": true,
	"/info":         true,
}

var methodRank = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

func rank(method string) int {
	if i := slices.Index(methodRank, method); i >= 0 {
		return i
	}
	return len(methodRank)
}

func compareRoutes(a, b gin.RouteInfo) int {
	if sa, sb := systemPaths[a.Path], systemPaths[b.Path]; sa != sb {
		if sb {
			return -1
		}
		return 1
	}
	return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(rank(a.Method), rank(b.Method)))
}

// Routes lists the engine's routes for the startup summary: API routes by
// path, then system routes, methods GET first.
func (s *Server) Routes() []component.Route {
	infos := s.engine.Routes()
	slices.SortFunc(infos, compareRoutes)

	routes := make([]component.Route, len(infos))
	for i, r := range infos {
		handler := formatHandlerName(r.Handler)
		if systemPaths[r.Path] {
			handler += " (system)"
		}
		routes[i] = component.Route{Method: r.Method, Path: r.Path, Handler: handler}
	}
	return routes
}

// formatHandlerName shortens a Gin handler name:
//
//	github.com/kbukum/scribe/note.(*Handler).Create-fm  -> Handler.Create
//	github.com/kbukum/scribe/server/endpoint.Readiness.func1 -> readiness
func formatHandlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	name = name[strings.LastIndex(name, "/")+1:]
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	if strings.Contains(name, ".func") {
		// A closure is named after the innermost non-closure function.
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				return strings.ToLower(parts[i])
			}
		}
	}
	if len(parts) > 1 && strings.ToLower(parts[0]) == parts[0] {
		return strings.Join(parts[1:], ".")
	}
	return name
}
