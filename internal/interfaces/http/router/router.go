package router

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts its routes on the versioned API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

type RouterOption func(*Router)

func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every registered group. Call it once, after Register.
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, reg := range r.registrars {
		reg.RegisterRoutes(api)
	}
}

// Routes lists "METHOD /path" for every mounted route, sorted
func (r *Router) Routes() []string {
	var out []string
	for _, info := range r.engine.Routes() {
		out = append(out, info.Method+" "+info.Path)
	}
	slices.Sort(out)
	return out
}

// Resource is the route table of one API resource. Nested tables share
// the parent's prefix.
type Resource struct {
	prefix string
	routes []route
	nested []*Resource
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func NewResource(prefix string) *Resource {
	return &Resource{prefix: prefix}
}

func (res *Resource) add(method, path string, handlers []gin.HandlerFunc) *Resource {
	res.routes = append(res.routes, route{method: method, path: path, handlers: handlers})
	return res
}

func (res *Resource) GET(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.add(http.MethodGet, path, handlers)
}

func (res *Resource) POST(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.add(http.MethodPost, path, handlers)
}

func (res *Resource) PUT(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.add(http.MethodPut, path, handlers)
}

func (res *Resource) DELETE(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.add(http.MethodDelete, path, handlers)
}

// Nest returns a child table mounted at prefix below this one
func (res *Resource) Nest(prefix string) *Resource {
	child := NewResource(prefix)
	res.nested = append(res.nested, child)
	return child
}

func (res *Resource) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(res.prefix)
	for _, rt := range res.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
	}
	for _, child := range res.nested {
		child.RegisterRoutes(group)
	}
}
