package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tomeducation/admin/core/catalog"
	"github.com/tomeducation/admin/core/resource"
)

// ResourceEndpoints binds one resource's conventional endpoints:
//
//	GET    /{r}/list
//	GET    /{r}/get?id=
//	POST   /{r}/create
//	PUT    /{r}/update?id=
//	DELETE /{r}/delete?id=   (or /{r}/delete/{id} path-style)
//
// It satisfies resource.Endpoints for the generic controller.
type ResourceEndpoints[T resource.Entity, P any] struct {
	client *Client
	base   string
	// listKey is the response key holding the array, e.g. "branches"
	// in { "branches": [...], "total_count": 3 }.
	listKey string
	// pathDelete switches to the path-style delete endpoint.
	pathDelete bool
}

var _ resource.Endpoints[catalog.Branch, catalog.BranchPayload] = (*ResourceEndpoints[catalog.Branch, catalog.BranchPayload])(nil)

// List fetches the whole collection. A response whose array is
// missing, null or malformed resolves to an empty list, never nil:
// the caller's list state must stay a concrete sequence.
func (e *ResourceEndpoints[T, P]) List(ctx context.Context) ([]T, error) {
	items, _, err := e.list(ctx, nil)
	return items, err
}

// ListPage passes offset/limit through to the server and returns the
// page plus the server-reported total, for resources that page
// server-side.
func (e *ResourceEndpoints[T, P]) ListPage(ctx context.Context, offset, limit int) ([]T, int, error) {
	q := make(url.Values)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	return e.list(ctx, q)
}

func (e *ResourceEndpoints[T, P]) list(ctx context.Context, q url.Values) ([]T, int, error) {
	var payload map[string]json.RawMessage
	if err := e.client.request(ctx, http.MethodGet, "/"+e.base+"/list", q, nil, &payload); err != nil {
		return nil, 0, err
	}

	items := []T{}
	if raw, ok := payload[e.listKey]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			e.client.log.Warn(e.base + ": unexpected list payload shape, treating as empty")
			items = []T{}
		}
	}
	var total int
	if raw, ok := payload["total_count"]; ok {
		_ = json.Unmarshal(raw, &total)
	}
	if total == 0 {
		total = len(items)
	}
	return items, total, nil
}

func (e *ResourceEndpoints[T, P]) Get(ctx context.Context, id string) (T, error) {
	var item T
	q := url.Values{"id": []string{id}}
	err := e.client.request(ctx, http.MethodGet, "/"+e.base+"/get", q, nil, &item)
	return item, err
}

func (e *ResourceEndpoints[T, P]) Create(ctx context.Context, payload P) error {
	return e.client.request(ctx, http.MethodPost, "/"+e.base+"/create", nil, payload, nil)
}

func (e *ResourceEndpoints[T, P]) Update(ctx context.Context, id string, payload P) error {
	q := url.Values{"id": []string{id}}
	return e.client.request(ctx, http.MethodPut, "/"+e.base+"/update", q, payload, nil)
}

func (e *ResourceEndpoints[T, P]) Delete(ctx context.Context, id string) error {
	if e.pathDelete {
		return e.client.request(ctx, http.MethodDelete, "/"+e.base+"/delete/"+url.PathEscape(id), nil, nil, nil)
	}
	q := url.Values{"id": []string{id}}
	return e.client.request(ctx, http.MethodDelete, "/"+e.base+"/delete", q, nil, nil)
}

// Per-resource constructors. Students live under "certificates" and
// admin accounts under "users" on the wire; applications are the one
// resource with a path-style delete.

func NewBranchEndpoints(c *Client) *ResourceEndpoints[catalog.Branch, catalog.BranchPayload] {
	return &ResourceEndpoints[catalog.Branch, catalog.BranchPayload]{client: c, base: "branches", listKey: "branches"}
}

func NewCourseEndpoints(c *Client) *ResourceEndpoints[catalog.Course, catalog.CoursePayload] {
	return &ResourceEndpoints[catalog.Course, catalog.CoursePayload]{client: c, base: "courses", listKey: "courses"}
}

func NewTeacherEndpoints(c *Client) *ResourceEndpoints[catalog.Teacher, catalog.TeacherPayload] {
	return &ResourceEndpoints[catalog.Teacher, catalog.TeacherPayload]{client: c, base: "teachers", listKey: "teachers"}
}

func NewStudentEndpoints(c *Client) *ResourceEndpoints[catalog.Student, catalog.StudentPayload] {
	return &ResourceEndpoints[catalog.Student, catalog.StudentPayload]{client: c, base: "certificates", listKey: "certificates"}
}

func NewGalleryEndpoints(c *Client) *ResourceEndpoints[catalog.GalleryItem, catalog.GalleryPayload] {
	return &ResourceEndpoints[catalog.GalleryItem, catalog.GalleryPayload]{client: c, base: "gallery", listKey: "gallery"}
}

func NewAdminEndpoints(c *Client) *ResourceEndpoints[catalog.Admin, catalog.AdminPayload] {
	return &ResourceEndpoints[catalog.Admin, catalog.AdminPayload]{client: c, base: "users", listKey: "users"}
}

func NewApplicationEndpoints(c *Client) *ResourceEndpoints[catalog.Application, catalog.ApplicationPayload] {
	return &ResourceEndpoints[catalog.Application, catalog.ApplicationPayload]{
		client: c, base: "course_applications", listKey: "course_applications", pathDelete: true,
	}
}
