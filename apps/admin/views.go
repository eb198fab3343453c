package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/tomeducation/admin/core"
	"github.com/tomeducation/admin/core/catalog"
	"github.com/tomeducation/admin/core/resource"
	"github.com/tomeducation/admin/services/api"
)

// resourceView adapts one typed controller to the untyped command
// dispatch. All CRUD state transitions still run inside the
// controller; the view only shapes rows for the table renderer.
type resourceView struct {
	headers []string
	fetch   func(context.Context)
	rows    func() [][]string
	count   func() int
	remove  func(context.Context, string) error
	submit  func(ctx context.Context, id, payloadPath, mediaPath string) error
	get     func(context.Context, string) (string, error)
}

func newResourceView[T resource.Entity, P any](
	ctrl *resource.Controller[T, P],
	eps *api.ResourceEndpoints[T, P],
	headers []string,
	row func(T) []string,
) resourceView {
	return resourceView{
		headers: headers,
		fetch:   ctrl.FetchAll,
		rows: func() [][]string {
			items := ctrl.Items()
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, row(item))
			}
			return rows
		},
		count:  func() int { return len(ctrl.Items()) },
		remove: ctrl.Remove,
		submit: func(ctx context.Context, id, payloadPath, mediaPath string) error {
			data, err := os.ReadFile(payloadPath)
			if err != nil {
				return errors.Wrap(err, "reading payload file")
			}
			var form P
			if err := json.Unmarshal(data, &form); err != nil {
				return errors.Wrap(err, "decoding payload file")
			}

			if id == "" {
				ctrl.OpenCreate()
			} else {
				ent, err := eps.Get(ctx, id)
				if err != nil {
					return errors.Wrapf(err, "fetching %s %s", ctrl.Name(), id)
				}
				ctrl.OpenEdit(ent)
			}
			ctrl.SetForm(form)

			if mediaPath != "" {
				file, closeFn, err := openMediaFile(mediaPath)
				if err != nil {
					return err
				}
				defer closeFn()
				ctrl.AttachFile(file)
			}
			return ctrl.Submit(ctx)
		},
		get: func(ctx context.Context, id string) (string, error) {
			item, err := eps.Get(ctx, id)
			if err != nil {
				return "", err
			}
			out, err := json.MarshalIndent(item, "", "  ")
			if err != nil {
				return "", errors.Wrap(err, "encoding record")
			}
			return string(out), nil
		},
	}
}

var applicationHeaders = []string{"ID", "FULL NAME", "PHONE", "COURSE"}

func applicationRow(a catalog.Application) []string {
	return []string{a.ID, a.FullName, a.Phone, a.CourseID}
}

// buildViews wires one controller per manageable resource. Upload
// ceilings: courses carry large banners (10MB), gallery images are
// kept small (2MB), everything else uses the configured default.
func buildViews(client *api.Client, uploader *api.Uploader, notif core.Notifier, logger core.Logger) (map[string]resourceView, *api.ResourceEndpoints[catalog.Application, catalog.ApplicationPayload]) {
	branchEps := api.NewBranchEndpoints(client)
	branches := resource.NewController(resource.Config[catalog.Branch, catalog.BranchPayload]{
		Name:                 "branches",
		API:                  branchEps,
		FormFrom:             catalog.BranchForm,
		MediaURL:             func(p *catalog.BranchPayload) *string { return &p.ImgURL },
		RequireMediaOnCreate: true,
		Uploader:             uploader,
		Notifier:             notif,
		Logger:               logger,
	})

	courseEps := api.NewCourseEndpoints(client)
	courses := resource.NewController(resource.Config[catalog.Course, catalog.CoursePayload]{
		Name:                 "courses",
		API:                  courseEps,
		FormFrom:             catalog.CourseForm,
		MediaURL:             func(p *catalog.CoursePayload) *string { return &p.PictureURL },
		RequireMediaOnCreate: true,
		MaxUploadSize:        10 << 20,
		Uploader:             uploader,
		Notifier:             notif,
		Logger:               logger,
	})

	teacherEps := api.NewTeacherEndpoints(client)
	teachers := resource.NewController(resource.Config[catalog.Teacher, catalog.TeacherPayload]{
		Name:     "teachers",
		API:      teacherEps,
		FormFrom: catalog.TeacherForm,
		MediaURL: func(p *catalog.TeacherPayload) *string { return &p.ProfilePictureURL },
		Uploader: uploader,
		Notifier: notif,
		Logger:   logger,
	})

	studentEps := api.NewStudentEndpoints(client)
	students := resource.NewController(resource.Config[catalog.Student, catalog.StudentPayload]{
		Name:                 "students",
		API:                  studentEps,
		FormFrom:             catalog.StudentForm,
		MediaURL:             func(p *catalog.StudentPayload) *string { return &p.CertificateURL },
		RequireMediaOnCreate: true,
		Uploader:             uploader,
		Notifier:             notif,
		Logger:               logger,
	})

	galleryEps := api.NewGalleryEndpoints(client)
	gallery := resource.NewController(resource.Config[catalog.GalleryItem, catalog.GalleryPayload]{
		Name:                 "gallery",
		API:                  galleryEps,
		FormFrom:             catalog.GalleryForm,
		MediaURL:             func(p *catalog.GalleryPayload) *string { return &p.PictureURL },
		RequireMediaOnCreate: true,
		MaxUploadSize:        2 << 20,
		Uploader:             uploader,
		Notifier:             notif,
		Logger:               logger,
	})

	adminEps := api.NewAdminEndpoints(client)
	admins := resource.NewController(resource.Config[catalog.Admin, catalog.AdminPayload]{
		Name:     "admins",
		API:      adminEps,
		FormFrom: catalog.AdminForm,
		MediaURL: func(p *catalog.AdminPayload) *string { return &p.ProfilePictureURL },
		Uploader: uploader,
		Notifier: notif,
		Logger:   logger,
	})

	appEps := api.NewApplicationEndpoints(client)
	applications := resource.NewController(resource.Config[catalog.Application, catalog.ApplicationPayload]{
		Name:     "applications",
		API:      appEps,
		FormFrom: catalog.ApplicationForm,
		Notifier: notif,
		Logger:   logger,
	})

	views := map[string]resourceView{
		"branches": newResourceView(branches, branchEps,
			[]string{"ID", "NAME", "CONTACT", "IMAGE"},
			func(b catalog.Branch) []string {
				return []string{b.ID, b.Name.In("en"), b.Contact, b.ImgURL}
			}),
		"courses": newResourceView(courses, courseEps,
			[]string{"ID", "NAME", "PRICE", "TYPE"},
			func(c catalog.Course) []string {
				return []string{c.ID, c.Name.In("en"), strconv.FormatFloat(c.Price, 'f', -1, 64), c.Type}
			}),
		"teachers": newResourceView(teachers, teacherEps,
			[]string{"ID", "NAME", "IELTS", "EXPERIENCE"},
			func(t catalog.Teacher) []string {
				return []string{t.ID, t.Name.In("en"), fmt.Sprintf("%.1f", t.IELTSScore), strconv.Itoa(t.ExperienceYears)}
			}),
		"students": newResourceView(students, studentEps,
			[]string{"ID", "NAME", "CEFR", "IELTS"},
			func(s catalog.Student) []string {
				return []string{s.ID, s.Name.In("en"), s.CEFRLevel, fmt.Sprintf("%.1f", s.IELTSScore)}
			}),
		"gallery": newResourceView(gallery, galleryEps,
			[]string{"ID", "PICTURE"},
			func(g catalog.GalleryItem) []string {
				return []string{g.ID, g.PictureURL}
			}),
		"admins": newResourceView(admins, adminEps,
			[]string{"ID", "NAME"},
			func(a catalog.Admin) []string {
				return []string{a.ID, a.Name}
			}),
		"applications": newResourceView(applications, appEps, applicationHeaders, applicationRow),
	}
	return views, appEps
}

func renderTable(out io.Writer, headers []string, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, joinTab(headers))
	for _, row := range rows {
		fmt.Fprintln(w, joinTab(row))
	}
	_ = w.Flush()
}

func joinTab(cells []string) string {
	s := ""
	for i, c := range cells {
		if i > 0 {
			s += "\t"
		}
		s += c
	}
	return s
}

func openMediaFile(path string) (core.File, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return core.File{}, nil, errors.Wrap(err, "opening media file")
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return core.File{}, nil, errors.Wrap(err, "reading media file info")
	}
	return core.File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Size:        st.Size(),
		Content:     f,
	}, func() { _ = f.Close() }, nil
}
