package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tomeducation/admin/core"
	logsvc "github.com/tomeducation/admin/services/logger"
	notifsvc "github.com/tomeducation/admin/services/notifier"
	sessionstore "github.com/tomeducation/admin/storage/session"
	testutil "github.com/tomeducation/admin/tests"
)

func authenticate(t *testing.T, repo *sessionstore.DummyRepository) {
	if err := repo.Save(testutil.NewPrincipal(t, "admin", time.Now().Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
}

// setup starts a fake API, points the shell at it and wires in-memory
// session storage plus captured output.
func setup(t *testing.T, register func(e *echo.Echo)) (*shell, *sessionstore.DummyRepository, *bytes.Buffer) {
	e := echo.New()
	e.HideBanner = true
	if register != nil {
		register(e)
	}
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	prev := core.Conf.API.BaseURL
	core.Conf.API.BaseURL = srv.URL
	t.Cleanup(func() { core.Conf.API.BaseURL = prev })

	notifsvc.ClearSentMessages()
	repo := sessionstore.NewDummyRepository()
	sh := newShell(repo, notifsvc.NewConsoleNotifierMock(), logsvc.NewStdLogger(nil))

	out := new(bytes.Buffer)
	sh.out = out
	return sh, repo, out
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	wantOut string
}

func Test_shell_usage(t *testing.T) {
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "list without resource", args: []string{"list"}, wantErr: errHelp},
		{name: "get without resource", args: []string{"get"}, wantErr: errHelp},
		{name: "remove without id", args: []string{"remove", "branches"}, wantErr: errHelp},
		{name: "create without payload", args: []string{"create", "branches"}, wantErr: errHelp},
		{name: "update without id", args: []string{"update", "branches", "-file", "x.json"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh, _, _ := setup(t, nil)
			args := append([]string{"admin"}, tt.args...)

			if err := sh.run(args); err != tt.wantErr {
				t.Errorf("sh.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_shell_guardGatesResources(t *testing.T) {
	tests := []cliTest{
		{name: "list", args: []string{"list", "branches"}},
		{name: "get", args: []string{"get", "teachers", "-id", "t1"}},
		{name: "remove", args: []string{"remove", "gallery", "-id", "g1"}},
		{name: "dashboard", args: []string{"dashboard"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh, _, out := setup(t, nil) // no persisted session
			args := append([]string{"admin"}, tt.args...)

			if err := sh.run(args); err != errNotAuthorized {
				t.Errorf("sh.run() error = %v, wantErr %v", err, errNotAuthorized)
			}
			if !strings.Contains(out.String(), "Please login first") {
				t.Errorf("expected login redirect, got %q", out.String())
			}
		})
	}
}

func Test_shell_status(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		sh, _, out := setup(t, nil)

		if err := sh.run([]string{"admin", "status"}); err != nil {
			t.Fatalf("sh.run() unexpected error = %v", err)
		}
		if !strings.Contains(out.String(), "session: unauthenticated") {
			t.Errorf("unexpected status output %q", out.String())
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		sh, repo, out := setup(t, nil)
		authenticate(t, repo)

		if err := sh.run([]string{"admin", "status"}); err != nil {
			t.Fatalf("sh.run() unexpected error = %v", err)
		}
		if !strings.Contains(out.String(), "session: authenticated") {
			t.Errorf("unexpected status output %q", out.String())
		}
		if !strings.Contains(out.String(), "user: admin") {
			t.Errorf("expected user line, got %q", out.String())
		}
	})
}

func Test_shell_login(t *testing.T) {
	register := func(e *echo.Echo) {
		e.POST("/users/login", func(c echo.Context) error {
			var creds struct {
				Name     string `json:"name"`
				Password string `json:"password"`
			}
			if err := c.Bind(&creds); err != nil {
				return err
			}
			if creds.Password != "secret" {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid credentials"})
			}
			return c.JSON(http.StatusOK, echo.Map{
				"token": "tok-fresh",
				"user":  echo.Map{"id": "u1", "name": creds.Name},
			})
		})
	}

	t.Run("success persists the session", func(t *testing.T) {
		sh, repo, _ := setup(t, register)
		sh.in = strings.NewReader("admin\n")
		readPasswordFunc = func(fd int) ([]byte, error) { return []byte("secret"), nil }

		if err := sh.run([]string{"admin", "login"}); err != nil {
			t.Fatalf("sh.run() unexpected error = %v", err)
		}
		stored := repo.Stored()
		if stored == nil || stored.Token != "tok-fresh" {
			t.Errorf("session not persisted, got %+v", stored)
		}
		if n := len(notifsvc.SentMessages); n != 1 || notifsvc.SentMessages[0].Kind != "success" {
			t.Errorf("expected one success notification, got %v", notifsvc.SentMessages)
		}
	})

	t.Run("bad credentials leave no session", func(t *testing.T) {
		sh, repo, _ := setup(t, register)
		sh.in = strings.NewReader("admin\n")
		readPasswordFunc = func(fd int) ([]byte, error) { return []byte("wrong"), nil }

		if err := sh.run([]string{"admin", "login"}); err == nil {
			t.Error("sh.run() expected an error")
		}
		if repo.Stored() != nil {
			t.Errorf("no session should persist, got %+v", repo.Stored())
		}
	})
}

func Test_shell_logout(t *testing.T) {
	sh, repo, _ := setup(t, nil)
	authenticate(t, repo)

	if err := sh.run([]string{"admin", "logout"}); err != nil {
		t.Fatalf("sh.run() unexpected error = %v", err)
	}
	if repo.Stored() != nil {
		t.Errorf("durable session should be cleared, got %+v", repo.Stored())
	}
}

func Test_shell_list(t *testing.T) {
	sh, repo, out := setup(t, func(e *echo.Echo) {
		e.GET("/branches/list", func(c echo.Context) error {
			return c.JSON(http.StatusOK, echo.Map{
				"branches": []echo.Map{
					{"id": "b1", "name": echo.Map{"en": "Main", "ru": "Главный", "uz": "Asosiy"}, "contact": "+998901112233"},
				},
				"total_count": 1,
			})
		})
	})
	authenticate(t, repo)

	if err := sh.run([]string{"admin", "list", "branches"}); err != nil {
		t.Fatalf("sh.run() unexpected error = %v", err)
	}
	if !strings.Contains(out.String(), "Main") || !strings.Contains(out.String(), "+998901112233") {
		t.Errorf("expected branch row, got %q", out.String())
	}
}

func Test_shell_listApplicationsPage(t *testing.T) {
	sh, repo, out := setup(t, func(e *echo.Echo) {
		e.GET("/course_applications/list", func(c echo.Context) error {
			if c.QueryParam("limit") != "5" || c.QueryParam("offset") != "10" {
				t.Errorf("paging not forwarded: offset=%s limit=%s", c.QueryParam("offset"), c.QueryParam("limit"))
			}
			return c.JSON(http.StatusOK, echo.Map{
				"course_applications": []echo.Map{{"id": "a1", "full_name": "Ali Valiev", "phone": "+998900000000"}},
				"total_count":         23,
			})
		})
	})
	authenticate(t, repo)

	if err := sh.run([]string{"admin", "list", "applications", "-offset", "10", "-limit", "5"}); err != nil {
		t.Fatalf("sh.run() unexpected error = %v", err)
	}
	if !strings.Contains(out.String(), "Ali Valiev") || !strings.Contains(out.String(), "total: 23") {
		t.Errorf("expected paged applications output, got %q", out.String())
	}
}

func Test_shell_remove(t *testing.T) {
	var deleted string
	var listCalls int
	sh, repo, _ := setup(t, func(e *echo.Echo) {
		e.DELETE("/teachers/delete", func(c echo.Context) error {
			deleted = c.QueryParam("id")
			return c.NoContent(http.StatusOK)
		})
		e.GET("/teachers/list", func(c echo.Context) error {
			listCalls++
			return c.JSON(http.StatusOK, echo.Map{"teachers": []echo.Map{}})
		})
	})
	authenticate(t, repo)

	if err := sh.run([]string{"admin", "remove", "teachers", "-id", "t9"}); err != nil {
		t.Fatalf("sh.run() unexpected error = %v", err)
	}
	if deleted != "t9" {
		t.Errorf("deleted id = %q, want t9", deleted)
	}
	if listCalls != 1 {
		t.Errorf("collection should be refetched exactly once, got %d", listCalls)
	}
}

func Test_shell_create(t *testing.T) {
	var created map[string]interface{}
	sh, repo, _ := setup(t, func(e *echo.Echo) {
		e.POST("/teachers/create", func(c echo.Context) error {
			return c.Bind(&created)
		})
		e.GET("/teachers/list", func(c echo.Context) error {
			return c.JSON(http.StatusOK, echo.Map{"teachers": []echo.Map{}})
		})
	})
	authenticate(t, repo)

	payload := filepath.Join(t.TempDir(), "teacher.json")
	body := `{
		"name": {"en": "John", "ru": "Джон", "uz": "Jon"},
		"contact": "+998901234567",
		"experience_years": 6,
		"graduated_students": 120,
		"ielts_score": 8.5
	}`
	if err := os.WriteFile(payload, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := sh.run([]string{"admin", "create", "teachers", "-file", payload}); err != nil {
		t.Fatalf("sh.run() unexpected error = %v", err)
	}
	if created["ielts_score"] != 8.5 {
		t.Errorf("payload not forwarded, got %v", created)
	}
	if _, ok := created["id"]; ok {
		t.Error("create payload must not carry an id")
	}
}

func Test_shell_createCourse(t *testing.T) {
	var (
		created  map[string]interface{}
		uploaded bool
	)
	sh, repo, _ := setup(t, func(e *echo.Echo) {
		e.POST("/file-upload", func(c echo.Context) error {
			uploaded = true
			return c.JSON(http.StatusOK, echo.Map{"Url": "https://cdn.example.com/banner.png"})
		})
		e.POST("/courses/create", func(c echo.Context) error {
			if !uploaded {
				t.Error("entity write issued before the media upload resolved")
			}
			return c.Bind(&created)
		})
		e.GET("/courses/list", func(c echo.Context) error {
			return c.JSON(http.StatusOK, echo.Map{"courses": []echo.Map{}})
		})
	})
	authenticate(t, repo)

	dir := t.TempDir()
	media := filepath.Join(dir, "banner.png")
	if err := os.WriteFile(media, []byte("fake png bytes"), 0o600); err != nil {
		t.Fatal(err)
	}
	payload := filepath.Join(dir, "course.json")
	// the description is the newline-joined textarea shape; it must
	// reach the server as an array of lines
	body := `{
		"name": {"en": "IELTS", "ru": "IELTS (ru)", "uz": "IELTS (uz)"},
		"branch_description": {"en": "Main", "ru": "Main (ru)", "uz": "Main (uz)"},
		"duration": {"en": "3 months", "ru": "3 months (ru)", "uz": "3 months (uz)"},
		"description": "Speaking practice\n\n Writing practice ",
		"price": 1200000,
		"type": "offline"
	}`
	if err := os.WriteFile(payload, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := sh.run([]string{"admin", "create", "courses", "-file", payload, "-media", media}); err != nil {
		t.Fatalf("sh.run() unexpected error = %v", err)
	}
	if want := []interface{}{"Speaking practice", "Writing practice"}; !reflect.DeepEqual(created["description"], want) {
		t.Errorf("description = %v, want %v", created["description"], want)
	}
	if created["picture_url"] != "https://cdn.example.com/banner.png" {
		t.Errorf("picture_url = %v, want the hosted URL", created["picture_url"])
	}
}

func Test_shell_unknownResource(t *testing.T) {
	sh, repo, _ := setup(t, nil)
	authenticate(t, repo)

	if err := sh.run([]string{"admin", "get", "payments", "-id", "p1"}); err != errUnknownResource {
		t.Errorf("sh.run() error = %v, wantErr %v", err, errUnknownResource)
	}
}
