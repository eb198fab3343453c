package catalog

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/tomeducation/admin/core"
)

// Lines is a description body: an array of lines on the wire, edited
// as one newline-joined text block in forms. It decodes from either
// shape.
type Lines []string

func (l *Lines) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = SplitLines(s)
	return nil
}

// Payloads are the form-exposed shapes sent on create and update.
// Updates are full-record replaces: the whole payload is sent, never a
// patch. Server-assigned fields (id, created_at) are never sent back.

type BranchPayload struct {
	Name      LocaleText `json:"name" validate:"locales"`
	Contact   string     `json:"contact" validate:"required"`
	GoogleURL string     `json:"google_url" validate:"omitempty,url"`
	YandexURL string     `json:"yandex_url" validate:"omitempty,url"`
	ImgURL    string     `json:"img_url"`
}

// BranchForm pre-populates a form from an existing record.
func BranchForm(b Branch) BranchPayload {
	return BranchPayload{
		Name:      b.Name,
		Contact:   b.Contact,
		GoogleURL: b.GoogleURL,
		YandexURL: b.YandexURL,
		ImgURL:    b.ImgURL,
	}
}

type CoursePayload struct {
	Name              LocaleText `json:"name" validate:"locales"`
	BranchDescription LocaleText `json:"branch_description" validate:"locales"`
	Duration          LocaleText `json:"duration" validate:"locales"`
	Description       Lines      `json:"description"`
	Price             float64    `json:"price" validate:"gte=0"`
	Type              string     `json:"type"`
	PictureURL        string     `json:"picture_url"`
}

func CourseForm(c Course) CoursePayload {
	return CoursePayload{
		Name:              c.Name,
		BranchDescription: c.BranchDescription,
		Duration:          c.Duration,
		Description:       c.Description,
		Price:             c.Price,
		Type:              c.Type,
		PictureURL:        c.PictureURL,
	}
}

type TeacherPayload struct {
	Name              LocaleText `json:"name" validate:"locales"`
	Contact           string     `json:"contact" validate:"required"`
	ExperienceYears   int        `json:"experience_years" validate:"gte=0"`
	GraduatedStudents int        `json:"graduated_students" validate:"gte=0"`
	IELTSScore        float64    `json:"ielts_score" validate:"gte=0,lte=9"`
	ProfilePictureURL string     `json:"profile_picture_url"`
}

func TeacherForm(t Teacher) TeacherPayload {
	return TeacherPayload{
		Name:              t.Name,
		Contact:           t.Contact,
		ExperienceYears:   t.ExperienceYears,
		GraduatedStudents: t.GraduatedStudents,
		IELTSScore:        t.IELTSScore,
		ProfilePictureURL: t.ProfilePictureURL,
	}
}

type StudentPayload struct {
	Name           LocaleText `json:"name" validate:"locales"`
	CEFRLevel      string     `json:"cefr_level" validate:"required"`
	IELTSScore     float64    `json:"ielts_score" validate:"gte=0,lte=9"`
	CertificateURL string     `json:"certificate_url"`
}

func StudentForm(s Student) StudentPayload {
	return StudentPayload{
		Name:           s.Name,
		CEFRLevel:      s.CEFRLevel,
		IELTSScore:     RoundScore(s.IELTSScore),
		CertificateURL: s.CertificateURL,
	}
}

type GalleryPayload struct {
	PictureURL string `json:"picture_url"`
}

func GalleryForm(g GalleryItem) GalleryPayload {
	return GalleryPayload{PictureURL: g.PictureURL}
}

type AdminPayload struct {
	Name              string `json:"name" validate:"required"`
	Password          string `json:"password,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

func AdminForm(a Admin) AdminPayload {
	return AdminPayload{
		Name:              a.Name,
		ProfilePictureURL: a.ProfilePictureURL,
	}
}

type ApplicationPayload struct {
	CourseID string `json:"course_id" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
}

func ApplicationForm(a Application) ApplicationPayload {
	return ApplicationPayload{
		CourseID: a.CourseID,
		FullName: a.FullName,
		Phone:    a.Phone,
	}
}

// SplitLines turns newline-delimited form text into description lines,
// dropping blanks.
func SplitLines(s string) Lines {
	var lines Lines
	for _, line := range strings.Split(s, "\n") {
		if line = core.CleanString(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// RoundScore normalizes an IELTS band to one decimal place.
func RoundScore(score float64) float64 {
	return math.Round(score*10) / 10
}
