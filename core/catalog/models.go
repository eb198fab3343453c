package catalog

import (
	"time"
)

// LocaleText holds parallel translations of one field, keyed by locale
// code. All of core.Locales are expected present on persisted records.
type LocaleText map[string]string

// In returns the translation for `locale`, falling back to english.
func (t LocaleText) In(locale string) string {
	if s, ok := t[locale]; ok && s != "" {
		return s
	}
	return t["en"]
}

type Branch struct {
	ID        string     `json:"id"`
	Name      LocaleText `json:"name"`
	Contact   string     `json:"contact"`
	GoogleURL string     `json:"google_url"`
	YandexURL string     `json:"yandex_url"`
	ImgURL    string     `json:"img_url"`
	CreatedAt time.Time  `json:"created_at"` // UTC
}

func (b Branch) EntityID() string { return b.ID }

type Course struct {
	ID                string     `json:"id"`
	Name              LocaleText `json:"name"`
	BranchDescription LocaleText `json:"branch_description"`
	Duration          LocaleText `json:"duration"`
	Description       Lines      `json:"description"`
	Price             float64    `json:"price"`
	Type              string     `json:"type"`
	PictureURL        string     `json:"picture_url"`
	CreatedAt         time.Time  `json:"created_at"` // UTC
}

func (c Course) EntityID() string { return c.ID }

type Teacher struct {
	ID                string     `json:"id"`
	Name              LocaleText `json:"name"`
	Contact           string     `json:"contact"`
	ExperienceYears   int        `json:"experience_years"`
	GraduatedStudents int        `json:"graduated_students"`
	IELTSScore        float64    `json:"ielts_score"`
	ProfilePictureURL string     `json:"profile_picture_url"`
	CreatedAt         time.Time  `json:"created_at"` // UTC
}

func (t Teacher) EntityID() string { return t.ID }

// Student is a certificate record: a graduate published with their
// IELTS result and certificate scan.
type Student struct {
	ID             string     `json:"id"`
	Name           LocaleText `json:"name"`
	CEFRLevel      string     `json:"cefr_level"`
	IELTSScore     float64    `json:"ielts_score"`
	CertificateURL string     `json:"certificate_url"`
	CreatedAt      time.Time  `json:"created_at"` // UTC
}

func (s Student) EntityID() string { return s.ID }

type GalleryItem struct {
	ID         string    `json:"id"`
	PictureURL string    `json:"picture_url"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

func (g GalleryItem) EntityID() string { return g.ID }

type Admin struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at"` // UTC
}

func (a Admin) EntityID() string { return a.ID }

// Application is a course application submitted from the public site;
// admins only review, correct and delete them.
type Application struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

func (a Application) EntityID() string { return a.ID }
