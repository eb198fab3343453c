package testutil

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/tomeducation/admin/core/catalog"
	"github.com/tomeducation/admin/core/session"
)

// Locales returns a complete locale map for fixtures.
func Locales(en, ru, uz string) catalog.LocaleText {
	return catalog.LocaleText{"en": en, "ru": ru, "uz": uz}
}

func NewBranch(id, name string) catalog.Branch {
	return catalog.Branch{
		ID:        id,
		Name:      Locales(name, name+" (ru)", name+" (uz)"),
		Contact:   "+998901112233",
		GoogleURL: "https://maps.google.com/x",
		YandexURL: "https://yandex.com/maps/x",
		ImgURL:    "https://cdn.test/" + id + ".png",
		CreatedAt: time.Now().UTC(),
	}
}

func NewStudent(id, name string, score float64) catalog.Student {
	return catalog.Student{
		ID:             id,
		Name:           Locales(name, name+" (ru)", name+" (uz)"),
		CEFRLevel:      "B2",
		IELTSScore:     score,
		CertificateURL: "https://cdn.test/cert-" + id + ".png",
		CreatedAt:      time.Now().UTC(),
	}
}

func NewPrincipal(t *testing.T, name string, expiresAt time.Time) session.Principal {
	return session.Principal{
		Token: Token(t, expiresAt),
		User:  session.User{ID: "u1", Name: name},
	}
}

// Token mints a signed JWT expiring at `expiresAt`; the session store
// only inspects claims, so any signing key works.
func Token(t *testing.T, expiresAt time.Time) string {
	claims := jwt.StandardClaims{
		Subject:   "u1",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	return ss
}
