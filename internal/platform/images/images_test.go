package images

import (
	"strings"
	"testing"
)

func TestTransformerPassthrough(t *testing.T) {
	cases := []struct {
		name string
		tr   *Transformer
		raw  string
	}{
		{"unconfigured", NewTransformer("", ""), "https://origin.example/img.jpg"},
		{"not a url", NewTransformer("img.example", "tok"), "wcsstore/Attachment/img.jpg"},
		{"empty", NewTransformer("img.example", "tok"), ""},
	}
	for _, tc := range cases {
		got, err := tc.tr.URL(tc.raw, FormatProductFull, "https")
		if err != nil {
			t.Fatalf("%s: URL: %v", tc.name, err)
		}
		if got != tc.raw {
			t.Errorf("%s: URL = %q, want passthrough %q", tc.name, got, tc.raw)
		}
	}
}

func TestTransformerDisabled(t *testing.T) {
	tr := NewTransformer("img.example", "tok")
	tr.Disable(true)
	if tr.Active() {
		t.Fatal("disabled transformer reports active")
	}
	got, err := tr.URL("https://origin.example/img.jpg", FormatProductFull, "https")
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if got != "https://origin.example/img.jpg" {
		t.Errorf("URL = %q, want passthrough", got)
	}
}

func TestTransformerSignedURL(t *testing.T) {
	tr := NewTransformer("img.example", "tok")

	got, err := tr.URL("https://origin.example/img.jpg", FormatProductThumbnail, "https")
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if !strings.HasPrefix(got, "https://img.example/") {
		t.Errorf("URL = %q, want transform host prefix", got)
	}
	if !strings.Contains(got, "w=270") || !strings.Contains(got, "h=220") {
		t.Errorf("URL = %q, want thumbnail dimensions", got)
	}
	if !strings.Contains(got, "&s=") {
		t.Errorf("URL = %q, want signature parameter", got)
	}
}

func TestTransformerProtocolRelative(t *testing.T) {
	tr := NewTransformer("img.example", "tok")

	got, err := tr.URL("//origin.example/img.jpg", FormatDefault, "https")
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if !strings.Contains(got, "https:%2F%2Forigin.example") {
		t.Errorf("URL = %q, want escaped https origin", got)
	}

	if _, err := tr.URL("//origin.example/img.jpg", FormatDefault, "ftp"); err == nil {
		t.Fatal("expected error for unsupported protocol")
	}
}

func TestTransformerUnknownFormatFallsBack(t *testing.T) {
	tr := NewTransformer("img.example", "tok")
	got, err := tr.URL("https://origin.example/img.jpg", "nope", "https")
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if !strings.Contains(got, "auto=compress%2Cformat") {
		t.Errorf("URL = %q, want default format parameters", got)
	}
}

func TestCatalogCDNRewrite(t *testing.T) {
	cdn := NewCatalogCDN("https://static.example/images", "www.example.cl")

	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			"attachment path",
			"/wcsstore/Attachment/2000378866682/full_image.jpg",
			"https://static.example/images/Attachment/2000378866682/full_image.jpg",
		},
		{
			"non attachment",
			"/wcsstore/CatalogoRipley/logo.png",
			"//www.example.cl/wcsstore/CatalogoRipley/logo.png",
		},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		if got := cdn.Rewrite(tc.raw); got != tc.want {
			t.Errorf("%s: Rewrite(%q) = %q, want %q", tc.name, tc.raw, got, tc.want)
		}
	}
}

func TestCatalogCDNWithoutImagePath(t *testing.T) {
	cdn := NewCatalogCDN("", "www.example.cl")
	got := cdn.Rewrite("/wcsstore/Attachment/img.jpg")
	if got != "//www.example.cl/wcsstore/Attachment/img.jpg" {
		t.Errorf("Rewrite = %q, want fallback host path", got)
	}
}
