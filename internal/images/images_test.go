package images

import "testing"

func TestAllowed(t *testing.T) {
	a := NewAllowlist([]string{"res.cloudinary.com", " BSSAJ-bucket.s3.ap-southeast-1.amazonaws.com "})
	cases := map[string]bool{
		"https://res.cloudinary.com/demo/logo.png":                   true,
		"https://bssaj-bucket.s3.ap-southeast-1.amazonaws.com/x.jpg": true,
		"https://res.cloudinary.com.evil.example/logo.png":           false,
		"https://example.com/logo.png":                               false,
		"javascript:alert(1)":                                        false,
		"/previews/3f1c2a9e-7c55-4c6e-9f61-0d0f5f0c1a11":             true,
		"/previews/../metrics":                                       false,
		"":                                                           false,
	}
	for raw, want := range cases {
		if got := a.Allowed(raw); got != want {
			t.Fatalf("Allowed(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestAvatarFallsBackToInitials(t *testing.T) {
	a := NewAllowlist([]string{"res.cloudinary.com"})
	c := a.Avatar("https://example.com/logo.png", "Tokyo Language School")
	if c.Image != "" || c.Fallback != "TL" {
		t.Fatalf("expected initials fallback, got %+v", c)
	}
	c = a.Avatar("https://res.cloudinary.com/logo.png", "Tokyo Language School")
	if c.Image == "" {
		t.Fatalf("expected allowed image to render")
	}
	if p := a.Picture(""); p.Image != "" {
		t.Fatalf("missing cover image should fall back to the placeholder")
	}
}
