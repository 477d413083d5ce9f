package normalize

import "testing"

func TestEmail(t *testing.T) {
	in := "  John.DOE@Example.COM  "
	want := "john.doe@example.com"
	got := Email(in)
	if got != want {
		t.Fatalf("Normalize.Email(%q) = %q, want %q", in, got, want)
	}
}

func TestText(t *testing.T) {
	cases := map[string]string{
		"":            "",
		"   \t\n":     "",
		"  hi there ": "hi there",
	}
	for in, want := range cases {
		if got := Text(in); got != want {
			t.Fatalf("Text(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("  Neon   Rider "); got != "Neon Rider" {
		t.Fatalf("DisplayName returned %q", got)
	}
}
