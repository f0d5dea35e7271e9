package pathrule

import "testing"

func TestExcluded(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/hello-world/", false},
		{"/fr/bonjour/", false},
		{"/api/v1/ping", true},
		{"/wp-admin/options.php", true},
		{"/wp-login.php", true},
		{"/feed/", true},
		{"/wp-content/uploads/2024/photo.JPG", true},
		{"/assets/app.js", true},
		{"/robots.txt", true},
		{"/sitemap.xml", true},
		{"/sitemap-posts-fr.xml", true},
		{"/docs/v1.2/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Excluded(tt.path); got != tt.want {
				t.Errorf("Excluded(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestMatchAny(t *testing.T) {
	patterns := []string{"", "/private/", "preview="}

	if !MatchAny("/private/report/", patterns) {
		t.Error("expected /private/ to match")
	}
	if !MatchAny("/page/?preview=true", patterns) {
		t.Error("expected query substring to match")
	}
	if MatchAny("/public/", patterns) {
		t.Error("empty pattern must not match everything")
	}
}
