package media

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		path      string
		want      Category
		wantKnown bool
	}{
		{"/tmp/shot.PNG", CategoryOpticalText, true},
		{"/tmp/photo.jpeg", CategoryOpticalText, true},
		{"/tmp/clip.mp4", CategoryTranscription, true},
		{"/tmp/voice.m4a", CategoryTranscription, true},
		{"/tmp/archive.zip", "", false},
		{"/tmp/noext", "", false},
	}

	for _, tc := range cases {
		got, known := Classify(tc.path)
		if known != tc.wantKnown {
			t.Errorf("Classify(%q) known = %v, want %v", tc.path, known, tc.wantKnown)
			continue
		}
		if known && got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestIgnored(t *testing.T) {
	for _, name := range []string{".DS_Store", "Thumbs.db", "notes.txt.swp", "draft~"} {
		if !Ignored(name) {
			t.Errorf("Ignored(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"vacation.jpg", "meeting.mp4"} {
		if Ignored(name) {
			t.Errorf("Ignored(%q) = true, want false", name)
		}
	}
}

func TestParseCategory(t *testing.T) {
	got, err := ParseCategory("  Transcription ")
	if err != nil {
		t.Fatalf("ParseCategory failed: %v", err)
	}
	if got != CategoryTranscription {
		t.Errorf("ParseCategory = %q, want %q", got, CategoryTranscription)
	}

	if _, err := ParseCategory("bogus"); err == nil {
		t.Error("ParseCategory should reject unknown values")
	}
}
