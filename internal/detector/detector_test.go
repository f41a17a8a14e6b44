package detector

import (
	"testing"
)

func TestDetector_Detect(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantLang string
		wantOK   bool
	}{
		{
			name:     "empty text",
			text:     "",
			wantLang: "",
			wantOK:   false,
		},
		{
			name:     "english text",
			text:     "Hello, this is a test in English.",
			wantLang: "English",
			wantOK:   true,
		},
		{
			name:     "ukrainian text",
			text:     "Привіт, це тест українською мовою.",
			wantLang: "Ukrainian",
			wantOK:   true,
		},
		{
			name:     "german text",
			text:     "Hallo, das ist ein Test auf Deutsch.",
			wantLang: "German",
			wantOK:   true,
		},
		{
			name:     "french text",
			text:     "Bonjour, ceci est un test en français.",
			wantLang: "French",
			wantOK:   true,
		},
		{
			name:     "spanish text",
			text:     "Hola, esto es una prueba en español.",
			wantLang: "Spanish",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, ok := d.Detect(tt.text)
			if ok != tt.wantOK {
				t.Errorf("Detect(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && lang.String() != tt.wantLang {
				t.Errorf("Detect(%q) = %v, want %v", tt.text, lang, tt.wantLang)
			}
		})
	}
}

func TestDetector_DetectISO(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{
			name:     "empty text",
			text:     "",
			wantCode: "",
			wantOK:   false,
		},
		{
			name:     "english text",
			text:     "Hello, this is a test in English.",
			wantCode: "en",
			wantOK:   true,
		},
		{
			name:     "ukrainian text",
			text:     "Привіт, це тест українською мовою.",
			wantCode: "uk",
			wantOK:   true,
		},
		{
			name:     "german text",
			text:     "Hallo, das ist ein Test auf Deutsch.",
			wantCode: "de",
			wantOK:   true,
		},
		{
			name:     "french text",
			text:     "Bonjour, ceci est un test en français.",
			wantCode: "fr",
			wantOK:   true,
		},
		{
			name:     "spanish text",
			text:     "Hola, esto es una prueba en español.",
			wantCode: "es",
			wantOK:   true,
		},
		{
			name:     "polish text",
			text:     "To jest test po polsku.",
			wantCode: "pl",
			wantOK:   true,
		},
		{
			name:     "russian text",
			text:     "Это тест на русском языке.",
			wantCode: "ru",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := d.DetectISO(tt.text)
			if ok != tt.wantOK {
				t.Errorf("DetectISO(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && code != tt.wantCode {
				t.Errorf("DetectISO(%q) = %q, want %q", tt.text, code, tt.wantCode)
			}
		})
	}
}

func TestDetector_ShortText(t *testing.T) {
	d := New()

	// Short text may or may not be detected; it must not panic.
	_, _ = d.DetectISO("Hi")
}

func TestDetector_Restricted(t *testing.T) {
	d := New("en", "hi", "xx")

	code, ok := d.DetectISO("यह हिंदी में लिखा गया एक परीक्षण वाक्य है।")
	if !ok || code != "hi" {
		t.Errorf("expected hi, got %q (ok=%v)", code, ok)
	}
}

func TestDetector_ResolveSource(t *testing.T) {
	d := New("en", "uk", "de")

	tests := []struct {
		name   string
		text   string
		lang   string
		want   string
		wantOK bool
	}{
		{name: "explicit language kept", text: "Hallo Welt", lang: "fr", want: "fr", wantOK: true},
		{name: "auto detected", text: "Hello, this is a test in English.", lang: "auto", want: "en", wantOK: true},
		{name: "empty detected", text: "Привіт, це тест українською мовою.", lang: "", want: "uk", wantOK: true},
		{name: "auto with empty text", text: "   ", lang: "AUTO", want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.ResolveSource(tt.text, tt.lang)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ResolveSource(%q, %q) = %q, %v; want %q, %v", tt.text, tt.lang, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
