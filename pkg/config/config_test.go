package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name" json:"name" toml:"name"`
	Port  int    `yaml:"port" json:"port" toml:"port"`
	valid bool
}

var errInvalid = errors.New("port out of range")

func (s *sample) Validate() error {
	s.valid = true
	if s.Port <= 0 {
		return errInvalid
	}
	return nil
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_Formats(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "from-env")
	cases := map[string]string{
		"c.yaml": "name: ${SAMPLE_NAME}\nport: 8080\n",
		"c.yml":  "name: ${SAMPLE_NAME}\nport: 8080\n",
		"c.json": `{"name": "${SAMPLE_NAME}", "port": 8080}`,
		"c.toml": "name = \"${SAMPLE_NAME}\"\nport = 8080\n",
	}
	for name, body := range cases {
		var s sample
		if err := Load(writeConfig(t, name, body), &s); err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if s.Name != "from-env" || s.Port != 8080 || !s.valid {
			t.Errorf("%s: got %+v", name, s)
		}
	}
}

func TestLoad_ValidationError(t *testing.T) {
	var s sample
	err := Load(writeConfig(t, "c.yaml", "port: 0\n"), &s)
	if !errors.Is(err, errInvalid) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "none.yaml"), &s); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOptional(t *testing.T) {
	s := sample{Port: 1}
	if err := LoadOptional(filepath.Join(t.TempDir(), "none.toml"), &s); err != nil {
		t.Fatalf("missing optional file: %v", err)
	}
	if !s.valid || s.Port != 1 {
		t.Errorf("defaults not validated: %+v", s)
	}

	s = sample{}
	if err := LoadOptional(filepath.Join(t.TempDir(), "none.toml"), &s); !errors.Is(err, errInvalid) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	def := writeConfig(t, "default.json", `{"port": 9}`)
	var s sample
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "none.yaml"), def, &s); err != nil {
		t.Fatal(err)
	}
	if s.Port != 9 {
		t.Errorf("port = %d, want 9", s.Port)
	}
}
