package fonts

import (
	"bytes"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

func TestLoadAcceptsPrefixAndSuffix(t *testing.T) {
	for _, name := range []string{"Go-Bold", "embed:Go-Bold", "embed:Go-Bold.ttf"} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if !bytes.Equal(data, gobold.TTF) {
			t.Fatalf("Load(%q) returned the wrong face", name)
		}
	}
	if _, err := Load("embed:Inter"); err == nil {
		t.Fatalf("unknown font should fail")
	}
}

func TestForStyle(t *testing.T) {
	if !bytes.Equal(ForStyle(false, false), goregular.TTF) || !bytes.Equal(ForStyle(true, false), gobold.TTF) {
		t.Fatalf("ForStyle picked the wrong face")
	}
	if len(Names()) != len(builtin) {
		t.Fatalf("Names out of sync with built-in table")
	}
}
