package dwf

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateFormatRoundTrip(t *testing.T) {
	for _, name := range []string{"dc", "sine", "square", "triangle", "ramp-up",
		"ramp-down", "noise", "pulse", "trapezium", "sine-power", "custom"} {
		f, err := ValidateFunc(name)
		if err != nil {
			t.Fatalf("ValidateFunc(%q): %v", name, err)
		}
		if got := FormatFunc(f); got != name {
			t.Errorf("FormatFunc(ValidateFunc(%q)) = %q", name, got)
		}
	}
}

func TestValidateRejectsUnknown(t *testing.T) {
	_, err := ValidateFunc("sawtooth")
	if !errors.Is(err, ErrBadFunc) {
		t.Errorf("got %v, want ErrBadFunc", err)
	}
}

func TestFuncJSON(t *testing.T) {
	b, err := json.Marshal(FuncRampUp)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"ramp-up"` {
		t.Errorf("marshaled to %s", b)
	}
	var f Func
	if err := json.Unmarshal([]byte(`"custom"`), &f); err != nil {
		t.Fatal(err)
	}
	if f != FuncCustom {
		t.Errorf("unmarshaled to %v", f)
	}
	if err := json.Unmarshal([]byte(`"sawtooth"`), &f); !errors.Is(err, ErrBadFunc) {
		t.Errorf("unknown name: got %v, want ErrBadFunc", err)
	}
}
