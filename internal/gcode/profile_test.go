package gcode

import "testing"

func TestGetProfile(t *testing.T) {
	custom := Profile{Name: "Shop Router", CommentPrefix: ";"}

	tests := []struct {
		name string
		want string
	}{
		{"Grbl", "Grbl"},
		{"LinuxCNC", "LinuxCNC"},
		{"Shop Router", "Shop Router"},
		{"unknown", "Generic"},
		{"", "Generic"},
	}
	for _, tt := range tests {
		if got := GetProfile(tt.name, custom).Name; got != tt.want {
			t.Errorf("GetProfile(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestGetProfileCustomShadowsBuiltIn(t *testing.T) {
	custom := Profile{Name: "Grbl", CommentPrefix: "#"}
	if got := GetProfile("Grbl", custom); got.IsBuiltIn || got.CommentPrefix != "#" {
		t.Errorf("expected the custom Grbl profile, got %+v", got)
	}
}

func TestProfileNames(t *testing.T) {
	names := ProfileNames(Profile{Name: "Shop Router"})
	want := []string{"Grbl", "Mach3", "LinuxCNC", "Generic", "Shop Router"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
