package storage

import (
	"reflect"
	"testing"
)

func TestSessionName(t *testing.T) {
	if got := SessionName("  "); got != "Nova Rachadinha" {
		t.Errorf("SessionName(blank) = %q", got)
	}
	if got := SessionName(" Bar do Zé "); got != "Bar do Zé" {
		t.Errorf("SessionName() = %q", got)
	}
}

func TestCleanNames(t *testing.T) {
	got := CleanNames([]string{" Ana", "", "Bruno", "Ana", "  ", "Carla "})
	want := []string{"Ana", "Bruno", "Carla"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CleanNames() = %v, want %v", got, want)
	}
	if got := CleanNames(nil); got != nil {
		t.Errorf("CleanNames(nil) = %v, want nil", got)
	}
}

func TestNewInviteCode(t *testing.T) {
	a, b := NewInviteCode(), NewInviteCode()
	if len(a) != 32 || a == b {
		t.Errorf("NewInviteCode() = %q, %q: want two distinct 32-char codes", a, b)
	}
}
