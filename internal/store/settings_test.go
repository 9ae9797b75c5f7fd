package store

import (
	"errors"
	"testing"
)

func TestSettings_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Settings().Get("spotify.last_device")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSettings_SetAndOverwrite(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if err := repo.Set("spotify.last_device", "laptop"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set("spotify.last_device", "kitchen"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	got, err := repo.Get("spotify.last_device")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "kitchen" {
		t.Errorf("Get() = %q, want %q", got, "kitchen")
	}
}

func TestSettings_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if err := repo.Set("k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
