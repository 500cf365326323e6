package flowtest

import (
	"strings"
	"testing"
)

func TestExtractValues(t *testing.T) {
	store := NewValueStore()
	body := map[string]any{
		"id": float64(42),
		"user": map[string]any{
			"email": "a@b.com",
		},
	}

	extracted, notes := ExtractValues(map[string]string{
		"user_id": "id",
		"email":   "user.email",
	}, body, store)

	if len(notes) != 0 {
		t.Fatalf("unexpected notes: %v", notes)
	}
	if extracted["user_id"] != float64(42) {
		t.Errorf("extracted user_id = %v, want 42", extracted["user_id"])
	}
	if v, ok := store.Get("user_id"); !ok || v != float64(42) {
		t.Errorf("store user_id = %v, %v; want 42, true", v, ok)
	}
	if v, ok := store.Get("email"); !ok || v != "a@b.com" {
		t.Errorf("store email = %v, %v; want a@b.com, true", v, ok)
	}
}

func TestExtractValues_PathNotFound(t *testing.T) {
	store := NewValueStore()
	store.Set("existing", "kept")

	extracted, notes := ExtractValues(map[string]string{
		"token": "auth.token",
	}, map[string]any{"id": float64(1)}, store)

	if extracted != nil {
		t.Errorf("extracted = %v, want nil", extracted)
	}
	if len(notes) != 1 || !strings.Contains(notes[0], "token") {
		t.Fatalf("expected one extraction note citing the variable, got %v", notes)
	}

	// Failures never unbind previously bound variables.
	if v, ok := store.Get("existing"); !ok || v != "kept" {
		t.Errorf("store existing = %v, %v; want kept, true", v, ok)
	}
	if store.Has("token") {
		t.Error("token must stay unbound after a failed extraction")
	}
}

func TestExtractValues_UnstructuredBody(t *testing.T) {
	store := NewValueStore()

	_, notes := ExtractValues(map[string]string{"id": "id"}, "plain text body", store)
	if len(notes) != 1 {
		t.Errorf("expected one note for unstructured body, got %v", notes)
	}
}

func TestExtractValues_PartialSuccess(t *testing.T) {
	store := NewValueStore()
	body := map[string]any{"id": float64(5)}

	extracted, notes := ExtractValues(map[string]string{
		"user_id": "id",
		"missing": "nope.nothing",
	}, body, store)

	if len(extracted) != 1 || extracted["user_id"] != float64(5) {
		t.Errorf("extracted = %v, want only user_id=5", extracted)
	}
	if len(notes) != 1 {
		t.Errorf("notes = %v, want one failure note", notes)
	}
}

func TestExtractValues_EmptySpec(t *testing.T) {
	extracted, notes := ExtractValues(nil, map[string]any{"id": 1}, NewValueStore())
	if extracted != nil || notes != nil {
		t.Errorf("empty spec: got %v, %v; want nil, nil", extracted, notes)
	}
}
