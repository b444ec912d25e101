package api

import (
	"net/http"
	"testing"

	"todonest/internal/model"
)

func (ts *TestServer) createTag(t *testing.T, userID, name string) *model.Tag {
	t.Helper()

	rec, req := ts.MakeAuthRequest(t, http.MethodPost, "/api/tags", CreateTagRequest{Name: name}, userID, nil)
	ts.HandleCreateTag(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusCreated)

	var resp TagResponse
	DecodeJSON(t, rec, &resp)
	return resp.Tag
}

func TestHandleCreateTagIdempotent(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "tags@example.com", "password1")

	first := ts.createTag(t, userID, "work")
	second := ts.createTag(t, userID, "work")
	if first.ID != second.ID {
		t.Errorf("repeated create returned a different tag: %s vs %s", first.ID, second.ID)
	}
	if first.Color == "" {
		t.Error("tag created without a color")
	}

	rec, req := ts.MakeAuthRequest(t, http.MethodGet, "/api/tags", nil, userID, nil)
	ts.HandleListTags(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp TagListResponse
	DecodeJSON(t, rec, &resp)
	if len(resp.Tags) != 1 {
		t.Errorf("got %d tags, want 1", len(resp.Tags))
	}
}

func TestHandleCreateTagValidation(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "tag-v@example.com", "password1")

	rec, req := ts.MakeAuthRequest(t, http.MethodPost, "/api/tags", CreateTagRequest{Name: "  "}, userID, nil)
	ts.HandleCreateTag(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestHandleUpdateTag(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "tag-u@example.com", "password1")
	tag := ts.createTag(t, userID, "work")

	name := "office"
	rec, req := ts.MakeAuthRequest(t, http.MethodPut, "/api/tags/"+tag.ID,
		UpdateTagRequest{Name: &name}, userID, map[string]string{"id": tag.ID})
	ts.HandleUpdateTag(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp TagResponse
	DecodeJSON(t, rec, &resp)
	if resp.Tag.Name != "office" {
		t.Errorf("name = %q, want %q", resp.Tag.Name, "office")
	}
}

func TestHandleDeleteTag(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "tag-d@example.com", "password1")
	tag := ts.createTag(t, userID, "gone")

	rec, req := ts.MakeAuthRequest(t, http.MethodDelete, "/api/tags/"+tag.ID,
		nil, userID, map[string]string{"id": tag.ID})
	ts.HandleDeleteTag(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	rec, req = ts.MakeAuthRequest(t, http.MethodDelete, "/api/tags/"+tag.ID,
		nil, userID, map[string]string{"id": tag.ID})
	ts.HandleDeleteTag(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusNotFound)
}
