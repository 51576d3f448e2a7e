package tests

import (
	"net/http"
	"testing"

	"github.com/trezcool/somo/core/note"
)

func Test_noteApi_CRUDAndLinks(t *testing.T) {
	app := setup(t)
	_, token := verifiedUserToken(t)

	var notes []note.Note
	do(t, app, http.MethodGet, "/v1/notes", token, nil, http.StatusOK, &notes)
	if len(notes) != 0 {
		t.Fatalf("len(notes) = %d; want 0", len(notes))
	}

	var n note.Note
	do(t, app, http.MethodPost, "/v1/notes", token, marchallObj(t, note.NewNote{Title: "Formulas"}), http.StatusCreated, &n)
	if n.ID == "" || n.Title != "Formulas" {
		t.Fatalf("unexpected note: %+v", n)
	}
	if n.Links == nil || len(n.Links) != 0 {
		t.Error("new note must start with an empty link list")
	}

	// validation
	do(t, app, http.MethodPost, "/v1/notes", token, marchallObj(t, note.NewNote{}), http.StatusBadRequest, nil)

	do(t, app, http.MethodPut, "/v1/notes/"+n.ID, token, marchallObj(t, note.UpdateNote{Title: "Key formulas"}), http.StatusOK, &n)
	if n.Title != "Key formulas" {
		t.Errorf("Title = %s; want Key formulas", n.Title)
	}
	do(t, app, http.MethodPut, "/v1/notes/nope", token, marchallObj(t, note.UpdateNote{Title: "X"}), http.StatusNotFound, nil)

	// links
	var link note.NoteLink
	do(t, app, http.MethodPost, "/v1/notes/"+n.ID+"/links", token,
		marchallObj(t, note.NewNoteLink{Title: "Sheet", URL: "https://example.com/sheet"}), http.StatusCreated, &link)
	do(t, app, http.MethodPost, "/v1/notes/"+n.ID+"/links", token,
		marchallObj(t, note.NewNoteLink{Title: "No URL"}), http.StatusBadRequest, nil)
	do(t, app, http.MethodPost, "/v1/notes/nope/links", token,
		marchallObj(t, note.NewNoteLink{Title: "Sheet", URL: "https://example.com/sheet"}), http.StatusNotFound, nil)

	do(t, app, http.MethodGet, "/v1/notes", token, nil, http.StatusOK, &notes)
	if len(notes) != 1 || len(notes[0].Links) != 1 {
		t.Fatalf("unexpected notes: %+v", notes)
	}

	do(t, app, http.MethodDelete, "/v1/notes/"+n.ID+"/links/"+link.ID, token, nil, http.StatusNoContent, nil)
	do(t, app, http.MethodDelete, "/v1/notes/"+n.ID, token, nil, http.StatusNoContent, nil)
	do(t, app, http.MethodDelete, "/v1/notes/"+n.ID, token, nil, http.StatusNotFound, nil)
}

func Test_resourceApi_CRUDAndReorder(t *testing.T) {
	app := setup(t)
	_, token := verifiedUserToken(t)

	mkResource := func(desc string) note.Resource {
		var r note.Resource
		do(t, app, http.MethodPost, "/v1/resources", token, marchallObj(t, note.NewResource{Description: desc}), http.StatusCreated, &r)
		return r
	}
	r1 := mkResource("Textbook")
	r2 := mkResource("Past papers")
	r3 := mkResource("Flashcards")
	if r1.Order != 1 || r2.Order != 2 || r3.Order != 3 {
		t.Fatalf("unexpected orders: %d %d %d", r1.Order, r2.Order, r3.Order)
	}

	// validation
	do(t, app, http.MethodPost, "/v1/resources", token, marchallObj(t, note.NewResource{}), http.StatusBadRequest, nil)

	// reorder; unlisted resources keep their relative position at the end
	var resources []note.Resource
	do(t, app, http.MethodPut, "/v1/resources/reorder", token,
		marchallObj(t, note.ReorderResources{IDs: []string{r3.ID, r1.ID}}), http.StatusOK, &resources)
	if len(resources) != 3 {
		t.Fatalf("len(resources) = %d; want 3", len(resources))
	}
	wantIDs := []string{r3.ID, r1.ID, r2.ID}
	for i, r := range resources {
		if r.ID != wantIDs[i] || r.Order != i+1 {
			t.Errorf("resources[%d] = {ID %s, Order %d}; want {ID %s, Order %d}", i, r.ID, r.Order, wantIDs[i], i+1)
		}
	}

	// empty id list rejected
	do(t, app, http.MethodPut, "/v1/resources/reorder", token,
		marchallObj(t, note.ReorderResources{}), http.StatusBadRequest, nil)

	// update & links
	do(t, app, http.MethodPut, "/v1/resources/"+r1.ID, token,
		marchallObj(t, note.UpdateResource{Description: "Main textbook"}), http.StatusOK, &r1)
	if r1.Description != "Main textbook" {
		t.Errorf("Description = %s; want Main textbook", r1.Description)
	}

	var link note.ResourceLink
	do(t, app, http.MethodPost, "/v1/resources/"+r1.ID+"/links", token,
		marchallObj(t, note.NewResourceLink{Description: "PDF", URL: "https://example.com/book.pdf"}), http.StatusCreated, &link)
	do(t, app, http.MethodDelete, "/v1/resources/"+r1.ID+"/links/"+link.ID, token, nil, http.StatusNoContent, nil)
	do(t, app, http.MethodDelete, "/v1/resources/"+r1.ID+"/links/"+link.ID, token, nil, http.StatusNotFound, nil)

	// deleting a resource closes the order gap
	do(t, app, http.MethodDelete, "/v1/resources/"+r1.ID, token, nil, http.StatusNoContent, nil)
	do(t, app, http.MethodGet, "/v1/resources", token, nil, http.StatusOK, &resources)
	if len(resources) != 2 {
		t.Fatalf("len(resources) = %d; want 2", len(resources))
	}
	for i, r := range resources {
		if r.Order != i+1 {
			t.Errorf("resources[%d].Order = %d; want %d", i, r.Order, i+1)
		}
	}
}
