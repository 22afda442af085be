package chat

import "testing"

func testItems() []DialogItem {
	return []DialogItem{
		{ID: "1", Label: "Go generics question"},
		{ID: "2", Label: "Dinner ideas"},
		{ID: "3", Label: "Goroutine leak debugging"},
	}
}

func TestDialogShowConversationsSelectsCurrent(t *testing.T) {
	d := NewDialogModel()
	d.ShowConversations(testItems(), "2")

	if !d.IsOpen() || d.Type() != DialogConversations {
		t.Fatal("expected conversations dialog to be open")
	}
	item, ok := d.Selected()
	if !ok || item.ID != "2" {
		t.Errorf("expected cursor on the current conversation, got %+v", item)
	}
}

func TestDialogCursorMovement(t *testing.T) {
	d := NewDialogModel()
	d.ShowConversations(testItems(), "")

	d.MoveUp() // already at top
	if item, _ := d.Selected(); item.ID != "1" {
		t.Errorf("expected cursor pinned to first item, got %s", item.ID)
	}

	d.MoveDown()
	d.MoveDown()
	d.MoveDown() // past the end
	if item, _ := d.Selected(); item.ID != "3" {
		t.Errorf("expected cursor pinned to last item, got %s", item.ID)
	}
}

func TestDialogQueryFiltering(t *testing.T) {
	d := NewDialogModel()
	d.ShowConversations(testItems(), "")

	d.AppendQuery("go")
	if len(d.filtered) != 2 {
		t.Fatalf("expected 2 fuzzy matches for 'go', got %d", len(d.filtered))
	}

	d.BackspaceQuery()
	d.BackspaceQuery()
	if len(d.filtered) != 3 {
		t.Errorf("expected all items back after clearing the query, got %d", len(d.filtered))
	}
}

func TestDialogCloseResetsState(t *testing.T) {
	d := NewDialogModel()
	d.ShowConversations(testItems(), "")
	d.AppendQuery("go")
	d.Close()

	if d.IsOpen() {
		t.Error("expected dialog closed")
	}
	if _, ok := d.Selected(); ok {
		t.Error("expected no selection on a closed dialog")
	}
}

func TestDialogSelectedEmptyList(t *testing.T) {
	d := NewDialogModel()
	d.ShowConversations(nil, "")
	if _, ok := d.Selected(); ok {
		t.Error("expected no selection on an empty list")
	}
}
