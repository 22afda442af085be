package chat

import "testing"

func TestFilterCommandsEmptyQueryReturnsAll(t *testing.T) {
	got := FilterCommands("")
	if len(got) != len(AllCommands()) {
		t.Errorf("expected all %d commands, got %d", len(AllCommands()), len(got))
	}
}

func TestFilterCommandsExactNameWins(t *testing.T) {
	got := FilterCommands("clear")
	if len(got) != 1 || got[0].Name != "clear" {
		t.Errorf("expected exactly [clear], got %v", got)
	}
}

func TestFilterCommandsAliasWins(t *testing.T) {
	got := FilterCommands("ls")
	if len(got) != 1 || got[0].Name != "conversations" {
		t.Errorf("expected alias 'ls' to match conversations, got %v", got)
	}
	got = FilterCommands("q")
	if len(got) != 1 || got[0].Name != "quit" {
		t.Errorf("expected alias 'q' to match quit, got %v", got)
	}
}

func TestFilterCommandsLeadingSlashStripped(t *testing.T) {
	got := FilterCommands("/help")
	if len(got) != 1 || got[0].Name != "help" {
		t.Errorf("expected [help], got %v", got)
	}
}

func TestFilterCommandsFuzzy(t *testing.T) {
	got := FilterCommands("conv")
	if len(got) == 0 {
		t.Fatal("expected fuzzy matches for 'conv'")
	}
	if got[0].Name != "conversations" {
		t.Errorf("expected conversations first, got %q", got[0].Name)
	}
}

func TestFilterCommandsNoMatch(t *testing.T) {
	if got := FilterCommands("zzzzzz"); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}
