package ingest

import (
	"reflect"
	"testing"
)

func TestDeriveFolderTagNames_DropsFilenameSegment(t *testing.T) {
	got := DeriveFolderTagNames("artist/character/photo.jpg")
	want := []string{"artist", "character"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDeriveFolderTagNames_TopLevelFileHasNoFolderTags(t *testing.T) {
	got := DeriveFolderTagNames("photo.jpg")
	if len(got) != 0 {
		t.Fatalf("expected no folder tags for a top-level file, got %v", got)
	}
}

func TestDeriveFolderTagNames_DeduplicatesCaseInsensitively(t *testing.T) {
	got := DeriveFolderTagNames("Artist/ARTIST/artist/photo.jpg")
	want := []string{"artist"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDeriveFolderTagNames_DropsEmptySegmentsFromDoubleSlashes(t *testing.T) {
	got := DeriveFolderTagNames("artist//2024/photo.jpg")
	want := []string{"artist", "2024"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDeriveFolderTagNames_PreservesFirstOccurrenceOrder(t *testing.T) {
	got := DeriveFolderTagNames("b/a/b/a/photo.jpg")
	want := []string{"b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
