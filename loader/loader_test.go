package loader

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"cine-insights/catalog"
)

func TestDecodeFixture(t *testing.T) {
	res, err := Load(context.Background(), filepath.Join("testdata", "titles.csv"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if res.Rows != 8 {
		t.Errorf("Rows = %d, want 8", res.Rows)
	}
	if res.Rejected != 2 {
		t.Errorf("Rejected = %d, want 2", res.Rejected)
	}
	if res.BadDates != 1 {
		t.Errorf("BadDates = %d, want 1", res.BadDates)
	}
	if res.BadYears != 1 {
		t.Errorf("BadYears = %d, want 1", res.BadYears)
	}
	if res.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", res.Duplicates)
	}
	if len(res.Titles) != 5 {
		t.Fatalf("Titles = %d, want 5", len(res.Titles))
	}

	first := res.Titles[0]
	if first.ShowID != "s1" || first.Duration != "91 min" {
		t.Errorf("duplicate show_id should keep the later row, got %+v", first)
	}

	blood := res.Titles[1]
	wantAdded := time.Date(2021, time.September, 24, 0, 0, 0, 0, time.UTC)
	if blood.Kind != catalog.KindSeries {
		t.Errorf("Kind = %q, want TV Show", blood.Kind)
	}
	if blood.AddedDate == nil || !blood.AddedDate.Equal(wantAdded) {
		t.Errorf("AddedDate = %v, want %v", blood.AddedDate, wantAdded)
	}
	if want := []string{"International TV Shows", "TV Dramas", "TV Mysteries"}; !reflect.DeepEqual(blood.Genres, want) {
		t.Errorf("Genres = %v, want %v", blood.Genres, want)
	}
	if want := []string{"Ama Qamata", "Khosi Ngema", "Gail Mabalane"}; !reflect.DeepEqual(blood.Cast, want) {
		t.Errorf("Cast = %v, want %v", blood.Cast, want)
	}

	sankofa := res.Titles[3]
	if sankofa.AddedDate != nil {
		t.Errorf("malformed date should leave AddedDate nil, got %v", sankofa.AddedDate)
	}
	if len(sankofa.Countries) != 6 {
		t.Errorf("Countries = %v, want 6 entries", sankofa.Countries)
	}

	starling := res.Titles[4]
	if starling.ReleaseYear != 0 {
		t.Errorf("malformed release year should be 0, got %d", starling.ReleaseYear)
	}
}

func TestDecodeMissingColumn(t *testing.T) {
	_, err := Decode(strings.NewReader("show_id,title\ns1,Example\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestDecodeHeaderAliases(t *testing.T) {
	data := "\ufeffShow_ID,Type,Title,Genres,Added_Date\ns9,Movie,Alias,\"Anime Features, Dramas\",2020-05-01\n"
	res, err := Decode(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(res.Titles) != 1 {
		t.Fatalf("expected 1 title, got %d", len(res.Titles))
	}
	got := res.Titles[0]
	if want := []string{"Anime Features", "Dramas"}; !reflect.DeepEqual(got.Genres, want) {
		t.Errorf("Genres = %v, want %v", got.Genres, want)
	}
	if y, ok := got.AddedYear(); !ok || y != 2020 {
		t.Errorf("AddedYear = %d, %v", y, ok)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing dataset")
	}
}
