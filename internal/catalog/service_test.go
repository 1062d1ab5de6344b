package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/pressly/goose/v3"

	"mediacatalog/internal/database"
	"mediacatalog/internal/kv"
	"mediacatalog/internal/models"
	"mediacatalog/internal/store"
	"mediacatalog/internal/validate"
)

// backends returns a fresh service for each backend that runs without
// external services.
func backends(t *testing.T) map[string]*Service {
	t.Helper()

	db, err := database.Connect(database.SQLite, database.SQLiteDSN(":memory:"))
	if err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	if err := database.Migrate(db, database.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)
	t.Cleanup(func() { db.Close() })

	return map[string]*Service{
		"blob":       New(store.NewBlobStore(kv.NewMemory(), "")),
		"relational": New(store.NewRelationalStore(db, database.SQLite)),
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, svc *Service)) {
	for name, svc := range backends(t) {
		t.Run(name, func(t *testing.T) { fn(t, svc) })
	}
}

func media(title string) models.MediaInput {
	return models.MediaInput{Title: title, Image: "i", URL: "u"}
}

func TestAddTrimsOnce(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		in := models.MediaInput{Title: "  Dune  ", Image: " https://img ", URL: "\thttps://watch\n", Summary: "  spice  "}

		res, err := svc.Add(ctx, models.FilmsRef, in)
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if !res.Success || res.Message != "Film added successfully" {
			t.Errorf("result: %+v", res)
		}

		got, err := svc.List(ctx, models.FilmsRef)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		want := models.MediaRecord{Title: "Dune", Image: "https://img", URL: "https://watch", Summary: "spice"}
		if len(got) != 1 || got[0] != want {
			t.Fatalf("List: got %+v, want [%+v]", got, want)
		}

		again, err := validate.Media(models.MediaInput(got[0]))
		if err != nil || again != got[0] {
			t.Errorf("stored record is not a trim fixed point: %+v, %v", again, err)
		}
	})
}

func TestAddDuplicateTitle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		if _, err := svc.Add(ctx, models.SeriesRef, media("Dark")); err != nil {
			t.Fatalf("Add: %v", err)
		}

		_, err := svc.Add(ctx, models.SeriesRef, media(" Dark "))
		var dup *DuplicateTitleError
		if !errors.As(err, &dup) {
			t.Fatalf("got %v, want DuplicateTitleError", err)
		}
		if dup.Noun != "Series" {
			t.Errorf("noun: got %q", dup.Noun)
		}

		got, _ := svc.List(ctx, models.SeriesRef)
		if len(got) != 1 {
			t.Errorf("collection length changed: %d", len(got))
		}

		// Title comparison is case-sensitive.
		if _, err := svc.Add(ctx, models.SeriesRef, media("dark")); err != nil {
			t.Errorf("Add differently cased title: %v", err)
		}
		// Same title in a different collection is fine.
		if _, err := svc.Add(ctx, models.FilmsRef, media("Dark")); err != nil {
			t.Errorf("Add to films: %v", err)
		}
	})
}

func TestAddValidationWritesNothing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		_, err := svc.Add(ctx, models.FilmsRef, models.MediaInput{Title: "T", Image: "  "})
		var missing *validate.MissingFieldError
		if !errors.As(err, &missing) || missing.Field != "image" {
			t.Fatalf("got %v, want missing image", err)
		}
		got, _ := svc.List(ctx, models.FilmsRef)
		if len(got) != 0 {
			t.Errorf("invalid add wrote %d records", len(got))
		}
	})
}

func TestAddCategoryCaseInsensitiveName(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		if _, err := svc.AddCategory(ctx, models.CategoryInput{Name: "Anime", Icon: "🎌"}); err != nil {
			t.Fatalf("AddCategory: %v", err)
		}
		before, _ := svc.ListCategories(ctx)

		_, err := svc.AddCategory(ctx, models.CategoryInput{Name: "anime", Icon: "🗾"})
		var dup *DuplicateCategoryError
		if !errors.As(err, &dup) {
			t.Fatalf("got %v, want DuplicateCategoryError", err)
		}

		after, _ := svc.ListCategories(ctx)
		if !reflect.DeepEqual(before, after) {
			t.Errorf("category set changed:\nbefore %+v\nafter  %+v", before, after)
		}
	})
}

func TestAddCategorySlugCollision(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		if _, err := svc.AddCategory(ctx, models.CategoryInput{Name: "Sci-Fi", Icon: "🚀"}); err != nil {
			t.Fatalf("AddCategory: %v", err)
		}

		var dup *DuplicateCategoryError
		// "Sci Fi" has a different name but the same id, sci_fi.
		if _, err := svc.AddCategory(ctx, models.CategoryInput{Name: "Sci Fi", Icon: "🛸"}); !errors.As(err, &dup) {
			t.Errorf("slug collision: got %v, want DuplicateCategoryError", err)
		}
		// A name whose id is a protected id.
		if _, err := svc.AddCategory(ctx, models.CategoryInput{Name: "Films", Icon: "🎞"}); !errors.As(err, &dup) {
			t.Errorf("protected id collision: got %v, want DuplicateCategoryError", err)
		}
	})
}

func TestRemoveAtTwice(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		for _, title := range []string{"One", "Two"} {
			if _, err := svc.Add(ctx, models.FilmsRef, media(title)); err != nil {
				t.Fatalf("Add: %v", err)
			}
		}

		res, err := svc.RemoveAt(ctx, models.FilmsRef, 1)
		if err != nil {
			t.Fatalf("first RemoveAt: %v", err)
		}
		if res.Message != "Film removed successfully" {
			t.Errorf("message: %q", res.Message)
		}

		_, err = svc.RemoveAt(ctx, models.FilmsRef, 1)
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("second RemoveAt: got %v, want NotFoundError", err)
		}
		var oor *IndexOutOfRangeError
		if !errors.As(err, &oor) || oor.Index != 1 || oor.Len != 1 {
			t.Errorf("cause: %v", err)
		}

		got, _ := svc.List(ctx, models.FilmsRef)
		if len(got) != 1 {
			t.Errorf("expected 1 film left, got %d", len(got))
		}
	})
}

func TestIndexOutOfRange(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		var nf *NotFoundError
		for _, idx := range []int{-1, 0, 7} {
			if _, err := svc.UpdateAt(ctx, models.SeriesRef, idx, media("X")); !errors.As(err, &nf) {
				t.Errorf("UpdateAt(%d) on empty: got %v, want NotFoundError", idx, err)
			}
			if _, err := svc.RemoveAt(ctx, models.SeriesRef, idx); !errors.As(err, &nf) {
				t.Errorf("RemoveAt(%d) on empty: got %v, want NotFoundError", idx, err)
			}
		}
		if nf != nil && nf.Noun != "Series" {
			t.Errorf("noun: got %q", nf.Noun)
		}
	})
}

func TestDeleteProtectedCategory(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		for _, id := range []string{models.FilmsCategoryID, models.SeriesCategoryID} {
			_, err := svc.DeleteCategory(ctx, id)
			var prot *ProtectedCategoryError
			if !errors.As(err, &prot) {
				t.Errorf("DeleteCategory(%s): got %v, want ProtectedCategoryError", id, err)
			}
		}
		cats, _ := svc.ListCategories(ctx)
		if len(cats) != 2 {
			t.Errorf("expected protected pair intact, got %d categories", len(cats))
		}
	})
}

func TestDeleteUnknownCategory(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *Service) {
		_, err := svc.DeleteCategory(context.Background(), "nope")
		var nf *NotFoundError
		if !errors.As(err, &nf) || nf.Noun != "Category" {
			t.Fatalf("got %v, want category NotFoundError", err)
		}
	})
}

func TestEmptyStoreListsProtectedPair(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *Service) {
		cats, err := svc.ListCategories(context.Background())
		if err != nil {
			t.Fatalf("ListCategories: %v", err)
		}
		if len(cats) != 2 {
			t.Fatalf("expected 2 categories, got %d", len(cats))
		}
		if cats[0].ID != "films" || cats[1].ID != "series" {
			t.Errorf("ids: %s, %s", cats[0].ID, cats[1].ID)
		}
		for _, c := range cats {
			if c.Items == nil || len(c.Items) != 0 {
				t.Errorf("%s items: %v", c.ID, c.Items)
			}
		}
	})
}

func TestCategoryItemScenario(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		res, err := svc.AddCategory(ctx, models.CategoryInput{Name: "Anime", Icon: "🎌"})
		if err != nil {
			t.Fatalf("AddCategory: %v", err)
		}
		if res.Message != "Category added successfully" {
			t.Errorf("message: %q", res.Message)
		}

		ref := svc.CollectionFor("anime")
		if ref.Kind != models.CollectionCategory || ref.CategoryID != "anime" {
			t.Fatalf("CollectionFor(anime) = %+v", ref)
		}
		res, err = svc.Add(ctx, ref, models.MediaInput{Title: "X", Image: "i", URL: "u"})
		if err != nil {
			t.Fatalf("Add item: %v", err)
		}
		if res.Message != "Item added successfully" {
			t.Errorf("message: %q", res.Message)
		}

		got, err := svc.List(ctx, ref)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		want := []models.MediaRecord{{Title: "X", Image: "i", URL: "u", Summary: ""}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("items: got %+v, want %+v", got, want)
		}

		if _, err := svc.DeleteCategory(ctx, "anime"); err != nil {
			t.Fatalf("DeleteCategory: %v", err)
		}
		var nf *NotFoundError
		if _, err := svc.List(ctx, ref); !errors.As(err, &nf) {
			t.Errorf("List deleted category: got %v, want NotFoundError", err)
		}
		if _, err := svc.Add(ctx, ref, media("Y")); !errors.As(err, &nf) {
			t.Errorf("Add to deleted category: got %v, want NotFoundError", err)
		}
	})
}

func TestUpdateAtReplacesEntirely(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		old := models.MediaInput{Title: "Old", Image: "old-i", URL: "old-u", Summary: "old summary"}
		if _, err := svc.Add(ctx, models.FilmsRef, old); err != nil {
			t.Fatalf("Add: %v", err)
		}

		res, err := svc.UpdateAt(ctx, models.FilmsRef, 0, models.MediaInput{Title: "New", Image: "new-i", URL: "new-u"})
		if err != nil {
			t.Fatalf("UpdateAt: %v", err)
		}
		if res.Message != "Film updated successfully" {
			t.Errorf("message: %q", res.Message)
		}

		got, _ := svc.List(ctx, models.FilmsRef)
		want := models.MediaRecord{Title: "New", Image: "new-i", URL: "new-u", Summary: ""}
		if len(got) != 1 || got[0] != want {
			t.Errorf("after update: got %+v, want [%+v]", got, want)
		}
	})
}

func TestUpdateAtSkipsTitleDedup(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		for _, title := range []string{"A", "B"} {
			if _, err := svc.Add(ctx, models.FilmsRef, media(title)); err != nil {
				t.Fatalf("Add %s: %v", title, err)
			}
		}
		for _, index := range []int{0, 1} {
			if _, err := svc.UpdateAt(ctx, models.FilmsRef, index, media("X")); err != nil {
				t.Fatalf("UpdateAt(%d) to a repeated title: %v", index, err)
			}
		}

		got, err := svc.List(ctx, models.FilmsRef)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 2 || got[0].Title != "X" || got[1].Title != "X" {
			t.Errorf("got %+v, want two records titled X", got)
		}

		// Add still rejects the repeated title.
		var dup *DuplicateTitleError
		if _, err := svc.Add(ctx, models.FilmsRef, media("X")); !errors.As(err, &dup) {
			t.Errorf("Add after update: got %v, want DuplicateTitleError", err)
		}
	})
}

func TestProtectedCategoriesAliasCollections(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		if _, err := svc.Add(ctx, svc.CollectionFor("films"), media("Via Category")); err != nil {
			t.Fatalf("Add via films category: %v", err)
		}
		if _, err := svc.Add(ctx, models.SeriesRef, media("Top Level")); err != nil {
			t.Fatalf("Add series: %v", err)
		}

		films, _ := svc.List(ctx, models.FilmsRef)
		if len(films) != 1 || films[0].Title != "Via Category" {
			t.Errorf("films: %+v", films)
		}

		cats, err := svc.ListCategories(ctx)
		if err != nil {
			t.Fatalf("ListCategories: %v", err)
		}
		if len(cats[0].Items) != 1 || cats[0].Items[0].Title != "Via Category" {
			t.Errorf("films category items: %+v", cats[0].Items)
		}
		if len(cats[1].Items) != 1 || cats[1].Items[0].Title != "Top Level" {
			t.Errorf("series category items: %+v", cats[1].Items)
		}
	})
}

func TestBackendMetadata(t *testing.T) {
	svc := New(store.NewBlobStore(kv.NewMemory(), ""))
	if svc.Backend() != "blob" {
		t.Errorf("Backend: %q", svc.Backend())
	}
	if err := svc.Health(context.Background()); err != nil {
		t.Errorf("Health: %v", err)
	}
}

type downKV struct{}

func (downKV) Get(context.Context, string) ([]byte, error) { return nil, errors.New("dial tcp: refused") }
func (downKV) Set(context.Context, string, []byte) error   { return errors.New("dial tcp: refused") }
func (downKV) Ping(context.Context) error                  { return errors.New("dial tcp: refused") }

func TestUnavailablePropagates(t *testing.T) {
	svc := New(store.NewBlobStore(downKV{}, ""))
	ctx := context.Background()

	var unavail *store.UnavailableError
	if _, err := svc.List(ctx, models.FilmsRef); !errors.As(err, &unavail) {
		t.Errorf("List: got %v", err)
	}
	if _, err := svc.Add(ctx, models.FilmsRef, media("X")); !errors.As(err, &unavail) {
		t.Errorf("Add: got %v", err)
	}
	if _, err := svc.RemoveAt(ctx, models.FilmsRef, 0); !errors.As(err, &unavail) {
		t.Errorf("RemoveAt: got %v", err)
	}
	if _, err := svc.ListCategories(ctx); !errors.As(err, &unavail) {
		t.Errorf("ListCategories: got %v", err)
	}
	if _, err := svc.AddCategory(ctx, models.CategoryInput{Name: "N", Icon: "I"}); !errors.As(err, &unavail) {
		t.Errorf("AddCategory: got %v", err)
	}
}
