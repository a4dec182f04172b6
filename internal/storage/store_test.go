package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// The same conformance suite runs against both implementations so handler
// and agent behavior cannot depend on which store is configured.
func withStores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := OpenSQLite(":memory:")
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}

var baseTime = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func ts(offset time.Duration) string {
	return Timestamp(baseTime.Add(offset))
}

func TestAccounts(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		acct := Account{ID: "u1", Username: "miryam", Password: "pw", SecretKey: "sk", CreatedAt: ts(0)}
		if err := s.CreateAccount(acct); err != nil {
			t.Fatal(err)
		}

		got, err := s.GetAccountByUsername("miryam")
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != "u1" || got.Password != "pw" {
			t.Errorf("account = %+v", got)
		}

		if _, err := s.GetAccountByUsername("ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}

		if _, err := s.GetAccountByCredentials("miryam", "wrong"); !errors.Is(err, ErrNotFound) {
			t.Errorf("wrong password: err = %v, want ErrNotFound", err)
		}
		if _, err := s.GetAccountByCredentials("miryam", "pw"); err != nil {
			t.Errorf("right password: err = %v", err)
		}

		if err := s.TouchAccountSeen("u1", ts(time.Hour)); err != nil {
			t.Fatal(err)
		}
		got, _ = s.GetAccountByUsername("miryam")
		if got.LastSeen != ts(time.Hour) {
			t.Errorf("last seen = %q", got.LastSeen)
		}

		accounts, err := s.ListAccounts(10)
		if err != nil {
			t.Fatal(err)
		}
		if len(accounts) != 1 {
			t.Errorf("got %d accounts", len(accounts))
		}
	})
}

func TestPortfolioUpsert(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		pf := Portfolio{
			ID:       "p1",
			UserID:   "u1",
			Username: "miryam",
			Name:     "Miryam",
			Skills:   []Skill{{Name: "Go", Level: 90, Category: "backend"}},
			Contact:  map[string]string{"email": "m@example.com"},
			SectionsVisible: map[string]bool{"skills": true},
			UpdatedAt: ts(0),
		}
		if err := s.SavePortfolio(pf); err != nil {
			t.Fatal(err)
		}

		got, err := s.GetPortfolioByUsername("miryam")
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Skills) != 1 || got.Skills[0].Name != "Go" {
			t.Errorf("skills did not round-trip: %+v", got.Skills)
		}
		if got.Contact["email"] != "m@example.com" {
			t.Errorf("contact did not round-trip: %+v", got.Contact)
		}
		if !got.SectionsVisible["skills"] {
			t.Errorf("visibility map did not round-trip: %+v", got.SectionsVisible)
		}

		// Saving again for the same owner replaces, never duplicates.
		pf.Name = "Miryam Abida"
		pf.UpdatedAt = ts(time.Hour)
		if err := s.SavePortfolio(pf); err != nil {
			t.Fatal(err)
		}
		got, err = s.GetPortfolioByUserID("u1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "Miryam Abida" {
			t.Errorf("name = %q after upsert", got.Name)
		}

		first, err := s.FirstPortfolio()
		if err != nil {
			t.Fatal(err)
		}
		if first.ID != "p1" {
			t.Errorf("first portfolio = %q", first.ID)
		}

		if _, err := s.GetPortfolioByUsername("ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestFirstPortfolioIsStable(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		if err := s.SavePortfolio(Portfolio{ID: "p1", UserID: "u1", Username: "a", UpdatedAt: ts(0)}); err != nil {
			t.Fatal(err)
		}
		if err := s.SavePortfolio(Portfolio{ID: "p2", UserID: "u2", Username: "b", UpdatedAt: ts(time.Hour)}); err != nil {
			t.Fatal(err)
		}

		// Updating the second record must not change which one is "first".
		if err := s.SavePortfolio(Portfolio{ID: "p2", UserID: "u2", Username: "b", Name: "B", UpdatedAt: ts(2 * time.Hour)}); err != nil {
			t.Fatal(err)
		}

		first, err := s.FirstPortfolio()
		if err != nil {
			t.Fatal(err)
		}
		if first.ID != "p1" {
			t.Errorf("first portfolio = %q, want the earliest created", first.ID)
		}
	})
}

func TestTasks(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		for i := 0; i < 4; i++ {
			task := Task{
				ID:        fmt.Sprintf("t%d", i),
				UserID:    "u1",
				Title:     fmt.Sprintf("Task %d", i),
				Priority:  "medium",
				Completed: i == 0,
				CreatedAt: ts(time.Duration(i) * time.Minute),
			}
			if err := s.SaveTask(task); err != nil {
				t.Fatal(err)
			}
		}
		if err := s.SaveTask(Task{ID: "loose", Title: "No owner", Priority: "low", CreatedAt: ts(time.Hour)}); err != nil {
			t.Fatal(err)
		}

		all, err := s.ListTasks(TaskFilter{})
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 5 {
			t.Fatalf("got %d tasks, want 5", len(all))
		}

		open, err := s.ListTasks(TaskFilter{OnlyIncomplete: true})
		if err != nil {
			t.Fatal(err)
		}
		if len(open) != 4 {
			t.Errorf("got %d open tasks, want 4", len(open))
		}

		mine, err := s.ListTasks(TaskFilter{UserID: "u1"})
		if err != nil {
			t.Fatal(err)
		}
		if len(mine) != 4 {
			t.Errorf("got %d owned tasks, want 4", len(mine))
		}

		limited, err := s.ListTasks(TaskFilter{Limit: 2})
		if err != nil {
			t.Fatal(err)
		}
		if len(limited) != 2 {
			t.Errorf("got %d tasks with limit 2", len(limited))
		}

		got, err := s.GetTask("t1")
		if err != nil {
			t.Fatal(err)
		}
		got.Completed = true
		got.UpdatedAt = ts(2 * time.Hour)
		if err := s.UpdateTask(got); err != nil {
			t.Fatal(err)
		}
		got, _ = s.GetTask("t1")
		if !got.Completed {
			t.Error("update did not persist")
		}

		if err := s.DeleteTask("t1"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.GetTask("t1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound after delete", err)
		}
		if err := s.DeleteTask("t1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("double delete err = %v, want ErrNotFound", err)
		}
		if err := s.UpdateTask(Task{ID: "ghost"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("updating a missing task err = %v, want ErrNotFound", err)
		}
	})
}

func TestMemories(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		for i := 0; i < 5; i++ {
			m := MemoryEntry{
				ID:        fmt.Sprintf("m%d", i),
				Type:      "conversation",
				Content:   fmt.Sprintf("entry %d", i),
				Actions:   []string{"Added task: x"},
				CreatedAt: ts(time.Duration(i) * time.Minute),
			}
			if err := s.SaveMemory(m); err != nil {
				t.Fatal(err)
			}
		}

		got, err := s.ListMemories(3)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d memories, want 3", len(got))
		}
		if got[0].ID != "m4" || got[2].ID != "m2" {
			t.Errorf("expected newest first, got %s..%s", got[0].ID, got[2].ID)
		}
		if len(got[0].Actions) != 1 {
			t.Errorf("actions did not round-trip: %+v", got[0].Actions)
		}

		if err := s.DeleteMemory("m4"); err != nil {
			t.Fatal(err)
		}
		if err := s.DeleteMemory("m4"); !errors.Is(err, ErrNotFound) {
			t.Errorf("double delete err = %v, want ErrNotFound", err)
		}

		if err := s.ClearMemories(); err != nil {
			t.Fatal(err)
		}
		got, _ = s.ListMemories(10)
		if len(got) != 0 {
			t.Errorf("got %d memories after clear", len(got))
		}
	})
}

func TestArticles(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		a := Article{ID: "a1", Title: "Hello", Content: "World", Published: true, Comments: []Comment{}, CreatedAt: ts(0)}
		if err := s.SaveArticle(a); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveArticle(Article{ID: "a2", Title: "Draft", Content: "...", Comments: []Comment{}, CreatedAt: ts(time.Minute)}); err != nil {
			t.Fatal(err)
		}

		published, err := s.ListArticles(true, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(published) != 1 || published[0].ID != "a1" {
			t.Errorf("published = %+v", published)
		}
		all, _ := s.ListArticles(false, 0)
		if len(all) != 2 {
			t.Errorf("got %d articles, want 2", len(all))
		}
		if all[0].ID != "a2" {
			t.Errorf("expected newest first, got %s", all[0].ID)
		}

		if err := s.LikeArticle("a1"); err != nil {
			t.Fatal(err)
		}
		if err := s.LikeArticle("a1"); err != nil {
			t.Fatal(err)
		}
		got, _ := s.GetArticle("a1")
		if got.Likes != 2 {
			t.Errorf("likes = %d, want 2", got.Likes)
		}

		c := Comment{ID: "c1", AuthorName: "Visitor", Content: "Nice!", CreatedAt: ts(time.Hour)}
		if err := s.AddComment("a1", c); err != nil {
			t.Fatal(err)
		}
		got, _ = s.GetArticle("a1")
		if len(got.Comments) != 1 || got.Comments[0].Content != "Nice!" {
			t.Errorf("comments = %+v", got.Comments)
		}

		got.Title = "Hello again"
		if err := s.UpdateArticle(got); err != nil {
			t.Fatal(err)
		}
		got, _ = s.GetArticle("a1")
		if got.Title != "Hello again" {
			t.Errorf("title = %q", got.Title)
		}

		if err := s.DeleteArticle("a2"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.GetArticle("a2"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
		if err := s.LikeArticle("ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("liking a missing article err = %v, want ErrNotFound", err)
		}
		if err := s.AddComment("ghost", c); !errors.Is(err, ErrNotFound) {
			t.Errorf("commenting a missing article err = %v, want ErrNotFound", err)
		}
	})
}

func TestGallery(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		if _, err := s.MaxPhotoOrder(); err != nil {
			t.Fatalf("empty gallery max order: %v", err)
		}

		for i := 0; i < 3; i++ {
			p := GalleryPhoto{
				ID:        fmt.Sprintf("g%d", i),
				URL:       fmt.Sprintf("https://example.com/%d.jpg", i),
				Visible:   i != 1,
				Order:     i + 1,
				CreatedAt: ts(time.Duration(i) * time.Minute),
			}
			if err := s.SavePhoto(p); err != nil {
				t.Fatal(err)
			}
		}

		maxOrder, err := s.MaxPhotoOrder()
		if err != nil {
			t.Fatal(err)
		}
		if maxOrder != 3 {
			t.Errorf("max order = %d, want 3", maxOrder)
		}

		visible, err := s.ListPhotos(true)
		if err != nil {
			t.Fatal(err)
		}
		if len(visible) != 2 {
			t.Errorf("got %d visible photos, want 2", len(visible))
		}

		all, _ := s.ListPhotos(false)
		if len(all) != 3 {
			t.Fatalf("got %d photos, want 3", len(all))
		}
		if all[0].ID != "g0" || all[2].ID != "g2" {
			t.Errorf("photos not in display order: %s..%s", all[0].ID, all[2].ID)
		}

		p, err := s.GetPhoto("g0")
		if err != nil {
			t.Fatal(err)
		}
		p.Order = 9
		p.Caption = "moved"
		if err := s.UpdatePhoto(p); err != nil {
			t.Fatal(err)
		}
		all, _ = s.ListPhotos(false)
		if all[2].ID != "g0" {
			t.Errorf("reorder did not change listing: %+v", all)
		}

		if err := s.DeletePhoto("g1"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.GetPhoto("g1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestNotifications(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		for i := 0; i < 3; i++ {
			n := Notification{
				ID:        fmt.Sprintf("n%d", i),
				Title:     "Note",
				Message:   fmt.Sprintf("message %d", i),
				Type:      "info",
				CreatedAt: ts(time.Duration(i) * time.Minute),
			}
			if err := s.SaveNotification(n); err != nil {
				t.Fatal(err)
			}
		}

		got, err := s.ListNotifications(2)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0].ID != "n2" {
			t.Errorf("notifications = %+v, want 2 newest first", got)
		}

		if err := s.MarkNotificationRead("n2"); err != nil {
			t.Fatal(err)
		}
		got, _ = s.ListNotifications(10)
		for _, n := range got {
			if n.ID == "n2" && !n.Read {
				t.Error("n2 should be read")
			}
		}

		if err := s.DeleteNotification("n0"); err != nil {
			t.Fatal(err)
		}
		if err := s.MarkNotificationRead("ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestAnalyticsAndCounts(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		if err := s.SaveVisitor(Visitor{ID: "v1", IP: "203.0.113.9", Path: "/api/portfolio", Timestamp: ts(0)}); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveActivity(Activity{ID: "ac1", UserID: "u1", Type: "login", Timestamp: ts(0)}); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveActivity(Activity{ID: "ac2", UserID: "u1", Type: "register", Timestamp: ts(time.Minute)}); err != nil {
			t.Fatal(err)
		}

		acts, err := s.ListActivities(10)
		if err != nil {
			t.Fatal(err)
		}
		if len(acts) != 2 || acts[0].ID != "ac2" {
			t.Errorf("activities = %+v, want newest first", acts)
		}

		if err := s.CreateAccount(Account{ID: "u1", Username: "m", CreatedAt: ts(0)}); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveTask(Task{ID: "t1", Title: "x", Completed: true, CreatedAt: ts(0)}); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveTask(Task{ID: "t2", Title: "y", CreatedAt: ts(0)}); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveArticle(Article{ID: "a1", Title: "t", Content: "c", Published: true, Comments: []Comment{}, CreatedAt: ts(0)}); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveMemory(MemoryEntry{ID: "m1", Type: "note", Content: "c", CreatedAt: ts(0)}); err != nil {
			t.Fatal(err)
		}
		if err := s.SavePhoto(GalleryPhoto{ID: "g1", URL: "u", Visible: true, Order: 1, CreatedAt: ts(0)}); err != nil {
			t.Fatal(err)
		}

		stats, err := s.Counts()
		if err != nil {
			t.Fatal(err)
		}
		if stats.Tasks != 2 || stats.CompletedTasks != 1 {
			t.Errorf("task counts = %d/%d", stats.Tasks, stats.CompletedTasks)
		}
		if stats.Articles != 1 || stats.PublishedArticles != 1 {
			t.Errorf("article counts = %d/%d", stats.Articles, stats.PublishedArticles)
		}
		if stats.GalleryPhotos != 1 || stats.Memories != 1 || stats.Users != 1 || stats.Visitors != 1 {
			t.Errorf("stats = %+v", stats)
		}
	})
}
