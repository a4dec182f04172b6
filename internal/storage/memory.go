package storage

import (
	"sort"
	"sync"
)

// MemoryStore is the in-memory Store implementation used for local
// development without a database file and by tests. All methods are
// safe for concurrent use.
type MemoryStore struct {
	mu            sync.RWMutex
	accounts      []Account
	portfolios    []Portfolio
	tasks         []Task
	memories      []MemoryEntry
	articles      []Article
	photos        []GalleryPhoto
	notifications []Notification
	visitors      []Visitor
	activities    []Activity
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Close() error { return nil }
func (s *MemoryStore) Ping() error  { return nil }

// --- Accounts ---

func (s *MemoryStore) CreateAccount(a Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append(s.accounts, a)
	return nil
}

func (s *MemoryStore) GetAccountByUsername(username string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (s *MemoryStore) GetAccountByCredentials(username, password string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Username == username && a.Password == password {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (s *MemoryStore) ListAccounts(limit int) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *MemoryStore) TouchAccountSeen(id, at string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts[i].LastSeen = at
		}
	}
	return nil
}

// --- Portfolios ---

func (s *MemoryStore) SavePortfolio(p Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.portfolios {
		if s.portfolios[i].ID == p.ID {
			s.portfolios[i] = p
			return nil
		}
	}
	s.portfolios = append(s.portfolios, p)
	return nil
}

func (s *MemoryStore) GetPortfolioByUsername(username string) (Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.portfolios {
		if p.Username == username {
			return p, nil
		}
	}
	return Portfolio{}, ErrNotFound
}

func (s *MemoryStore) GetPortfolioByUserID(userID string) (Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.portfolios {
		if p.UserID == userID {
			return p, nil
		}
	}
	return Portfolio{}, ErrNotFound
}

func (s *MemoryStore) FirstPortfolio() (Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.portfolios) == 0 {
		return Portfolio{}, ErrNotFound
	}
	return s.portfolios[0], nil
}

// --- Tasks ---

func (s *MemoryStore) SaveTask(t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, t)
	return nil
}

func (s *MemoryStore) GetTask(id string) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return Task{}, ErrNotFound
}

func (s *MemoryStore) UpdateTask(t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ListTasks(f TaskFilter) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Task
	for _, t := range s.tasks {
		if f.OnlyIncomplete && t.Completed {
			continue
		}
		if f.UserID != "" && t.UserID != f.UserID {
			continue
		}
		out = append(out, t)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// --- Agent memory ---

func (s *MemoryStore) SaveMemory(m MemoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories = append(s.memories, m)
	return nil
}

func (s *MemoryStore) ListMemories(limit int) ([]MemoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MemoryEntry, len(s.memories))
	copy(out, s.memories)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) DeleteMemory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.memories {
		if s.memories[i].ID == id {
			s.memories = append(s.memories[:i], s.memories[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ClearMemories() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories = nil
	return nil
}

// --- Articles ---

func (s *MemoryStore) SaveArticle(a Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.Comments == nil {
		a.Comments = []Comment{}
	}
	s.articles = append(s.articles, a)
	return nil
}

func (s *MemoryStore) GetArticle(id string) (Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.articles {
		if a.ID == id {
			return a, nil
		}
	}
	return Article{}, ErrNotFound
}

func (s *MemoryStore) UpdateArticle(a Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.articles {
		if s.articles[i].ID == a.ID {
			s.articles[i] = a
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteArticle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.articles {
		if s.articles[i].ID == id {
			s.articles = append(s.articles[:i], s.articles[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ListArticles(publishedOnly bool, limit int) ([]Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Article
	for _, a := range s.articles {
		if publishedOnly && !a.Published {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) LikeArticle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.articles {
		if s.articles[i].ID == id {
			s.articles[i].Likes++
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) AddComment(articleID string, c Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.articles {
		if s.articles[i].ID == articleID {
			s.articles[i].Comments = append(s.articles[i].Comments, c)
			return nil
		}
	}
	return ErrNotFound
}

// --- Gallery ---

func (s *MemoryStore) SavePhoto(p GalleryPhoto) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos = append(s.photos, p)
	return nil
}

func (s *MemoryStore) GetPhoto(id string) (GalleryPhoto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.photos {
		if p.ID == id {
			return p, nil
		}
	}
	return GalleryPhoto{}, ErrNotFound
}

func (s *MemoryStore) UpdatePhoto(p GalleryPhoto) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.photos {
		if s.photos[i].ID == p.ID {
			s.photos[i] = p
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeletePhoto(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.photos {
		if s.photos[i].ID == id {
			s.photos = append(s.photos[:i], s.photos[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ListPhotos(visibleOnly bool) ([]GalleryPhoto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []GalleryPhoto
	for _, p := range s.photos {
		if visibleOnly && !p.Visible {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out, nil
}

func (s *MemoryStore) MaxPhotoOrder() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	max := -1
	for _, p := range s.photos {
		if p.Order > max {
			max = p.Order
		}
	}
	return max, nil
}

// --- Notifications ---

func (s *MemoryStore) SaveNotification(n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *MemoryStore) ListNotifications(limit int) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Notification, len(s.notifications))
	copy(out, s.notifications)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) MarkNotificationRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteNotification(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// --- Analytics ---

func (s *MemoryStore) SaveVisitor(v Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visitors = append(s.visitors, v)
	return nil
}

func (s *MemoryStore) SaveActivity(a Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, a)
	return nil
}

func (s *MemoryStore) ListActivities(limit int) ([]Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Activity, len(s.activities))
	copy(out, s.activities)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- Counters ---

func (s *MemoryStore) Counts() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{
		Tasks:         len(s.tasks),
		Articles:      len(s.articles),
		GalleryPhotos: len(s.photos),
		Memories:      len(s.memories),
		Users:         len(s.accounts),
		Visitors:      len(s.visitors),
	}
	for _, t := range s.tasks {
		if t.Completed {
			st.CompletedTasks++
		}
	}
	for _, a := range s.articles {
		if a.Published {
			st.PublishedArticles++
		}
	}
	return st, nil
}
