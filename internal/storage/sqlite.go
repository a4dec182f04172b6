package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store on top of a SQLite database. Nested list and
// map fields are serialized as JSON text columns at this boundary only.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database.
func OpenSQLite(dataDir string) (*SQLiteStore, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "portfolio.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *SQLiteStore) Ping() error {
	return s.db.Ping()
}

// migrate reads embedded SQL migration files and applies any that haven't run yet.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return fmt.Errorf("parsing migration version from %q: %w", entry.Name(), err)
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

// --- JSON column helpers ---

func marshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func unmarshalJSON(data string, target any) {
	if data == "" {
		return
	}
	// Malformed stored JSON leaves the target at its zero value.
	_ = json.Unmarshal([]byte(data), target)
}

// --- Accounts ---

func (s *SQLiteStore) CreateAccount(a Account) error {
	_, err := s.db.Exec(`
		INSERT INTO accounts (id, username, password, secret_key, created_at, last_seen)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Username, a.Password, a.SecretKey, a.CreatedAt, a.LastSeen,
	)
	return err
}

func scanAccount(row *sql.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Username, &a.Password, &a.SecretKey, &a.CreatedAt, &a.LastSeen)
	if err == sql.ErrNoRows {
		return Account{}, ErrNotFound
	}
	return a, err
}

func (s *SQLiteStore) GetAccountByUsername(username string) (Account, error) {
	return scanAccount(s.db.QueryRow(`
		SELECT id, username, password, secret_key, created_at, last_seen
		FROM accounts WHERE username = ?`, username))
}

func (s *SQLiteStore) GetAccountByCredentials(username, password string) (Account, error) {
	return scanAccount(s.db.QueryRow(`
		SELECT id, username, password, secret_key, created_at, last_seen
		FROM accounts WHERE username = ? AND password = ?`, username, password))
}

func (s *SQLiteStore) ListAccounts(limit int) ([]Account, error) {
	rows, err := s.db.Query(`
		SELECT id, username, password, secret_key, created_at, last_seen
		FROM accounts ORDER BY created_at ASC LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Username, &a.Password, &a.SecretKey, &a.CreatedAt, &a.LastSeen); err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) TouchAccountSeen(id, at string) error {
	_, err := s.db.Exec(`UPDATE accounts SET last_seen = ? WHERE id = ?`, at, id)
	return err
}

// --- Portfolios ---

const portfolioColumns = `id, user_id, username, name, title, bio, avatar_url, hero_image,
	skills, experience, projects, contact, sections_order, sections_visible,
	theme, accent_color, font_family, cv_url, cv_data, cv_filename, cv_text, updated_at`

func (s *SQLiteStore) SavePortfolio(p Portfolio) error {
	_, err := s.db.Exec(`
		INSERT INTO portfolios (`+portfolioColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			username = excluded.username,
			name = excluded.name,
			title = excluded.title,
			bio = excluded.bio,
			avatar_url = excluded.avatar_url,
			hero_image = excluded.hero_image,
			skills = excluded.skills,
			experience = excluded.experience,
			projects = excluded.projects,
			contact = excluded.contact,
			sections_order = excluded.sections_order,
			sections_visible = excluded.sections_visible,
			theme = excluded.theme,
			accent_color = excluded.accent_color,
			font_family = excluded.font_family,
			cv_url = excluded.cv_url,
			cv_data = excluded.cv_data,
			cv_filename = excluded.cv_filename,
			cv_text = excluded.cv_text,
			updated_at = excluded.updated_at`,
		p.ID, p.UserID, p.Username, p.Name, p.Title, p.Bio, p.AvatarURL, p.HeroImage,
		marshalJSON(p.Skills), marshalJSON(p.Experience), marshalJSON(p.Projects),
		marshalJSON(p.Contact), marshalJSON(p.SectionsOrder), marshalJSON(p.SectionsVisible),
		p.Theme, p.AccentColor, p.FontFamily, p.CVURL, p.CVData, p.CVFilename, p.CVText, p.UpdatedAt,
	)
	return err
}

func scanPortfolio(scan func(dest ...any) error) (Portfolio, error) {
	var p Portfolio
	var skills, experience, projects, contact, sectionsOrder, sectionsVisible string
	err := scan(&p.ID, &p.UserID, &p.Username, &p.Name, &p.Title, &p.Bio, &p.AvatarURL, &p.HeroImage,
		&skills, &experience, &projects, &contact, &sectionsOrder, &sectionsVisible,
		&p.Theme, &p.AccentColor, &p.FontFamily, &p.CVURL, &p.CVData, &p.CVFilename, &p.CVText, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return Portfolio{}, ErrNotFound
	}
	if err != nil {
		return Portfolio{}, err
	}
	unmarshalJSON(skills, &p.Skills)
	unmarshalJSON(experience, &p.Experience)
	unmarshalJSON(projects, &p.Projects)
	unmarshalJSON(contact, &p.Contact)
	unmarshalJSON(sectionsOrder, &p.SectionsOrder)
	unmarshalJSON(sectionsVisible, &p.SectionsVisible)
	return p, nil
}

func (s *SQLiteStore) GetPortfolioByUsername(username string) (Portfolio, error) {
	row := s.db.QueryRow(`SELECT `+portfolioColumns+` FROM portfolios WHERE username = ?`, username)
	return scanPortfolio(row.Scan)
}

func (s *SQLiteStore) GetPortfolioByUserID(userID string) (Portfolio, error) {
	row := s.db.QueryRow(`SELECT `+portfolioColumns+` FROM portfolios WHERE user_id = ?`, userID)
	return scanPortfolio(row.Scan)
}

func (s *SQLiteStore) FirstPortfolio() (Portfolio, error) {
	row := s.db.QueryRow(`SELECT ` + portfolioColumns + ` FROM portfolios ORDER BY rowid ASC LIMIT 1`)
	return scanPortfolio(row.Scan)
}

// --- Tasks ---

const taskColumns = `id, user_id, title, description, deadline, reminder_time,
	priority, completed, reminder_sent, created_at, updated_at`

func (s *SQLiteStore) SaveTask(t Task) error {
	_, err := s.db.Exec(`
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, t.Description, t.Deadline, t.ReminderTime,
		t.Priority, t.Completed, t.ReminderSent, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func scanTask(scan func(dest ...any) error) (Task, error) {
	var t Task
	err := scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Deadline, &t.ReminderTime,
		&t.Priority, &t.Completed, &t.ReminderSent, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return Task{}, ErrNotFound
	}
	return t, err
}

func (s *SQLiteStore) GetTask(id string) (Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row.Scan)
}

func (s *SQLiteStore) UpdateTask(t Task) error {
	res, err := s.db.Exec(`
		UPDATE tasks SET user_id = ?, title = ?, description = ?, deadline = ?,
			reminder_time = ?, priority = ?, completed = ?, reminder_sent = ?, updated_at = ?
		WHERE id = ?`,
		t.UserID, t.Title, t.Description, t.Deadline, t.ReminderTime,
		t.Priority, t.Completed, t.ReminderSent, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) ListTasks(f TaskFilter) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var conds []string
	var args []any
	if f.OnlyIncomplete {
		conds = append(conds, "completed = 0")
	}
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// --- Agent memory ---

func (s *SQLiteStore) SaveMemory(m MemoryEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO memories (id, type, content, context, actions, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Type, m.Content, m.Context, marshalJSON(m.Actions), m.CreatedAt,
	)
	return err
}

func (s *SQLiteStore) ListMemories(limit int) ([]MemoryEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, type, content, context, actions, created_at
		FROM memories ORDER BY created_at DESC LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MemoryEntry
	for rows.Next() {
		var m MemoryEntry
		var actions string
		if err := rows.Scan(&m.ID, &m.Type, &m.Content, &m.Context, &actions, &m.CreatedAt); err != nil {
			return nil, err
		}
		unmarshalJSON(actions, &m.Actions)
		results = append(results, m)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) DeleteMemory(id string) error {
	res, err := s.db.Exec(`DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) ClearMemories() error {
	_, err := s.db.Exec(`DELETE FROM memories`)
	return err
}

// --- Articles ---

const articleColumns = `id, title, content, excerpt, cover_image, published, likes, comments, created_at, updated_at`

func (s *SQLiteStore) SaveArticle(a Article) error {
	_, err := s.db.Exec(`
		INSERT INTO articles (`+articleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Content, a.Excerpt, a.CoverImage, a.Published, a.Likes,
		marshalJSON(a.Comments), a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func scanArticle(scan func(dest ...any) error) (Article, error) {
	var a Article
	var comments string
	err := scan(&a.ID, &a.Title, &a.Content, &a.Excerpt, &a.CoverImage, &a.Published,
		&a.Likes, &comments, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return Article{}, ErrNotFound
	}
	if err != nil {
		return Article{}, err
	}
	unmarshalJSON(comments, &a.Comments)
	if a.Comments == nil {
		a.Comments = []Comment{}
	}
	return a, nil
}

func (s *SQLiteStore) GetArticle(id string) (Article, error) {
	row := s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	return scanArticle(row.Scan)
}

func (s *SQLiteStore) UpdateArticle(a Article) error {
	res, err := s.db.Exec(`
		UPDATE articles SET title = ?, content = ?, excerpt = ?, cover_image = ?,
			published = ?, likes = ?, comments = ?, updated_at = ?
		WHERE id = ?`,
		a.Title, a.Content, a.Excerpt, a.CoverImage, a.Published, a.Likes,
		marshalJSON(a.Comments), a.UpdatedAt, a.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteArticle(id string) error {
	res, err := s.db.Exec(`DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) ListArticles(publishedOnly bool, limit int) ([]Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles`
	if publishedOnly {
		query += ` WHERE published = 1`
	}
	query += ` ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.Query(query, sqlLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Article
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) LikeArticle(id string) error {
	res, err := s.db.Exec(`UPDATE articles SET likes = likes + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) AddComment(articleID string, c Comment) error {
	a, err := s.GetArticle(articleID)
	if err != nil {
		return err
	}
	a.Comments = append(a.Comments, c)
	_, err = s.db.Exec(`UPDATE articles SET comments = ? WHERE id = ?`, marshalJSON(a.Comments), articleID)
	return err
}

// --- Gallery ---

func (s *SQLiteStore) SavePhoto(p GalleryPhoto) error {
	_, err := s.db.Exec(`
		INSERT INTO gallery (id, url, caption, visible, display_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.URL, p.Caption, p.Visible, p.Order, p.CreatedAt,
	)
	return err
}

func (s *SQLiteStore) GetPhoto(id string) (GalleryPhoto, error) {
	var p GalleryPhoto
	err := s.db.QueryRow(`
		SELECT id, url, caption, visible, display_order, created_at
		FROM gallery WHERE id = ?`, id,
	).Scan(&p.ID, &p.URL, &p.Caption, &p.Visible, &p.Order, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return GalleryPhoto{}, ErrNotFound
	}
	return p, err
}

func (s *SQLiteStore) UpdatePhoto(p GalleryPhoto) error {
	res, err := s.db.Exec(`
		UPDATE gallery SET url = ?, caption = ?, visible = ?, display_order = ? WHERE id = ?`,
		p.URL, p.Caption, p.Visible, p.Order, p.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeletePhoto(id string) error {
	res, err := s.db.Exec(`DELETE FROM gallery WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) ListPhotos(visibleOnly bool) ([]GalleryPhoto, error) {
	query := `SELECT id, url, caption, visible, display_order, created_at FROM gallery`
	if visibleOnly {
		query += ` WHERE visible = 1`
	}
	query += ` ORDER BY display_order ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []GalleryPhoto
	for rows.Next() {
		var p GalleryPhoto
		if err := rows.Scan(&p.ID, &p.URL, &p.Caption, &p.Visible, &p.Order, &p.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) MaxPhotoOrder() (int, error) {
	var max sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(display_order) FROM gallery`).Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

// --- Notifications ---

func (s *SQLiteStore) SaveNotification(n Notification) error {
	_, err := s.db.Exec(`
		INSERT INTO notifications (id, title, message, type, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Message, n.Type, n.Read, n.CreatedAt,
	)
	return err
}

func (s *SQLiteStore) ListNotifications(limit int) ([]Notification, error) {
	rows, err := s.db.Query(`
		SELECT id, title, message, type, read, created_at
		FROM notifications ORDER BY created_at DESC LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, n)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) MarkNotificationRead(id string) error {
	res, err := s.db.Exec(`UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteNotification(id string) error {
	res, err := s.db.Exec(`DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- Analytics ---

func (s *SQLiteStore) SaveVisitor(v Visitor) error {
	_, err := s.db.Exec(`
		INSERT INTO visitors (id, ip, user_agent, path, target_user, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.IP, v.UserAgent, v.Path, v.TargetUser, v.Timestamp,
	)
	return err
}

func (s *SQLiteStore) SaveActivity(a Activity) error {
	_, err := s.db.Exec(`
		INSERT INTO activity (id, user_id, type, details, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Type, a.Details, a.Timestamp,
	)
	return err
}

func (s *SQLiteStore) ListActivities(limit int) ([]Activity, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, type, details, timestamp
		FROM activity ORDER BY timestamp DESC LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Details, &a.Timestamp); err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

// --- Counters ---

func (s *SQLiteStore) Counts() (Stats, error) {
	var st Stats
	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM tasks`, &st.Tasks},
		{`SELECT COUNT(*) FROM tasks WHERE completed = 1`, &st.CompletedTasks},
		{`SELECT COUNT(*) FROM articles`, &st.Articles},
		{`SELECT COUNT(*) FROM articles WHERE published = 1`, &st.PublishedArticles},
		{`SELECT COUNT(*) FROM gallery`, &st.GalleryPhotos},
		{`SELECT COUNT(*) FROM memories`, &st.Memories},
		{`SELECT COUNT(*) FROM accounts`, &st.Users},
		{`SELECT COUNT(*) FROM visitors`, &st.Visitors},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return Stats{}, err
		}
	}
	return st, nil
}

// sqlLimit maps "no limit" (zero or negative) to SQLite's unbounded LIMIT.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
