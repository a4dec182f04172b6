package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Account is a registered portfolio owner.
type Account struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Password  string `json:"password,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
	CreatedAt string `json:"created_at"`
	LastSeen  string `json:"last_seen,omitempty"`
}

// Skill is one entry in a portfolio's skill list.
type Skill struct {
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Category string `json:"category"`
}

// Experience is one entry in a portfolio's work history.
type Experience struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Period      string `json:"period"`
	Description string `json:"description"`
}

// Project is one entry in a portfolio's project list.
type Project struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Link        string   `json:"link,omitempty"`
}

// Portfolio is the public portfolio document for one owner.
type Portfolio struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id,omitempty"`
	Username        string            `json:"username,omitempty"`
	Name            string            `json:"name"`
	Title           string            `json:"title"`
	Bio             string            `json:"bio"`
	AvatarURL       string            `json:"avatar_url,omitempty"`
	HeroImage       string            `json:"hero_image,omitempty"`
	Skills          []Skill           `json:"skills"`
	Experience      []Experience      `json:"experience"`
	Projects        []Project         `json:"projects"`
	Contact         map[string]string `json:"contact"`
	SectionsOrder   []string          `json:"sections_order,omitempty"`
	SectionsVisible map[string]bool   `json:"sections_visible,omitempty"`
	Theme           string            `json:"theme,omitempty"`
	AccentColor     string            `json:"accent_color,omitempty"`
	FontFamily      string            `json:"font_family,omitempty"`
	CVURL           string            `json:"cv_url,omitempty"`
	CVData          string            `json:"cv_data,omitempty"` // base64 blob
	CVFilename      string            `json:"cv_filename,omitempty"`
	CVText          string            `json:"cv_text,omitempty"` // extracted plain text
	UpdatedAt       string            `json:"updated_at"`
}

// Task is a to-do item. Deadline and ReminderTime are stored as the literal
// strings provided by the caller (the agent writes unvalidated date strings).
type Task struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id,omitempty"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Deadline     string `json:"deadline,omitempty"`
	ReminderTime string `json:"reminder_time,omitempty"`
	Priority     string `json:"priority"` // low, medium, high
	Completed    bool   `json:"completed"`
	ReminderSent bool   `json:"reminder_sent,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// TaskFilter narrows ListTasks results. Zero values mean "no constraint".
type TaskFilter struct {
	UserID         string
	OnlyIncomplete bool
	Limit          int
}

// MemoryEntry is a short-term agent note used as rolling conversation context.
type MemoryEntry struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"` // conversation, preference, note
	Content   string   `json:"content"`
	Context   string   `json:"context,omitempty"`
	Actions   []string `json:"actions,omitempty"`
	CreatedAt string   `json:"created_at"`
}

// Comment is a reader comment attached to an article.
type Comment struct {
	ID         string `json:"id"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
}

// Article is a blog-like post.
type Article struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Excerpt    string    `json:"excerpt,omitempty"`
	CoverImage string    `json:"cover_image,omitempty"`
	Published  bool      `json:"published"`
	Likes      int       `json:"likes"`
	Comments   []Comment `json:"comments"`
	CreatedAt  string    `json:"created_at"`
	UpdatedAt  string    `json:"updated_at,omitempty"`
}

// GalleryPhoto is one image in the photo gallery. URL may hold a base64 data URL.
type GalleryPhoto struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Caption   string `json:"caption,omitempty"`
	Visible   bool   `json:"visible"`
	Order     int    `json:"order"`
	CreatedAt string `json:"created_at"`
}

// Notification is a one-way message shown to the owner.
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"` // info, reminder, ai
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// Visitor is one logged page view.
type Visitor struct {
	ID         string `json:"id"`
	IP         string `json:"ip"`
	UserAgent  string `json:"user_agent"`
	Path       string `json:"path"`
	TargetUser string `json:"target_user,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Activity is one logged user action (register, login, ...).
type Activity struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Type      string `json:"type"`
	Details   string `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Stats aggregates collection counters for the admin dashboard.
type Stats struct {
	Tasks             int `json:"tasks"`
	CompletedTasks    int `json:"completed_tasks"`
	Articles          int `json:"articles"`
	PublishedArticles int `json:"published_articles"`
	GalleryPhotos     int `json:"gallery_photos"`
	Memories          int `json:"memories"`
	Users             int `json:"users"`
	Visitors          int `json:"visitors"`
}

// Timestamp renders t in the canonical storage format.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
