package storage

// Store is the storage boundary for all collections. Two implementations
// exist: the SQLite store (production) and the in-memory store (local dev
// and tests). The implementation is selected once at startup from config;
// handlers and the agent never branch on which one they hold.
type Store interface {
	// Accounts
	CreateAccount(a Account) error
	GetAccountByUsername(username string) (Account, error)
	GetAccountByCredentials(username, password string) (Account, error)
	ListAccounts(limit int) ([]Account, error)
	TouchAccountSeen(id, at string) error

	// Portfolios
	SavePortfolio(p Portfolio) error // upsert keyed by user_id
	GetPortfolioByUsername(username string) (Portfolio, error)
	GetPortfolioByUserID(userID string) (Portfolio, error)
	FirstPortfolio() (Portfolio, error)

	// Tasks
	SaveTask(t Task) error
	GetTask(id string) (Task, error)
	UpdateTask(t Task) error
	DeleteTask(id string) error
	ListTasks(f TaskFilter) ([]Task, error)

	// Agent memory
	SaveMemory(m MemoryEntry) error
	ListMemories(limit int) ([]MemoryEntry, error) // newest first
	DeleteMemory(id string) error
	ClearMemories() error

	// Articles
	SaveArticle(a Article) error
	GetArticle(id string) (Article, error)
	UpdateArticle(a Article) error
	DeleteArticle(id string) error
	ListArticles(publishedOnly bool, limit int) ([]Article, error) // newest first
	LikeArticle(id string) error
	AddComment(articleID string, c Comment) error

	// Gallery
	SavePhoto(p GalleryPhoto) error
	GetPhoto(id string) (GalleryPhoto, error)
	UpdatePhoto(p GalleryPhoto) error
	DeletePhoto(id string) error
	ListPhotos(visibleOnly bool) ([]GalleryPhoto, error) // by display order
	MaxPhotoOrder() (int, error)

	// Notifications
	SaveNotification(n Notification) error
	ListNotifications(limit int) ([]Notification, error) // newest first
	MarkNotificationRead(id string) error
	DeleteNotification(id string) error

	// Analytics
	SaveVisitor(v Visitor) error
	SaveActivity(a Activity) error
	ListActivities(limit int) ([]Activity, error) // newest first

	Counts() (Stats, error)
	Ping() error
	Close() error
}
