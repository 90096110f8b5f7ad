package folioapi

// Config holds all configuration for a folioapi server. It is built once
// at process start and handed to the store, image resolver, and mailer;
// core logic never reads the environment directly.
type Config struct {
	Addr string // Listen address (default ":5000")

	MongoURI      string // Required: document store connection string
	MongoDatabase string // Database name (default "folio")

	AllowedOrigins []string // CORS allow-list (default localhost dev origins)

	// Image storage. When AssetHostURL is set the remote strategy is
	// active and UploadDir is unused; otherwise uploads land on disk
	// under UploadDir and are served at /uploads.
	UploadDir      string // Local uploads directory (default "uploads")
	AssetHostURL   string // Remote asset host upload endpoint
	AssetHostKey   string // Bearer credential for the asset host
	MaxUploadBytes int64  // Upload size limit, exclusive (default 10MB)

	Mail MailConfig
}

// MailConfig configures the outbound notification for new contact
// messages. Notifications are disabled unless To is set.
type MailConfig struct {
	Host     string
	Port     int // default 587
	Username string
	Password string
	From     string
	To       string
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":5000"
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = "folio"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:5174",
		}
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = 10 << 20
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 587
	}
}
