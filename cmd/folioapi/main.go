// Command folioapi runs the portfolio content API server. Configuration
// is built once from environment variables, with optional .env support.
package main

import (
	"log"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/obalci/folioapi"
)

func main() {
	_ = godotenv.Load()

	cfg := folioapi.Config{
		Addr:          listenAddr(),
		MongoURI:      folioapi.MustEnv("MONGO_URI"),
		MongoDatabase: folioapi.EnvOr("MONGO_DB", "folio"),
		UploadDir:     folioapi.EnvOr("UPLOAD_DIR", "uploads"),
		AssetHostURL:  folioapi.EnvOr("ASSET_HOST_URL", ""),
		AssetHostKey:  folioapi.EnvOr("ASSET_HOST_KEY", ""),
		Mail: folioapi.MailConfig{
			Host:     folioapi.EnvOr("EMAIL_HOST", ""),
			Port:     envInt("EMAIL_PORT", 587),
			Username: folioapi.EnvOr("EMAIL_USER", ""),
			Password: folioapi.EnvOr("EMAIL_PASS", ""),
			From:     folioapi.EnvOr("EMAIL_FROM", ""),
			To:       folioapi.EnvOr("EMAIL_TO", ""),
		},
	}
	if origins := folioapi.EnvOr("ALLOWED_ORIGINS", ""); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	app := folioapi.New(cfg)
	defer app.Close()
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

func listenAddr() string {
	if port := folioapi.EnvOr("PORT", ""); port != "" {
		return ":" + port
	}
	return ":5000"
}

func envInt(key string, fallback int) int {
	v := folioapi.EnvOr(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, v)
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
