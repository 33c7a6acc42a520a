package config

import (
	"os"
	"strconv"
	"strings"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthSecret string

	// Tenancy
	OrgHeader    string // override header, e.g. "X-Org"
	BaseDomain   string // {org}.{BaseDomain} host resolution
	HostIsTenant bool
	DefaultOrg   string

	// Grading knobs
	FuzzyEditDistance int  // short_answer edit distance for half credit
	PartialCredit     bool // partial credit on multiple_select

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		Mode:     mode,
		HTTPAddr: addr,
		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		AuthSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),

		OrgHeader:    envOr("ORG_HEADER", "X-Org"),
		BaseDomain:   os.Getenv("BASE_DOMAIN"),
		HostIsTenant: envBool("HOST_IS_TENANT", false),
		DefaultOrg:   envOr("DEFAULT_ORG", "local"),

		FuzzyEditDistance: envInt("GRADING_FUZZY_DISTANCE", 1),
		PartialCredit:     envBool("GRADING_PARTIAL_CREDIT", true),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://app.opencourse.io"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:3010"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
