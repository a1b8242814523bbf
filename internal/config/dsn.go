package config

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DSNValue assembles a go-sql-driver MySQL DSN from the structured fields,
// unless an explicit DSN was provided.
func (c DatabaseConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultDBHost
	}
	port := c.Port
	if port == 0 {
		port = defaultDBPort
	}
	user := strings.TrimSpace(c.User)
	if user == "" {
		user = defaultDBUser
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = defaultDBName
	}
	charset := strings.TrimSpace(c.Charset)
	if charset == "" {
		charset = defaultDBCharset
	}
	loc := strings.TrimSpace(c.Loc)
	if loc == "" {
		loc = defaultDBLoc
	}

	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = strings.TrimSpace(c.Password)
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = name
	cfg.ParseTime = true
	if l, err := time.LoadLocation(loc); err == nil {
		cfg.Loc = l
	}

	cfg.Params = map[string]string{"charset": charset}
	for key, value := range c.Params {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		// parseTime and loc are owned by the typed fields above
		if k == "" || v == "" || k == "parseTime" || k == "loc" {
			continue
		}
		cfg.Params[k] = v
	}

	return cfg.FormatDSN()
}
