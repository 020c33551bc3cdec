package connect

import (
	"fmt"
	"net/url"
)

// DriverName returns the database/sql driver name registered for d.Driver.
// Grounded on MysqlConnectionResolver.composeUri: one resolver, one
// driver-specific branch, generalized to the three dialects spec.md §1
// targets instead of only MySQL.
func (d *Descriptor) DriverName() string {
	switch d.Driver {
	case "postgres", "postgresql", "pgx":
		return "pgx"
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return "mysql"
	}
}

// DSN composes the driver-specific connection string the way
// MysqlConnectionResolver.composeUri composed a MySQL DSN — one function
// per dialect instead of one function handling only MySQL.
func (d *Descriptor) DSN() string {
	switch d.DriverName() {
	case "pgx":
		return d.postgresDSN()
	case "sqlite3":
		return d.Database
	default:
		return d.mysqlDSN()
	}
}

func (d *Descriptor) mysqlDSN() string {
	auth := ""
	if d.Username != "" {
		auth = d.Username
		if d.Password != "" {
			auth += ":" + d.Password
		}
		auth += "@"
	}
	params := fmt.Sprintf("charset=%s&collation=%s&parseTime=true&timeout=%s",
		d.Charset, d.Collation, d.connectTimeout())
	return fmt.Sprintf("%stcp(%s:%d)/%s?%s", auth, d.Host, d.Port, d.Database, params)
}

func (d *Descriptor) postgresDSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Database,
	}
	if d.Username != "" {
		if d.Password != "" {
			u.User = url.UserPassword(d.Username, d.Password)
		} else {
			u.User = url.User(d.Username)
		}
	}
	q := u.Query()
	q.Set("connect_timeout", fmt.Sprintf("%d", d.ConnectTimeoutSec))
	u.RawQuery = q.Encode()
	return u.String()
}
