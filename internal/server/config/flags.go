package config

import (
	"flag"
	"os"
	"time"

	"github.com/dsmirnov/padkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-b string   auth backend: "local" or "ldap"
//	-q          require an authenticated session even for public pads
//	-m          require account confirmation after signup
//	-l string   LDAP URL (e.g., "ldap://directory:389")
//	-n string   LDAP service bind DN
//	-w string   LDAP service bind password
//	-s string   LDAP search base
//	-f string   LDAP search filter with one %s placeholder
//	-t int      directory call timeout, seconds
//	-r int      recovery token lifetime, minutes
//
// Structured values (the static admin list, attribute mapping overrides)
// come from the JSON config file only. The function first filters os.Args
// to the flags it recognizes using flagx.FilterArgs, avoiding collisions
// with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-b", "-q", "-m", "-l", "-n", "-w", "-s", "-f", "-t", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AuthBackend, "b", config.AuthBackend, "auth backend (local|ldap)")

	fs.BoolVar(&config.AllPublicRequireAuth, "q", config.AllPublicRequireAuth, "public pads require authentication")
	fs.BoolVar(&config.SignupConfirmRequired, "m", config.SignupConfirmRequired, "signup requires confirmation")

	fs.StringVar(&config.LDAPURL, "l", config.LDAPURL, "LDAP URL")
	fs.StringVar(&config.LDAPBindDN, "n", config.LDAPBindDN, "LDAP bind DN")
	fs.StringVar(&config.LDAPBindPassword, "w", config.LDAPBindPassword, "LDAP bind password")
	fs.StringVar(&config.LDAPSearchBase, "s", config.LDAPSearchBase, "LDAP search base")
	fs.StringVar(&config.LDAPSearchFilter, "f", config.LDAPSearchFilter, "LDAP search filter")

	directoryTimeout := fs.Int("t", int(config.DirectoryTimeout.Seconds()), "directory timeout (in seconds)")
	recoveryTTL := fs.Int("r", int(config.RecoveryTokenTTL.Minutes()), "recovery token lifetime (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.DirectoryTimeout = time.Duration(*directoryTimeout) * time.Second
	config.RecoveryTokenTTL = time.Duration(*recoveryTTL) * time.Minute
}
