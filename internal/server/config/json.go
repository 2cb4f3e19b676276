package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dsmirnov/padkeeper/internal/flagx"
	"github.com/dsmirnov/padkeeper/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "10s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr string `json:"endpoint_addr"`
	DatabaseDSN  string `json:"database_dsn"`
	AuthBackend  string `json:"auth_backend"`

	AllPublicRequireAuth  *bool `json:"all_public_require_auth"`
	SignupConfirmRequired *bool `json:"signup_confirm_required"`
	FoldEmailCase         *bool `json:"fold_email_case"`
	UseFirstLastName      *bool `json:"use_first_last_name"`

	RecoveryTokenTTL   timex.Duration `json:"recovery_token_ttl"`
	LoginRatePerMinute int            `json:"login_rate_per_minute"`
	LoginRateBurst     int            `json:"login_rate_burst"`

	LDAPURL          string         `json:"ldap_url"`
	LDAPBindDN       string         `json:"ldap_bind_dn"`
	LDAPBindPassword string         `json:"ldap_bind_password"`
	LDAPSearchBase   string         `json:"ldap_search_base"`
	LDAPSearchFilter string         `json:"ldap_search_filter"`
	LDAPAttrLogin    string         `json:"ldap_attr_login"`
	LDAPAttrEmail    string         `json:"ldap_attr_email"`
	LDAPAttrFirst    string         `json:"ldap_attr_firstname"`
	LDAPAttrLast     string         `json:"ldap_attr_lastname"`
	DirectoryTimeout timex.Duration `json:"directory_timeout"`

	Admins []AdminAccount `json:"admins"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. Scalar fields overlay the
// defaults only when present in the file (empty strings and zero durations
// are skipped, boolean fields use pointers to distinguish "absent" from
// "false"). If the file cannot be read or contains invalid JSON, the
// function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.AuthBackend, c.AuthBackend)

	setBool(&config.AllPublicRequireAuth, c.AllPublicRequireAuth)
	setBool(&config.SignupConfirmRequired, c.SignupConfirmRequired)
	setBool(&config.FoldEmailCase, c.FoldEmailCase)
	setBool(&config.UseFirstLastName, c.UseFirstLastName)

	setDuration(&config.RecoveryTokenTTL, c.RecoveryTokenTTL.Duration)
	if c.LoginRatePerMinute > 0 {
		config.LoginRatePerMinute = c.LoginRatePerMinute
	}
	if c.LoginRateBurst > 0 {
		config.LoginRateBurst = c.LoginRateBurst
	}

	setString(&config.LDAPURL, c.LDAPURL)
	setString(&config.LDAPBindDN, c.LDAPBindDN)
	setString(&config.LDAPBindPassword, c.LDAPBindPassword)
	setString(&config.LDAPSearchBase, c.LDAPSearchBase)
	setString(&config.LDAPSearchFilter, c.LDAPSearchFilter)
	setString(&config.LDAPAttrLogin, c.LDAPAttrLogin)
	setString(&config.LDAPAttrEmail, c.LDAPAttrEmail)
	setString(&config.LDAPAttrFirst, c.LDAPAttrFirst)
	setString(&config.LDAPAttrLast, c.LDAPAttrLast)
	setDuration(&config.DirectoryTimeout, c.DirectoryTimeout.Duration)

	if len(c.Admins) > 0 {
		config.Admins = c.Admins
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
