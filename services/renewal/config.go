package renewal

type CaptchaConfig struct {
	// ApiKey enables the hosted solving client. Empty disables
	// challenge solving; attempts that hit one fail.
	ApiKey string `json:"api_key"`
	// BaseUrl overrides the solving service endpoint.
	BaseUrl string `json:"base_url"`
}

type ProxyConfig struct {
	ListenAddr string `json:"listen_addr"`
	TtlSeconds int    `json:"ttl_seconds"`
}

type Config struct {
	// Database is a sqlite path or a libsql url.
	Database string `json:"database"`
	Port     int    `json:"port"`
	// DisplayTimezone is only used when rendering instants for the
	// operator. Storage and scheduling stay UTC.
	DisplayTimezone       string        `json:"display_timezone"`
	FallbackIntervalHours int           `json:"fallback_interval_hours"`
	MaxConcurrent         int64         `json:"max_concurrent"`
	AttemptTimeoutSeconds int           `json:"attempt_timeout_seconds"`
	RetentionDays         int           `json:"retention_days"`
	Captcha               CaptchaConfig `json:"captcha"`
	Proxy                 ProxyConfig   `json:"proxy"`
	Smtp                  SmtpConfig    `json:"smtp"`
}
