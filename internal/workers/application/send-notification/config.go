// internal/workers/application/send-notification/config.go
package sendnotification

import "maritime-intake/internal/common/config"

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	AdminEmail   string
	ReplyTo      string
	SMSSenderID  string
	AWSRegion    string
}

func LoadConfig(cfg *config.Config) *Config {
	n := cfg.Notifications
	return &Config{
		EmailEnabled: n.SES.Enabled,
		SMSEnabled:   n.SMS.Enabled,
		FromEmail:    n.FromEmail,
		AdminEmail:   n.AdminEmail,
		ReplyTo:      n.ReplyTo,
		SMSSenderID:  n.SMS.SenderID,
		AWSRegion:    n.AWS.Region,
	}
}

// missing names the first setting that keeps the mailer from sending, or "".
func (c *Config) missing() string {
	switch {
	case !c.EmailEnabled:
		return "notifications.ses.enabled is false"
	case c.FromEmail == "":
		return "notifications.from_email is not set"
	case c.AdminEmail == "":
		return "notifications.admin_email is not set"
	default:
		return ""
	}
}
