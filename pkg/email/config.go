package email

// Provider selects the EmailSender built by NewSender.
type Provider string

const (
	ProviderPostmark Provider = "postmark"
	ProviderDev      Provider = "dev" // writes messages to DevDir
	ProviderLog      Provider = "log" // logs masked recipients only
)

// Config holds email service configuration.
// Postmark tokens are only required when Provider is "postmark".
// BaseURL is the public origin used to build verification and reset links.
type Config struct {
	Provider             Provider `env:"EMAIL_PROVIDER" envDefault:"log"`
	PostmarkServerToken  string   `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string   `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string   `env:"SENDER_EMAIL" envDefault:"noreply@localhost.test"`
	SupportEmail         string   `env:"SUPPORT_EMAIL" envDefault:"support@localhost.test"`
	DevDir               string   `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
	BaseURL              string   `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	ProductName          string   `env:"APP_NAME" envDefault:"Authgate"`
	VerifyPath           string   `env:"EMAIL_VERIFY_PATH" envDefault:"/verify-email"`
	ResetPath            string   `env:"EMAIL_RESET_PATH" envDefault:"/reset-password"`
}
