// Package email delivers the transactional emails of the account lifecycle.
//
// EmailSender is the provider seam. PostmarkClient sends through Postmark,
// DevSender writes HTML and JSON files to a directory, and LogSender only logs
// masked recipients. NewSender picks one from Config.Provider.
//
// Notifier implements auth.Mailer: it renders verification and password reset
// messages with the templ components in the templates subpackage and builds
// links from Config.BaseURL:
//
//	sender, err := email.NewSender(cfg, log)
//	if err != nil {
//	    return err
//	}
//	notifier, err := email.NewNotifier(sender, cfg)
//	if err != nil {
//	    return err
//	}
//	svc := auth.NewService(users, sessions, notifier)
//
// Parameter failures match ErrInvalidParams, provider failures match
// ErrFailedToSendEmail. Message bodies hold raw single-use tokens and are never
// logged.
package email
