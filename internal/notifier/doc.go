// Package notifier sends task reminders, digests and reports to users as
// interactive message cards.
//
// Every entry point resolves its recipient the same way: an explicit
// assignee wins, otherwise the default recipient configured with
// WithDefaultRecipient is used, and ErrNoRecipient is returned when neither
// is set.
package notifier
